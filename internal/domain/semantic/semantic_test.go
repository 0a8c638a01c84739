package semantic_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/profile"
	"github.com/okian/scout/internal/domain/semantic"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVectorOps(t *testing.T) {
	Convey("Given the vector helpers", t, func() {
		Convey("Dot multiplies element-wise and sums", func() {
			So(semantic.Dot([]float64{1, 2, 3}, []float64{4, 5, 6}), ShouldEqual, 32.0)
		})

		Convey("Norm is the Euclidean length", func() {
			So(semantic.Norm([]float64{3, 4}), ShouldEqual, 5.0)
		})

		Convey("Cosine of identical vectors approaches 1", func() {
			So(semantic.Cosine([]float64{1, 0, 0}, []float64{1, 0, 0}), ShouldAlmostEqual, 1.0, 1e-6)
		})

		Convey("Cosine of orthogonal vectors is 0", func() {
			So(semantic.Cosine([]float64{1, 0}, []float64{0, 1}), ShouldAlmostEqual, 0.0, 1e-6)
		})

		Convey("Cosine of opposite vectors is -1", func() {
			So(semantic.Cosine([]float64{1, 0}, []float64{-1, 0}), ShouldAlmostEqual, -1.0, 1e-6)
		})

		Convey("Zero vectors do not divide by zero", func() {
			So(semantic.Cosine([]float64{0, 0}, []float64{1, 1}), ShouldEqual, 0.0)
		})
	})
}

func TestFit(t *testing.T) {
	Convey("Given a semantic matcher", t, func() {
		sender := profile.NewSender("Scout", "outbound automation", nil,
			[]string{"saas"}, []string{"vp"})
		m := semantic.NewMatcher(sender, profile.NewSimEmbedder())

		inTarget := &lead.Lead{
			SubjectID: "u1",
			Company:   &lead.Company{Industry: lead.IndustrySaaS},
		}
		offTarget := &lead.Lead{
			SubjectID: "u2",
			Company:   &lead.Company{Industry: lead.IndustryHealthtech},
		}

		Convey("Fit is always within [0,1]", func() {
			So(m.Fit(inTarget), ShouldBeBetweenOrEqual, 0.0, 1.0)
			So(m.Fit(offTarget), ShouldBeBetweenOrEqual, 0.0, 1.0)
			So(m.Fit(&lead.Lead{SubjectID: "u3"}), ShouldBeBetweenOrEqual, 0.0, 1.0)
		})

		Convey("Target-industry leads fit better than off-target leads", func() {
			So(m.Fit(inTarget), ShouldBeGreaterThan, m.Fit(offTarget))
		})

		Convey("Fit is deterministic for the same lead", func() {
			So(m.Fit(inTarget), ShouldEqual, m.Fit(inTarget))
		})
	})
}
