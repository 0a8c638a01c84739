package lead_test

import (
	"testing"

	"github.com/okian/scout/internal/domain/lead"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDetectSeniority(t *testing.T) {
	Convey("Given free-text job titles", t, func() {
		Convey("Director is matched before founder keywords", func() {
			So(lead.DetectSeniority("Co-Founder & Director of Sales"), ShouldEqual, lead.SeniorityDirector)
			So(lead.DetectSeniority("Director of Engineering"), ShouldEqual, lead.SeniorityDirector)
		})

		Convey("Chief and founder titles map to C_LEVEL", func() {
			So(lead.DetectSeniority("CEO"), ShouldEqual, lead.SeniorityCLevel)
			So(lead.DetectSeniority("Chief Revenue Officer"), ShouldEqual, lead.SeniorityCLevel)
			So(lead.DetectSeniority("Founder"), ShouldEqual, lead.SeniorityCLevel)
		})

		Convey("VP titles map to VP", func() {
			So(lead.DetectSeniority("VP of Sales"), ShouldEqual, lead.SeniorityVP)
			So(lead.DetectSeniority("Vice President, Marketing"), ShouldEqual, lead.SeniorityVP)
		})

		Convey("Manager, lead and head titles map to MANAGER", func() {
			So(lead.DetectSeniority("Engineering Manager"), ShouldEqual, lead.SeniorityManager)
			So(lead.DetectSeniority("Head of Growth"), ShouldEqual, lead.SeniorityManager)
			So(lead.DetectSeniority("Tech Lead"), ShouldEqual, lead.SeniorityManager)
		})

		Convey("Everything else is an individual contributor", func() {
			So(lead.DetectSeniority("Software Engineer"), ShouldEqual, lead.SeniorityIC)
			So(lead.DetectSeniority("Account Executive"), ShouldEqual, lead.SeniorityIC)
		})

		Convey("Empty titles are unknown", func() {
			So(lead.DetectSeniority(""), ShouldEqual, lead.SeniorityUnknown)
		})
	})
}

func TestDetectIndustry(t *testing.T) {
	Convey("Given free-text industry descriptions", t, func() {
		Convey("Known keywords map to their vertical", func() {
			So(lead.DetectIndustry("Cloud Software for HR"), ShouldEqual, lead.IndustrySaaS)
			So(lead.DetectIndustry("Payments infrastructure"), ShouldEqual, lead.IndustryFintech)
			So(lead.DetectIndustry("cybersecurity platform"), ShouldEqual, lead.IndustrySecurity)
			So(lead.DetectIndustry("Machine Learning tooling"), ShouldEqual, lead.IndustryAIML)
		})

		Convey("Short AI/ML tokens require word boundaries", func() {
			So(lead.DetectIndustry("AI assistants"), ShouldEqual, lead.IndustryAIML)
			So(lead.DetectIndustry("retail chain"), ShouldEqual, lead.IndustryEcommerce)
			// "maintenance" contains "ai" as a substring but is not AI.
			So(lead.DetectIndustry("maintenance services"), ShouldEqual, lead.IndustryOther)
		})

		Convey("Unknown descriptions soft-fail to OTHER", func() {
			So(lead.DetectIndustry("artisanal bakery"), ShouldEqual, lead.IndustryOther)
			So(lead.DetectIndustry(""), ShouldEqual, lead.IndustryOther)
		})
	})
}

func TestParseSeniority(t *testing.T) {
	Convey("Given explicit seniority strings", t, func() {
		So(lead.ParseSeniority("c_level"), ShouldEqual, lead.SeniorityCLevel)
		So(lead.ParseSeniority(" VP "), ShouldEqual, lead.SeniorityVP)
		So(lead.ParseSeniority("intern"), ShouldEqual, lead.SeniorityUnknown)
		So(lead.ParseSeniority(""), ShouldEqual, lead.SeniorityUnknown)
	})
}
