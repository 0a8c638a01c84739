package signal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given signal event construction", t, func() {
		now := time.Now()

		Convey("When all fields are valid", func() {
			e, err := signal.New(
				signal.TypeDemoRequest,
				"urn:li:person:jane",
				now,
				signal.SourceCompanyWebsite,
				signal.GenericPayload{},
				signal.WithStrength(1.0),
				signal.WithCompany("company:acme"),
			)

			Convey("Then it should build an immutable event", func() {
				So(err, ShouldBeNil)
				So(e.SubjectID, ShouldEqual, "urn:li:person:jane")
				So(e.Strength, ShouldEqual, 1.0)
				So(e.CompanyID, ShouldEqual, "company:acme")
			})
		})

		Convey("When the subject id is empty", func() {
			_, err := signal.New(signal.TypeProfileVisit, "", now, signal.SourceLinkedIn, signal.VisitPayload{})

			Convey("Then construction fails with ErrInvalidSignal", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, signal.ErrInvalidSignal), ShouldBeTrue)
			})
		})

		Convey("When strength is out of range", func() {
			_, errHigh := signal.New(signal.TypeProfileVisit, "u1", now, signal.SourceLinkedIn,
				signal.VisitPayload{}, signal.WithStrength(1.5))
			_, errLow := signal.New(signal.TypeProfileVisit, "u1", now, signal.SourceLinkedIn,
				signal.VisitPayload{}, signal.WithStrength(-0.1))

			Convey("Then construction fails both above and below the range", func() {
				So(errors.Is(errHigh, signal.ErrInvalidSignal), ShouldBeTrue)
				So(errors.Is(errLow, signal.ErrInvalidSignal), ShouldBeTrue)
			})
		})

		Convey("When no strength is provided", func() {
			e, err := signal.New(signal.TypeGroupJoin, "u1", now, signal.SourceLinkedIn, signal.GenericPayload{})

			Convey("Then the default 0.5 applies", func() {
				So(err, ShouldBeNil)
				So(e.Strength, ShouldEqual, 0.5)
			})
		})
	})
}

func TestDecay(t *testing.T) {
	Convey("Given the half-life decay function", t, func() {
		now := time.Now()
		halfLife := 72 * time.Hour

		Convey("When the signal is brand new", func() {
			So(signal.Decay(now, halfLife, now), ShouldEqual, 1.0)
		})

		Convey("When the signal is exactly one half-life old", func() {
			d := signal.Decay(now.Add(-halfLife), halfLife, now)
			So(d, ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("When the signal is two half-lives old", func() {
			d := signal.Decay(now.Add(-2*halfLife), halfLife, now)
			So(d, ShouldAlmostEqual, 0.25, 1e-9)
		})

		Convey("When comparing ages, decay strictly decreases", func() {
			prev := signal.Decay(now, halfLife, now)
			for i := 1; i <= 10; i++ {
				d := signal.Decay(now.Add(-time.Duration(i)*24*time.Hour), halfLife, now)
				So(d, ShouldBeLessThan, prev)
				prev = d
			}
		})

		Convey("When the timestamp is in the future", func() {
			d := signal.Decay(now.Add(48*time.Hour), halfLife, now)

			Convey("Then age clamps to zero and never amplifies", func() {
				So(d, ShouldEqual, 1.0)
			})
		})

		Convey("When the half-life is non-positive", func() {
			d := signal.Decay(now.Add(-72*time.Hour), 0, now)

			Convey("Then the default intent half-life applies", func() {
				So(d, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}

func TestAgeHours(t *testing.T) {
	Convey("Given an event", t, func() {
		now := time.Now()
		e, err := signal.New(signal.TypeProfileVisit, "u1", now.Add(-3*time.Hour), signal.SourceLinkedIn, signal.VisitPayload{VisitCount: 1})
		So(err, ShouldBeNil)

		Convey("Then age is reported in hours", func() {
			So(e.AgeHours(now), ShouldAlmostEqual, 3.0, 1e-6)
		})

		Convey("Then future events report zero age", func() {
			So(e.AgeHours(now.Add(-5*time.Hour)), ShouldEqual, 0.0)
		})
	})
}

func TestPayloadActions(t *testing.T) {
	Convey("Given typed payloads", t, func() {
		Convey("Engagement exposes its action verb", func() {
			So(signal.EngagementPayload{EventType: "share"}.Action(), ShouldEqual, "share")
		})

		Convey("Visits always read as a visit", func() {
			So(signal.VisitPayload{VisitCount: 3}.Action(), ShouldEqual, "visit")
		})

		Convey("Funding exposes the normalized round", func() {
			So(signal.FundingPayload{RoundType: "series_b"}.Action(), ShouldEqual, "series_b")
		})

		Convey("The generic bag checks the known action keys", func() {
			So(signal.GenericPayload{"event_type": "comment"}.Action(), ShouldEqual, "comment")
			So(signal.GenericPayload{"round_type": "seed"}.Action(), ShouldEqual, "seed")
			So(signal.GenericPayload{"unrelated": 1}.Action(), ShouldEqual, "")
		})
	})
}

func TestStrengthTables(t *testing.T) {
	Convey("Given the collector strength conventions", t, func() {
		Convey("Engagement strengths rank share > comment > like", func() {
			So(signal.EngagementStrength("share"), ShouldBeGreaterThan, signal.EngagementStrength("comment"))
			So(signal.EngagementStrength("comment"), ShouldBeGreaterThan, signal.EngagementStrength("like"))
			So(signal.EngagementStrength("unknown"), ShouldEqual, 0.5)
		})

		Convey("Funding strengths grow with round maturity", func() {
			So(signal.FundingStrength("ipo"), ShouldEqual, 1.0)
			So(signal.FundingStrength("seed"), ShouldBeLessThan, signal.FundingStrength("series_b"))
			So(signal.FundingStrength("mystery_round"), ShouldEqual, 0.5)
		})

		Convey("Visit strength caps at 1.0", func() {
			So(signal.VisitStrength(1), ShouldAlmostEqual, 0.45, 1e-9)
			So(signal.VisitStrength(50), ShouldEqual, 1.0)
		})
	})
}
