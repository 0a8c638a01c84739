package classifier_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/scout/internal/domain/classifier"
	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func fastStub(opts ...classifier.Option) *classifier.Stub {
	opts = append([]classifier.Option{
		classifier.WithLatencyRange(time.Millisecond, 2*time.Millisecond),
	}, opts...)
	return classifier.NewStub(opts...)
}

func TestPredict(t *testing.T) {
	Convey("Given a stub classifier", t, func() {
		s := fastStub()
		ctx := context.Background()

		Convey("Probabilities stay within [0,1]", func() {
			for _, tokens := range [][]string{
				nil,
				{classifier.TokenStart, classifier.TokenEnd},
				{"SIGNAL_DEMO_REQUEST", "SIGNAL_DEMO_REQUEST", "SIGNAL_DEMO_REQUEST"},
				{classifier.TokenFundingBootstrap, classifier.TokenMomentumDecline},
			} {
				p, err := s.Predict(ctx, tokens)
				So(err, ShouldBeNil)
				So(p, ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		})

		Convey("Strong buying tokens raise the probability", func() {
			cold, err := s.Predict(ctx, []string{classifier.TokenTenureLong, classifier.TokenFundingBootstrap})
			So(err, ShouldBeNil)

			hot, err := s.Predict(ctx, []string{classifier.TokenMomentumAccel, "SIGNAL_DEMO_REQUEST"})
			So(err, ShouldBeNil)

			So(hot, ShouldBeGreaterThan, cold)
		})

		Convey("Structural tokens do not shift the prediction", func() {
			bare, err := s.Predict(ctx, []string{"SIGNAL_PROFILE_VISIT"})
			So(err, ShouldBeNil)

			framed, err := s.Predict(ctx, []string{classifier.TokenStart, "SIGNAL_PROFILE_VISIT", classifier.TokenEnd})
			So(err, ShouldBeNil)

			So(framed, ShouldEqual, bare)
		})

		Convey("Unknown tokens fall back to the default weight", func() {
			p, err := s.Predict(ctx, []string{"SIGNAL_CARRIER_PIGEON"})
			So(err, ShouldBeNil)
			So(p, ShouldBeBetween, 0.0, 1.0)
		})

		Convey("A cancelled context aborts the call", func() {
			slow := classifier.NewStub(classifier.WithLatencyRange(time.Second, 2*time.Second))
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := slow.Predict(cancelled, []string{"SIGNAL_PROFILE_VISIT"})
			So(err, ShouldNotBeNil)
		})

		Convey("Concurrent callers share one stub safely", func() {
			// The batch fan-out and the worker pool hit one stub at
			// once; every draw of the latency RNG must stay valid.
			const callers = 8
			var wg sync.WaitGroup
			errs := make([]error, callers)
			probs := make([]float64, callers)

			wg.Add(callers)
			for i := 0; i < callers; i++ {
				go func(slot int) {
					defer wg.Done()
					probs[slot], errs[slot] = s.Predict(ctx, []string{"SIGNAL_DEMO_REQUEST"})
				}(i)
			}
			wg.Wait()

			for i := 0; i < callers; i++ {
				So(errs[i], ShouldBeNil)
				So(probs[i], ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		})
	})
}

func TestTokenizeLead(t *testing.T) {
	Convey("Given a lead and its signals", t, func() {
		l := &lead.Lead{
			SubjectID: "urn:li:person:jane",
			Contact:   &lead.Contact{MonthsInRole: 4},
			Company:   &lead.Company{FundingStage: "Series A"},
		}

		ev, err := signal.New(signal.TypeDemoRequest, l.SubjectID, fixedNow.Add(-2*24*time.Hour),
			signal.SourceCompanyWebsite, signal.GenericPayload{})
		So(err, ShouldBeNil)

		tokens := classifier.TokenizeLead(l, []signal.Event{ev}, fixedNow)

		Convey("The sequence is framed by start and end markers", func() {
			So(tokens[0], ShouldEqual, classifier.TokenStart)
			So(tokens[len(tokens)-1], ShouldEqual, classifier.TokenEnd)
		})

		Convey("Tenure, funding, and signal buckets appear", func() {
			So(tokens, ShouldContain, classifier.TokenTenureShort)
			So(tokens, ShouldContain, classifier.TokenFundingSeriesA)
			So(tokens, ShouldContain, "SIGNAL_DEMO_REQUEST")
		})

		Convey("A single recent signal reads as accelerating momentum", func() {
			So(tokens, ShouldContain, classifier.TokenMomentumAccel)
		})
	})

	Convey("Given sparse lead data", t, func() {
		Convey("Missing contact and company fall back to the lowest buckets", func() {
			tokens := classifier.TokenizeLead(&lead.Lead{SubjectID: "urn:li:person:jane"}, nil, fixedNow)

			So(tokens, ShouldContain, classifier.TokenTenureNew)
			So(tokens, ShouldContain, classifier.TokenFundingBootstrap)
			So(tokens, ShouldContain, classifier.TokenMomentumDecline)
		})

		Convey("Stale signals read as declining momentum", func() {
			old, err := signal.New(signal.TypeProfileVisit, "urn:li:person:jane",
				fixedNow.Add(-80*24*time.Hour), signal.SourceLinkedIn, signal.VisitPayload{VisitCount: 1})
			So(err, ShouldBeNil)

			tokens := classifier.TokenizeLead(nil, []signal.Event{old}, fixedNow)
			So(tokens, ShouldContain, classifier.TokenMomentumDecline)
		})
	})
}

func TestSignalToken(t *testing.T) {
	Convey("Signal types map to upper-case vocabulary tokens", t, func() {
		So(classifier.SignalToken(signal.TypeFundingRound), ShouldEqual, "SIGNAL_FUNDING_ROUND")
		So(classifier.SignalToken(signal.TypePricingPageVisit), ShouldEqual, "SIGNAL_PRICING_PAGE_VISIT")
	})
}
