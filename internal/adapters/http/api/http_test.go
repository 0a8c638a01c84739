package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/scout/internal/adapters/http/api"
	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/engage"
	"github.com/okian/scout/internal/domain/icp"
	"github.com/okian/scout/internal/domain/intent"
	"github.com/okian/scout/internal/domain/lead"
	"github.com/okian/scout/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("boom")

// fakeDeps is a canned Dependencies implementation for handler tests.
type fakeDeps struct {
	processErr error
	recordErr  error
	topErr     error

	entries  []repository.Entry
	bySubj   map[string]repository.Entry
	recorded []signal.Event
}

func (f *fakeDeps) ProcessLead(_ context.Context, req service.LeadRequest) (*service.Result, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &service.Result{
		Lead: &lead.Lead{SubjectID: req.Enrich.SubjectID},
		ICP: icp.Result{
			Score:     94.0,
			Breakdown: map[string]float64{"size": 1.0},
			Authority: "decision_maker",
		},
		SemanticFit: 88.0,
		Intent: intent.Score{
			Score: 98.2,
			Label: intent.LabelHigh,
		},
		NeuralProb:       0.7,
		AttentionWeights: map[string]float64{"demo_request_0": 1.0},
		Decision: engage.Decision{
			ShouldEngage: true,
			Priority:     engage.PriorityHigh,
			Reason:       engage.ReasonQualified,
			DecidedAt:    time.Now(),
		},
	}, nil
}

func (f *fakeDeps) ProcessBatch(ctx context.Context, reqs []service.LeadRequest) []service.BatchResult {
	out := make([]service.BatchResult, len(reqs))
	for i, req := range reqs {
		res, err := f.ProcessLead(ctx, req)
		out[i] = service.BatchResult{Result: res, Err: err}
	}
	return out
}

func (f *fakeDeps) RecordSignal(_ context.Context, ev signal.Event) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, ev)
	return nil
}

func (f *fakeDeps) TopLeads(_ context.Context, n int) ([]repository.Entry, error) {
	if f.topErr != nil {
		return nil, f.topErr
	}
	if n > len(f.entries) {
		n = len(f.entries)
	}
	return f.entries[:n], nil
}

func (f *fakeDeps) Lead(_ context.Context, subjectID string) (repository.Entry, error) {
	e, ok := f.bySubj[subjectID]
	if !ok {
		return repository.Entry{}, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeDeps) Stats(context.Context) map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func decodeJSON(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func newTestServer(deps *fakeDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, 100).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

const scoreBody = `{
	"subject_id": "alice",
	"profile_url": "https://linkedin.com/in/alice",
	"contact": {"name": "Alice", "title": "CEO"},
	"company": {"name": "Acme", "size": 150, "industry": "saas"},
	"signals": [
		{"id": "sig-1", "type": "demo_request", "ts": "2026-04-01T12:00:00Z", "source": "company_website", "strength": 1.0}
	]
}`

func TestScoreEndpoint(t *testing.T) {
	Convey("Given the score endpoint", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When a valid lead payload is posted", func() {
			resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(scoreBody))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the full result record should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(decodeJSON(resp, &out), ShouldBeNil)
				So(out["subject_id"], ShouldEqual, "alice")
				decision := out["decision"].(map[string]any)
				So(decision["should_engage"], ShouldBeTrue)
				So(decision["reason"], ShouldEqual, "High Intent + High ICP Match")
				intentSec := out["intent"].(map[string]any)
				So(intentSec["neural_prob"], ShouldEqual, 0.7)
			})
		})

		Convey("When the body is not JSON", func() {
			resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader("{nope"))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should be rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When both URLs are missing", func() {
			resp, err := http.Post(srv.URL+"/v1/score", "application/json",
				strings.NewReader(`{"subject_id":"x"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then validation should fail", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When an inline signal has an out-of-range strength", func() {
			body := `{"profile_url":"https://linkedin.com/in/x","signals":[{"id":"s","type":"demo_request","strength":1.5}]}`
			resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then validation should fail", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When enrichment fails upstream", func() {
			deps.processErr = errBoom
			resp, err := http.Post(srv.URL+"/v1/score", "application/json", strings.NewReader(scoreBody))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the lead should be unprocessable", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusUnprocessableEntity)
			})
		})

		Convey("When the method is wrong", func() {
			resp, err := http.Get(srv.URL + "/v1/score")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestScoreBatchEndpoint(t *testing.T) {
	Convey("Given the batch score endpoint", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When a batch mixes valid and invalid leads", func() {
			body := `{"leads":[
				{"profile_url":"https://linkedin.com/in/a","subject_id":"a"},
				{"subject_id":"no-urls"}
			]}`
			resp, err := http.Post(srv.URL+"/v1/score/batch", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then each slot should carry its own outcome", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out []map[string]any
				So(decodeJSON(resp, &out), ShouldBeNil)
				So(out, ShouldHaveLength, 2)
				So(out[0]["result"], ShouldNotBeNil)
				So(out[0]["error"], ShouldBeNil)
				So(out[1]["result"], ShouldBeNil)
			})
		})

		Convey("When the batch is empty", func() {
			resp, err := http.Post(srv.URL+"/v1/score/batch", "application/json", strings.NewReader(`{"leads":[]}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSignalsEndpoint(t *testing.T) {
	Convey("Given the signals endpoint", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		signalBody := `{"id":"sig-1","type":"content_engagement","subject_id":"alice","ts":"2026-04-01T12:00:00Z","source":"linkedin","payload":{"event_type":"share"}}`

		Convey("When a valid signal is posted", func() {
			resp, err := http.Post(srv.URL+"/v1/signals", "application/json", strings.NewReader(signalBody))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should be accepted", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(deps.recorded, ShouldHaveLength, 1)
			})

			Convey("Then the strength should follow the engagement convention", func() {
				So(deps.recorded[0].Strength, ShouldEqual, 0.9)
			})
		})

		Convey("When the signal is a known duplicate", func() {
			deps.recordErr = service.ErrDuplicateSignal
			resp, err := http.Post(srv.URL+"/v1/signals", "application/json", strings.NewReader(signalBody))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the ack should flag the duplicate", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(decodeJSON(resp, &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldBeTrue)
			})
		})

		Convey("When the rescore queue is full", func() {
			deps.recordErr = service.ErrBackpressure
			resp, err := http.Post(srv.URL+"/v1/signals", "application/json", strings.NewReader(signalBody))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When the signal has no id", func() {
			resp, err := http.Post(srv.URL+"/v1/signals", "application/json",
				strings.NewReader(`{"type":"demo_request","subject_id":"alice"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the subject id is empty", func() {
			resp, err := http.Post(srv.URL+"/v1/signals", "application/json",
				strings.NewReader(`{"id":"sig-2","type":"demo_request"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeadsEndpoints(t *testing.T) {
	Convey("Given the leads endpoints", t, func() {
		rec := repository.Record{
			SubjectID:    "alice",
			IntentScore:  98.2,
			IntentLabel:  "high",
			ShouldEngage: true,
			Priority:     "high",
		}
		deps := &fakeDeps{
			entries: []repository.Entry{{Rank: 1, Record: rec}},
			bySubj:  map[string]repository.Entry{"alice": {Rank: 1, Record: rec}},
		}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When the top listing is requested", func() {
			resp, err := http.Get(srv.URL + "/v1/leads/top?limit=10")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the ranked rows should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out []map[string]any
				So(decodeJSON(resp, &out), ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				So(out[0]["subject_id"], ShouldEqual, "alice")
				So(out[0]["rank"], ShouldEqual, 1)
			})
		})

		Convey("When the limit is missing", func() {
			resp, err := http.Get(srv.URL + "/v1/leads/top")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the cap", func() {
			resp, err := http.Get(srv.URL + "/v1/leads/top?limit=5000")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a scored lead is fetched by id", func() {
			resp, err := http.Get(srv.URL + "/v1/leads/alice")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then its decision row should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(decodeJSON(resp, &out), ShouldBeNil)
				So(out["should_engage"], ShouldBeTrue)
			})
		})

		Convey("When an unknown lead is fetched", func() {
			resp, err := http.Get(srv.URL + "/v1/leads/nobody")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		deps := &fakeDeps{}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When /healthz is scraped", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When /stats is read", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the service state should come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out map[string]any
				So(decodeJSON(resp, &out), ShouldBeNil)
				So(out["started"], ShouldBeTrue)
			})
		})
	})
}
