// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/enrich"
	"github.com/okian/scout/internal/domain/signal"
)

// maxBatchSize bounds one POST /v1/score/batch request.
const maxBatchSize = 500

// ScoreHandler runs the pipeline for inline lead payloads.
type ScoreHandler struct {
	deps Dependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps Dependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// scoreRequest mirrors the JSON schema for POST /v1/score.
type scoreRequest struct {
	SubjectID  string          `json:"subject_id"`
	ProfileURL string          `json:"profile_url"`
	CompanyURL string          `json:"company_url"`
	Contact    contactPayload  `json:"contact"`
	Company    companyPayload  `json:"company"`
	Signals    []signalPayload `json:"signals"`
}

type contactPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Title        string `json:"title"`
	MonthsInRole int    `json:"months_in_role"`
}

type companyPayload struct {
	Name         string   `json:"name"`
	Size         int      `json:"size"`
	Industry     string   `json:"industry"`
	TechStack    []string `json:"tech_stack"`
	FundingStage string   `json:"funding_stage"`
	Website      string   `json:"website"`
	Headquarters string   `json:"headquarters"`
}

type signalPayload struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	SubjectID string         `json:"subject_id"`
	TS        string         `json:"ts"`
	Source    string         `json:"source"`
	Payload   map[string]any `json:"payload"`
	CompanyID string         `json:"company_id"`
	Strength  *float64       `json:"strength"`
}

func (r scoreRequest) validate() error {
	if strings.TrimSpace(r.ProfileURL) == "" && strings.TrimSpace(r.CompanyURL) == "" {
		return errors.New("missing profile_url or company_url")
	}
	return nil
}

// toEvent builds a validated signal event. When strength is omitted it is
// derived from the signal type and payload.
func (p signalPayload) toEvent() (signal.Event, error) {
	if strings.TrimSpace(p.Type) == "" {
		return signal.Event{}, errors.New("missing signal type")
	}
	ts := time.Now()
	if p.TS != "" {
		parsed, err := time.Parse(time.RFC3339, p.TS)
		if err != nil {
			return signal.Event{}, errors.New("invalid ts; must be RFC3339")
		}
		ts = parsed
	}

	var payload signal.Payload
	if p.Payload != nil {
		payload = signal.GenericPayload(p.Payload)
	}

	opts := []signal.Option{
		signal.WithID(p.ID),
		signal.WithCompany(p.CompanyID),
		signal.WithStrength(deriveStrength(signal.Type(p.Type), payload, p.Strength)),
	}
	return signal.New(signal.Type(p.Type), p.SubjectID, ts, signal.Source(p.Source), payload, opts...)
}

// deriveStrength resolves the event strength: an explicit value wins, then
// the per-type convention tables, then the package default.
func deriveStrength(typ signal.Type, payload signal.Payload, explicit *float64) float64 {
	if explicit != nil {
		return *explicit
	}
	action := ""
	if payload != nil {
		action = payload.Action()
	}
	switch typ {
	case signal.TypeContentEngagement:
		return signal.EngagementStrength(action)
	case signal.TypeFundingRound:
		return signal.FundingStrength(action)
	case signal.TypeProfileVisit, signal.TypePricingPageVisit:
		return signal.VisitStrength(visitCount(payload))
	default:
		return signal.EngagementStrength("") // package default
	}
}

func visitCount(payload signal.Payload) int {
	g, ok := payload.(signal.GenericPayload)
	if !ok {
		return 1
	}
	if v, ok := g["visit_count"].(float64); ok {
		return int(v)
	}
	return 1
}

func (r scoreRequest) toLeadRequest() (service.LeadRequest, error) {
	req := service.LeadRequest{
		Enrich: enrich.Request{
			SubjectID:  r.SubjectID,
			ProfileURL: r.ProfileURL,
			CompanyURL: r.CompanyURL,
			Contact: enrich.ContactAttrs{
				Name:         r.Contact.Name,
				Email:        r.Contact.Email,
				Phone:        r.Contact.Phone,
				Title:        r.Contact.Title,
				MonthsInRole: r.Contact.MonthsInRole,
			},
			Company: enrich.CompanyAttrs{
				Name:         r.Company.Name,
				Size:         r.Company.Size,
				Industry:     r.Company.Industry,
				TechStack:    r.Company.TechStack,
				FundingStage: r.Company.FundingStage,
				Website:      r.Company.Website,
				Headquarters: r.Company.Headquarters,
			},
		},
	}
	for _, sp := range r.Signals {
		if sp.SubjectID == "" {
			sp.SubjectID = r.SubjectID
		}
		ev, err := sp.toEvent()
		if err != nil {
			return service.LeadRequest{}, err
		}
		req.Signals = append(req.Signals, ev)
	}
	return req, nil
}

// scoreResponse mirrors the result record returned per lead.
type scoreResponse struct {
	SubjectID string          `json:"subject_id"`
	ICP       icpSection      `json:"icp"`
	Semantic  semanticSection `json:"semantic"`
	Intent    intentSection   `json:"intent"`
	Decision  decisionSection `json:"decision"`
	Draft     *draftSection   `json:"draft,omitempty"`
}

type icpSection struct {
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown"`
	Authority string             `json:"authority"`
}

type semanticSection struct {
	Score float64 `json:"score"`
}

type intentSection struct {
	Score            float64            `json:"score"`
	Label            string             `json:"label"`
	Signals          int                `json:"signals"`
	NeuralProb       float64            `json:"neural_prob"`
	AttentionWeights map[string]float64 `json:"attention_weights"`
}

type decisionSection struct {
	ShouldEngage bool   `json:"should_engage"`
	Priority     string `json:"priority"`
	Reason       string `json:"reason"`
}

type draftSection struct {
	Body string `json:"body"`
}

func toScoreResponse(res *service.Result) scoreResponse {
	out := scoreResponse{
		SubjectID: res.Lead.SubjectID,
		ICP: icpSection{
			Score:     res.ICP.Score,
			Breakdown: res.ICP.Breakdown,
			Authority: res.ICP.Authority,
		},
		Semantic: semanticSection{Score: res.SemanticFit},
		Intent: intentSection{
			Score:            res.Intent.Score,
			Label:            string(res.Intent.Label),
			Signals:          len(res.Intent.Breakdown),
			NeuralProb:       res.NeuralProb,
			AttentionWeights: res.AttentionWeights,
		},
		Decision: decisionSection{
			ShouldEngage: res.Decision.ShouldEngage,
			Priority:     string(res.Decision.Priority),
			Reason:       res.Decision.Reason,
		},
	}
	if res.Draft != nil {
		out.Draft = &draftSection{Body: res.Draft.Body}
	}
	return out
}

// HandleScore handles POST /v1/score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}
	leadReq, err := req.toLeadRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}

	res, err := h.deps.ProcessLead(r.Context(), leadReq)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "enrichment_failed", wrapOp(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toScoreResponse(res))
}

type batchScoreRequest struct {
	Leads []scoreRequest `json:"leads"`
}

type batchScoreItem struct {
	Result *scoreResponse `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// HandleScoreBatch handles POST /v1/score/batch requests. Per-lead failures
// are reported in place; the batch itself always succeeds.
func (h *ScoreHandler) HandleScoreBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}
	if len(req.Leads) == 0 || len(req.Leads) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest))
		return
	}

	items := make([]batchScoreItem, len(req.Leads))
	reqs := make([]service.LeadRequest, 0, len(req.Leads))
	index := make([]int, 0, len(req.Leads))
	for i, lr := range req.Leads {
		leadReq, err := lr.toLeadRequest()
		if err != nil {
			items[i] = batchScoreItem{Error: err.Error()}
			continue
		}
		reqs = append(reqs, leadReq)
		index = append(index, i)
	}

	results := h.deps.ProcessBatch(r.Context(), reqs)
	for j, br := range results {
		i := index[j]
		if br.Err != nil {
			items[i] = batchScoreItem{Error: br.Err.Error()}
			continue
		}
		resp := toScoreResponse(br.Result)
		items[i] = batchScoreItem{Result: &resp}
	}
	writeJSON(w, http.StatusOK, items)
}
