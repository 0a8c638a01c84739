// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/scout/internal/adapters/repository"
)

// LeadsHandler exposes the decision store.
type LeadsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(deps Dependencies, maxLimit int) *LeadsHandler {
	return &LeadsHandler{deps: deps, maxLimit: maxLimit}
}

// leadEntry mirrors one ranked decision row.
type leadEntry struct {
	Rank         int       `json:"rank"`
	SubjectID    string    `json:"subject_id"`
	CompanyID    string    `json:"company_id,omitempty"`
	IntentScore  float64   `json:"intent_score"`
	IntentLabel  string    `json:"intent_label"`
	ICPScore     float64   `json:"icp_score"`
	SemanticFit  float64   `json:"semantic_score"`
	NeuralProb   float64   `json:"neural_prob"`
	ShouldEngage bool      `json:"should_engage"`
	Priority     string    `json:"priority"`
	Reason       string    `json:"reason"`
	Draft        string    `json:"draft,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toLeadEntry(e repository.Entry) leadEntry {
	return leadEntry{
		Rank:         e.Rank,
		SubjectID:    e.Record.SubjectID,
		CompanyID:    e.Record.CompanyID,
		IntentScore:  e.Record.IntentScore,
		IntentLabel:  e.Record.IntentLabel,
		ICPScore:     e.Record.ICPScore,
		SemanticFit:  e.Record.SemanticScore,
		NeuralProb:   e.Record.NeuralProb,
		ShouldEngage: e.Record.ShouldEngage,
		Priority:     e.Record.Priority,
		Reason:       e.Record.Reason,
		Draft:        e.Record.DraftBody,
		UpdatedAt:    e.Record.UpdatedAt,
	}
}

// HandleTopLeads handles GET /v1/leads/top?limit=N requests.
func (h *LeadsHandler) HandleTopLeads(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_leads"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrapOp(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopLeads(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, err))
		return
	}
	out := make([]leadEntry, len(entries))
	for i, e := range entries {
		out[i] = toLeadEntry(e)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetLead handles GET /v1/leads/{subject_id} requests.
func (h *LeadsHandler) HandleGetLead(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_lead"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	subjectID := strings.TrimPrefix(r.URL.Path, "/v1/leads/")
	if subjectID == "" || strings.Contains(subjectID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Lead(r.Context(), subjectID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", wrapOp(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", wrapOp(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toLeadEntry(entry))
}
