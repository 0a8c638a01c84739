// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/scout/internal/adapters/repository"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/signal"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the pipeline implementation.
type Dependencies interface {
	// ProcessLead runs the full scoring pipeline for one lead.
	ProcessLead(ctx context.Context, req service.LeadRequest) (*service.Result, error)

	// ProcessBatch fans the pipeline out across leads.
	ProcessBatch(ctx context.Context, reqs []service.LeadRequest) []service.BatchResult

	// RecordSignal ingests one signal and schedules an async rescore.
	RecordSignal(ctx context.Context, ev signal.Event) error

	// TopLeads and Lead expose the decision store.
	TopLeads(ctx context.Context, n int) ([]repository.Entry, error)
	Lead(ctx context.Context, subjectID string) (repository.Entry, error)

	// Stats reports pipeline state for monitoring.
	Stats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	scoreHandler   *ScoreHandler
	signalsHandler *SignalsHandler
	leadsHandler   *LeadsHandler
	statsHandler   *StatsHandler
	healthHandler  *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxTopLimit int) *Server {
	return &Server{
		scoreHandler:   NewScoreHandler(deps),
		signalsHandler: NewSignalsHandler(deps),
		leadsHandler:   NewLeadsHandler(deps, maxTopLimit),
		statsHandler:   NewStatsHandler(deps),
		healthHandler:  NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/score", MetricsMiddleware(s.scoreHandler.HandleScore, "score"))
	mux.HandleFunc("/v1/score/batch", MetricsMiddleware(s.scoreHandler.HandleScoreBatch, "score_batch"))
	mux.HandleFunc("/v1/signals", MetricsMiddleware(s.signalsHandler.HandlePostSignal, "signals"))
	mux.HandleFunc("/v1/leads/top", MetricsMiddleware(s.leadsHandler.HandleTopLeads, "leads_top"))
	mux.HandleFunc("/v1/leads/", MetricsMiddleware(s.leadsHandler.HandleGetLead, "leads_get"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
