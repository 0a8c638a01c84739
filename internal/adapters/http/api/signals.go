// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/scout/internal/app"
)

// SignalsHandler ingests signals for async rescoring.
type SignalsHandler struct {
	deps Dependencies
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(deps Dependencies) *SignalsHandler {
	return &SignalsHandler{deps: deps}
}

// HandlePostSignal handles POST /v1/signals requests.
func (h *SignalsHandler) HandlePostSignal(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_signal"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req signalPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, errors.New("missing id")))
		return
	}
	ev, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
		return
	}

	switch err := h.deps.RecordSignal(r.Context(), ev); {
	case errors.Is(err, service.ErrDuplicateSignal):
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", wrapOp(op, ErrBackpressure))
	case err != nil:
		writeError(w, http.StatusBadRequest, "bad_request", wrapOp(op, err))
	default:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	}
}
