package rest

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"net/http"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// workflowService defines the minimal interface needed by WorkflowHandler.
type workflowService interface {
	AssignProsecutor(ctx context.Context, caseID, prosecutorID int64, comment string) (*domain.Case, error)
	ChangeState(ctx context.Context, caseID, newStateID int64, comment string) (*domain.Case, error)
}

// historyService defines the minimal interface for timeline reconstruction.
type historyService interface {
	BuildTimeline(ctx context.Context, caseID int64) (iter.Seq2[domain.TimelineEntry, error], error)
}

// WorkflowHandler serves the case workflow endpoints: prosecutor assignment,
// state changes, and the reconstructed history timeline.
type WorkflowHandler struct {
	workflow workflowService
	history  historyService
	log      *slog.Logger
}

// NewWorkflowHandler creates a WorkflowHandler.
func NewWorkflowHandler(wf workflowService, hist historyService, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflow: wf,
		history:  hist,
		log:      logger.With("handler", "workflow"),
	}
}

type assignRequest struct {
	CaseID       int64  `json:"caso_id"`
	ProsecutorID int64  `json:"fiscal_id"`
	Comment      string `json:"comentario"`
}

type changeStateRequest struct {
	CaseID  int64  `json:"caso_id"`
	StateID int64  `json:"estado_id"`
	Comment string `json:"comentario"`
}

// Assign handles POST /api/casos/asignar-fiscal.
func (h *WorkflowHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.workflow.AssignProsecutor(r.Context(), req.CaseID, req.ProsecutorID, req.Comment)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCaseResponse(updated))
}

// ChangeState handles POST /api/casos/modificar-estado.
func (h *WorkflowHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	var req changeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.workflow.ChangeState(r.Context(), req.CaseID, req.StateID, req.Comment)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCaseResponse(updated))
}

// Timeline handles GET /api/casos/{id}/historial.
func (h *WorkflowHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	caseID, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	seq, err := h.history.BuildTimeline(r.Context(), caseID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries := make([]domain.TimelineEntry, 0)
	for entry, err := range seq {
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, entries)
}
