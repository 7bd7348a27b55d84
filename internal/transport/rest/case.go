package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/internal/service/registry"
)

// registryService defines the minimal interface needed by CaseHandler.
type registryService interface {
	GetCase(ctx context.Context, id int64) (*domain.CaseDetail, error)
	ListCases(ctx context.Context, in registry.ListCasesInput) ([]domain.CaseDetail, error)
	CreateCase(ctx context.Context, in registry.CreateCaseInput) (*domain.Case, error)
	UpdateCase(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error)
	DeleteCase(ctx context.Context, id int64) error
	SearchLogs(ctx context.Context, tableName string, entityID int64) ([]registry.LogRecord, error)
}

// summaryService defines the minimal interface needed for the dashboard counts.
type summaryService interface {
	Summarize(ctx context.Context) (domain.CaseSummary, error)
}

// CaseHandler serves case registry endpoints.
type CaseHandler struct {
	registry registryService
	summary  summaryService
	log      *slog.Logger
}

// NewCaseHandler creates a CaseHandler.
func NewCaseHandler(reg registryService, sum summaryService, logger *slog.Logger) *CaseHandler {
	return &CaseHandler{
		registry: reg,
		summary:  sum,
		log:      logger.With("handler", "case"),
	}
}

type createCaseRequest struct {
	Correlative string `json:"correlative"`
	Name        string `json:"name"`
	Observation string `json:"observation"`
	TypeID      *int64 `json:"type_id"`
}

type updateCaseRequest struct {
	Name        *string `json:"name"`
	Observation *string `json:"observation"`
	TypeID      *int64  `json:"type_id"`
}

// List handles GET /api/casos.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := queryDate(q, "from")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	to, err := queryDate(q, "to")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	stateID, err := queryID(q, "state_id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	prosecutorID, err := queryID(q, "prosecutor_id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	cases, err := h.registry.ListCases(r.Context(), registry.ListCasesInput{
		From:         from,
		To:           to,
		StateID:      stateID,
		ProsecutorID: prosecutorID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]caseDetailResponse, 0, len(cases))
	for i := range cases {
		out = append(out, toCaseDetailResponse(&cases[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/casos/{id}.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	detail, err := h.registry.GetCase(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCaseDetailResponse(detail))
}

// Create handles POST /api/casos.
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.registry.CreateCase(r.Context(), registry.CreateCaseInput{
		Correlative: req.Correlative,
		Name:        req.Name,
		Observation: req.Observation,
		TypeID:      req.TypeID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCaseResponse(created))
}

// Update handles PUT /api/casos/{id}.
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var req updateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.registry.UpdateCase(r.Context(), id, domain.CaseUpdateParams{
		Name:        req.Name,
		Observation: req.Observation,
		TypeID:      req.TypeID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCaseResponse(updated))
}

// Delete handles DELETE /api/casos/{id}.
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	if err := h.registry.DeleteCase(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Summary handles GET /api/casos/resumen.
func (h *CaseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.summary.Summarize(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// SearchLogs handles GET /api/logs/{tabla}/{identificador}.
func (h *CaseHandler) SearchLogs(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("tabla")
	entityID, err := pathID(r, "identificador")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records, err := h.registry.SearchLogs(r.Context(), table, entityID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}
