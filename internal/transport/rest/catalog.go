package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// catalogService defines the minimal interface needed by CatalogHandler.
type catalogService interface {
	ListProsecutors(ctx context.Context) ([]domain.Prosecutor, error)
	ListOffices(ctx context.Context) ([]domain.Office, error)
	ListStates(ctx context.Context) ([]domain.CaseState, error)
	ListTypes(ctx context.Context) ([]domain.CaseType, error)
}

// CatalogHandler serves the reference listings used to populate the
// registration and filter forms.
type CatalogHandler struct {
	svc catalogService
	log *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(svc catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: logger.With("handler", "catalog")}
}

// Prosecutors handles GET /api/fiscales.
func (h *CatalogHandler) Prosecutors(w http.ResponseWriter, r *http.Request) {
	prosecutors, err := h.svc.ListProsecutors(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]prosecutorResponse, 0, len(prosecutors))
	for i := range prosecutors {
		out = append(out, toProsecutorResponse(&prosecutors[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Offices handles GET /api/fiscalias.
func (h *CatalogHandler) Offices(w http.ResponseWriter, r *http.Request) {
	offices, err := h.svc.ListOffices(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]officeResponse, 0, len(offices))
	for i := range offices {
		out = append(out, toOfficeResponse(&offices[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// States handles GET /api/estados.
func (h *CatalogHandler) States(w http.ResponseWriter, r *http.Request) {
	states, err := h.svc.ListStates(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]catalogResponse, 0, len(states))
	for _, s := range states {
		out = append(out, catalogResponse{ID: s.ID, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// Types handles GET /api/tipos.
func (h *CatalogHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListTypes(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]catalogResponse, 0, len(types))
	for _, t := range types {
		out = append(out, catalogResponse{ID: t.ID, Name: t.Name})
	}
	writeJSON(w, http.StatusOK, out)
}
