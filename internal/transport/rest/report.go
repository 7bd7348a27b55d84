package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ptrack/fiscalia-backend/internal/service/report"
)

// reportService defines the minimal interface needed by ReportHandler.
type reportService interface {
	Generate(ctx context.Context, in report.Input) ([]byte, error)
}

// ReportHandler serves the spreadsheet export endpoint.
type ReportHandler struct {
	svc reportService
	log *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(svc reportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: logger.With("handler", "report")}
}

// Generate handles GET /api/casos/reporte. The filtered case listing is
// returned as an .xlsx attachment.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	data, err := h.svc.Generate(r.Context(), report.Input{
		From:         from,
		To:           to,
		StateID:      stateID,
		ProsecutorID: prosecutorID,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	filename := fmt.Sprintf("reporte-casos-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}
