package report

import (
	"context"
	"log/slog"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/casefile"
	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type caseRepo interface {
	List(ctx context.Context, f casefile.Filter) ([]domain.CaseDetail, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type prosecutorRepo interface {
	GetByPersonID(ctx context.Context, personID int64) (*domain.Prosecutor, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service renders the case listing as a spreadsheet. Prosecutor-role callers
// only ever see their own cases; the filter is forced server-side.
type Service struct {
	log         *slog.Logger
	cases       caseRepo
	users       userRepo
	prosecutors prosecutorRepo
	cfg         config.ReportConfig
}

// NewService creates a new Report service.
func NewService(
	logger *slog.Logger,
	cases caseRepo,
	users userRepo,
	prosecutors prosecutorRepo,
	cfg config.ReportConfig,
) *Service {
	return &Service{
		log:         logger.With("service", "report"),
		cases:       cases,
		users:       users,
		prosecutors: prosecutors,
		cfg:         cfg,
	}
}
