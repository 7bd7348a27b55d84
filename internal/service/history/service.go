package history

import (
	"context"
	"log/slog"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type auditRepo interface {
	ListByEntity(ctx context.Context, tableName string, entityID int64) ([]domain.AuditEntry, error)
}

type caseRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Case, error)
}

type prosecutorRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Prosecutor, error)
}

type officeRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Office, error)
}

type catalogRepo interface {
	GetState(ctx context.Context, id int64) (*domain.CaseState, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service reconstructs a case's history from its audit entries, resolving
// referenced ids back to human-readable names.
type Service struct {
	log         *slog.Logger
	audit       auditRepo
	cases       caseRepo
	prosecutors prosecutorRepo
	offices     officeRepo
	catalog     catalogRepo
	users       userRepo
}

// NewService creates a new History service.
func NewService(
	logger *slog.Logger,
	audit auditRepo,
	cases caseRepo,
	prosecutors prosecutorRepo,
	offices officeRepo,
	catalog catalogRepo,
	users userRepo,
) *Service {
	return &Service{
		log:         logger.With("service", "history"),
		audit:       audit,
		cases:       cases,
		prosecutors: prosecutors,
		offices:     offices,
		catalog:     catalog,
		users:       users,
	}
}
