package registry

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
	GetDetail(ctx context.Context, id int64) (*domain.CaseDetail, error)
	List(ctx context.Context, f casefile.Filter) ([]domain.CaseDetail, error)
	Create(ctx context.Context, c *domain.Case) (*domain.Case, error)
	Update(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error)
	SoftDelete(ctx context.Context, id int64) (*domain.Case, error)
}

type prosecutorRepo interface {
	List(ctx context.Context) ([]domain.Prosecutor, error)
}

type officeRepo interface {
	List(ctx context.Context) ([]domain.Office, error)
}

type catalogRepo interface {
	ListStates(ctx context.Context) ([]domain.CaseState, error)
	ListTypes(ctx context.Context) ([]domain.CaseType, error)
}

type auditRepo interface {
	ListByEntityNewestFirst(ctx context.Context, tableName string, entityID int64) ([]domain.AuditEntry, error)
}

type userRepo interface {
	ListNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements case record keeping and catalog reads. The prosecutor
// and state fields of a case are off limits here: those change only through
// the workflow service.
type Service struct {
	log         *slog.Logger
	cases       caseRepo
	prosecutors prosecutorRepo
	offices     officeRepo
	catalog     catalogRepo
	audit       auditRepo
	users       userRepo
	cfg         config.WorkflowConfig
}

// NewService creates a new Registry service.
func NewService(
	logger *slog.Logger,
	cases caseRepo,
	prosecutors prosecutorRepo,
	offices officeRepo,
	catalog catalogRepo,
	audit auditRepo,
	users userRepo,
	cfg config.WorkflowConfig,
) *Service {
	return &Service{
		log:         logger.With("service", "registry"),
		cases:       cases,
		prosecutors: prosecutors,
		offices:     offices,
		catalog:     catalog,
		audit:       audit,
		users:       users,
		cfg:         cfg,
	}
}
