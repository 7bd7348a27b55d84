package workflow

import (
	"context"
	"log/slog"

	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type caseRepo interface {
	GetForUpdate(ctx context.Context, id int64) (*domain.Case, error)
	UpdateProsecutor(ctx context.Context, id int64, prosecutorID *int64) (*domain.Case, error)
	UpdateState(ctx context.Context, id int64, stateID int64) (*domain.Case, error)
}

type prosecutorRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Prosecutor, error)
}

type auditRepo interface {
	Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the case-assignment and state-transition workflow.
// Every case mutation it performs is paired with exactly one audit entry,
// written in the same transaction as the mutation.
type Service struct {
	log         *slog.Logger
	cases       caseRepo
	prosecutors prosecutorRepo
	audit       auditRepo
	tx          txManager
	cfg         config.WorkflowConfig
}

// NewService creates a new Workflow service.
func NewService(
	logger *slog.Logger,
	cases caseRepo,
	prosecutors prosecutorRepo,
	audit auditRepo,
	tx txManager,
	cfg config.WorkflowConfig,
) *Service {
	return &Service{
		log:         logger.With("service", "workflow"),
		cases:       cases,
		prosecutors: prosecutors,
		audit:       audit,
		tx:          tx,
		cfg:         cfg,
	}
}

// transitionAllowed decides whether a case may move between two states.
// Today every declared state is reachable from every other; keeping the
// decision here means a transition table can be introduced without touching
// callers.
func transitionAllowed(fromStateID, toStateID int64) bool {
	_ = fromStateID
	_ = toStateID
	return true
}
