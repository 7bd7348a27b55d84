package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

type caseRepo interface {
	Summary(ctx context.Context, finalizedStateID int64) (domain.CaseSummary, error)
}

// Service computes the dashboard case counts.
type Service struct {
	log   *slog.Logger
	cases caseRepo
	cfg   config.WorkflowConfig
}

// NewService creates a new Summary service.
func NewService(logger *slog.Logger, cases caseRepo, cfg config.WorkflowConfig) *Service {
	return &Service{
		log:   logger.With("service", "summary"),
		cases: cases,
		cfg:   cfg,
	}
}

// Summarize counts active cases in three independent buckets: without a
// prosecutor, with a prosecutor, and in the finalized state. A finalized
// case with a prosecutor counts in both of the last two.
func (s *Service) Summarize(ctx context.Context) (domain.CaseSummary, error) {
	counts, err := s.cases.Summary(ctx, s.cfg.FinalizedStateID)
	if err != nil {
		return domain.CaseSummary{}, fmt.Errorf("summarize cases: %w", err)
	}
	return counts, nil
}
