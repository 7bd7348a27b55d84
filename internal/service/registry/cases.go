package registry

import (
	"context"
	"strings"
	"time"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres/casefile"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// CreateCaseInput holds the fields accepted when registering a new case.
// The state always starts at the configured pending state.
type CreateCaseInput struct {
	Correlative string
	Name        string
	Observation string
	TypeID      *int64
}

// ListCasesInput narrows the case listing.
type ListCasesInput struct {
	From         *time.Time
	To           *time.Time
	StateID      *int64
	ProsecutorID *int64
	Limit        int
}

// GetCase returns an active case with its references resolved.
func (s *Service) GetCase(ctx context.Context, id int64) (*domain.CaseDetail, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("case_id", "required")
	}
	return s.cases.GetDetail(ctx, id)
}

// ListCases returns active cases matching the input, newest first.
func (s *Service) ListCases(ctx context.Context, in ListCasesInput) ([]domain.CaseDetail, error) {
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, domain.NewValidationError("to", "must not precede from")
	}

	return s.cases.List(ctx, casefile.Filter{
		From:         in.From,
		To:           in.To,
		StateID:      in.StateID,
		ProsecutorID: in.ProsecutorID,
		Limit:        in.Limit,
	})
}

// CreateCase registers a new case in the pending state.
func (s *Service) CreateCase(ctx context.Context, in CreateCaseInput) (*domain.Case, error) {
	in.Correlative = strings.TrimSpace(in.Correlative)
	if in.Correlative == "" {
		return nil, domain.NewValidationError("correlative", "required")
	}
	if in.TypeID != nil && *in.TypeID <= 0 {
		return nil, domain.NewValidationError("type_id", "must be positive")
	}

	created, err := s.cases.Create(ctx, &domain.Case{
		Correlative: in.Correlative,
		Name:        strings.TrimSpace(in.Name),
		Observation: in.Observation,
		StateID:     s.cfg.PendingStateID,
		TypeID:      in.TypeID,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "case registered",
		"case_id", created.ID,
		"correlative", created.Correlative,
	)

	return created, nil
}

// UpdateCase modifies the descriptive fields of an active case.
func (s *Service) UpdateCase(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("case_id", "required")
	}
	if params.Name == nil && params.Observation == nil && params.TypeID == nil {
		return nil, domain.NewValidationError("params", "no fields to update")
	}

	return s.cases.Update(ctx, id, params)
}

// DeleteCase soft-deletes a case. The record and its audit trail remain
// readable afterwards.
func (s *Service) DeleteCase(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.NewValidationError("case_id", "required")
	}

	if _, err := s.cases.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "case soft-deleted", "case_id", id)
	return nil
}
