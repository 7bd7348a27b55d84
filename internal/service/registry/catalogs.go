package registry

import (
	"context"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// ListProsecutors returns all active prosecutors with person and office
// resolved.
func (s *Service) ListProsecutors(ctx context.Context) ([]domain.Prosecutor, error) {
	return s.prosecutors.List(ctx)
}

// ListOffices returns all active offices.
func (s *Service) ListOffices(ctx context.Context) ([]domain.Office, error) {
	return s.offices.List(ctx)
}

// ListStates returns all declared case states.
func (s *Service) ListStates(ctx context.Context) ([]domain.CaseState, error) {
	return s.catalog.ListStates(ctx)
}

// ListTypes returns all declared case types.
func (s *Service) ListTypes(ctx context.Context) ([]domain.CaseType, error) {
	return s.catalog.ListTypes(ctx)
}
