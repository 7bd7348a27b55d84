package workflow

import (
	"context"
	"fmt"

	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/pkg/ctxutil"
)

// ChangeState moves a case to the given state and records the transition.
// Any declared state id is a legal target; nonexistent state ids surface as
// ErrNotFound from the foreign key check.
func (s *Service) ChangeState(ctx context.Context, caseID, newStateID int64, comment string) (*domain.Case, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if caseID <= 0 {
		return nil, domain.NewValidationError("case_id", "required")
	}
	if newStateID <= 0 {
		return nil, domain.NewValidationError("state_id", "required")
	}

	var updated *domain.Case

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.cases.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}

		if !transitionAllowed(c.StateID, newStateID) {
			return fmt.Errorf("%w: transition not allowed", domain.ErrPreconditionFailed)
		}

		before, err := domain.EncodePayload(domain.StateChange{StateID: &c.StateID})
		if err != nil {
			return err
		}
		after, err := domain.EncodePayload(domain.StateChange{StateID: &newStateID})
		if err != nil {
			return err
		}

		updated, err = s.cases.UpdateState(txCtx, caseID, newStateID)
		if err != nil {
			return fmt.Errorf("update state: %w", err)
		}

		if _, err := s.audit.Append(txCtx, domain.AuditEntry{
			TableName: domain.TableCases,
			EntityID:  caseID,
			Action:    domain.AuditActionChangeState,
			Before:    before,
			After:     after,
			UserID:    &userID,
			Comment:   comment,
		}); err != nil {
			return fmt.Errorf("audit state change: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.InfoContext(ctx, "case state changed",
		"case_id", caseID,
		"state_id", newStateID,
	)

	return updated, nil
}
