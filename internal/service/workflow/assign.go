package workflow

import (
	"context"
	"fmt"

	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/pkg/ctxutil"
)

// AssignProsecutor assigns a prosecutor to a pending case.
//
// The case must be in the pending state. If the case is already assigned to a
// prosecutor from a different office than the target prosecutor's, the
// assignment is rejected with ErrConflict and the attempt is recorded as an
// INVALID_ASSIGNMENT audit entry; the case itself is left untouched.
func (s *Service) AssignProsecutor(ctx context.Context, caseID, prosecutorID int64, comment string) (*domain.Case, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if caseID <= 0 {
		return nil, domain.NewValidationError("case_id", "required")
	}
	if prosecutorID <= 0 {
		return nil, domain.NewValidationError("prosecutor_id", "required")
	}

	var (
		updated *domain.Case
		outErr  error
	)

	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.cases.GetForUpdate(txCtx, caseID)
		if err != nil {
			return err
		}

		if c.StateID != s.cfg.PendingStateID {
			return fmt.Errorf("%w: assignment only allowed while case is pending", domain.ErrPreconditionFailed)
		}

		target, err := s.prosecutors.GetByID(txCtx, prosecutorID)
		if err != nil {
			return err
		}

		if c.ProsecutorID != nil {
			current, err := s.prosecutors.GetByID(txCtx, *c.ProsecutorID)
			if err != nil {
				return fmt.Errorf("resolve current prosecutor: %w", err)
			}

			if crossOfficeConflict(current.OfficeID, target.OfficeID) {
				// The rejection itself must be durably recorded, so the
				// entry is committed and the conflict carried out of the
				// transaction separately.
				if err := s.logInvalidAssignment(txCtx, c, current, target, &userID, comment); err != nil {
					return err
				}
				outErr = fmt.Errorf("%w: prosecutor belongs to a different office", domain.ErrConflict)
				return nil
			}
		}

		before, err := domain.EncodePayload(domain.AssignmentChange{ProsecutorID: c.ProsecutorID})
		if err != nil {
			return err
		}
		after, err := domain.EncodePayload(domain.AssignmentChange{ProsecutorID: &target.ID})
		if err != nil {
			return err
		}

		updated, err = s.cases.UpdateProsecutor(txCtx, caseID, &target.ID)
		if err != nil {
			return fmt.Errorf("update prosecutor: %w", err)
		}

		if _, err := s.audit.Append(txCtx, domain.AuditEntry{
			TableName: domain.TableCases,
			EntityID:  caseID,
			Action:    domain.AuditActionAssignProsecutor,
			Before:    before,
			After:     after,
			UserID:    &userID,
			Comment:   comment,
		}); err != nil {
			return fmt.Errorf("audit assignment: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	if outErr != nil {
		return nil, outErr
	}

	s.log.InfoContext(ctx, "prosecutor assigned",
		"case_id", caseID,
		"prosecutor_id", prosecutorID,
	)

	return updated, nil
}

// crossOfficeConflict reports whether two office references are both known
// and different. An unknown office on either side never conflicts.
func crossOfficeConflict(currentOfficeID, targetOfficeID *int64) bool {
	if currentOfficeID == nil || targetOfficeID == nil {
		return false
	}
	return *currentOfficeID != *targetOfficeID
}

func (s *Service) logInvalidAssignment(ctx context.Context, c *domain.Case, current, target *domain.Prosecutor, userID *int64, comment string) error {
	before, err := domain.EncodePayload(domain.InvalidAssignmentAttempt{
		ProsecutorID: &current.ID,
		OfficeID:     current.OfficeID,
	})
	if err != nil {
		return err
	}
	after, err := domain.EncodePayload(domain.InvalidAssignmentAttempt{
		ProsecutorID: &target.ID,
		OfficeID:     target.OfficeID,
	})
	if err != nil {
		return err
	}

	if comment == "" {
		comment = "assignment rejected: prosecutor belongs to a different office"
	}

	if _, err := s.audit.Append(ctx, domain.AuditEntry{
		TableName: domain.TableCases,
		EntityID:  c.ID,
		Action:    domain.AuditActionInvalidAssignment,
		Before:    before,
		After:     after,
		UserID:    userID,
		Comment:   comment,
	}); err != nil {
		return fmt.Errorf("audit invalid assignment: %w", err)
	}

	return nil
}
