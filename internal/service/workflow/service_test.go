package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptrack/fiscalia-backend/internal/config"
	"github.com/ptrack/fiscalia-backend/internal/domain"
	"github.com/ptrack/fiscalia-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockCaseRepo struct {
	GetForUpdateFunc     func(ctx context.Context, id int64) (*domain.Case, error)
	UpdateProsecutorFunc func(ctx context.Context, id int64, prosecutorID *int64) (*domain.Case, error)
	UpdateStateFunc      func(ctx context.Context, id int64, stateID int64) (*domain.Case, error)

	updateProsecutorCalls int
	updateStateCalls      int
}

func (m *mockCaseRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Case, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCaseRepo) UpdateProsecutor(ctx context.Context, id int64, prosecutorID *int64) (*domain.Case, error) {
	m.updateProsecutorCalls++
	if m.UpdateProsecutorFunc != nil {
		return m.UpdateProsecutorFunc(ctx, id, prosecutorID)
	}
	return &domain.Case{ID: id, ProsecutorID: prosecutorID}, nil
}

func (m *mockCaseRepo) UpdateState(ctx context.Context, id int64, stateID int64) (*domain.Case, error) {
	m.updateStateCalls++
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, id, stateID)
	}
	return &domain.Case{ID: id, StateID: stateID}, nil
}

type mockProsecutorRepo struct {
	GetByIDFunc func(ctx context.Context, id int64) (*domain.Prosecutor, error)
}

func (m *mockProsecutorRepo) GetByID(ctx context.Context, id int64) (*domain.Prosecutor, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type mockAuditRepo struct {
	AppendFunc func(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)

	entries []domain.AuditEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	m.entries = append(m.entries, entry)
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, entry)
	}
	entry.ID = int64(len(m.entries))
	return entry, nil
}

type mockTxManager struct {
	committed int
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	m.committed++
	return nil
}

// ===========================================================================
// Fixtures
// ===========================================================================

const (
	pendingStateID   = int64(1)
	finalizedStateID = int64(3)
)

func newTestService(cases *mockCaseRepo, prosecutors *mockProsecutorRepo, audit *mockAuditRepo, tx *mockTxManager) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, cases, prosecutors, audit, tx, config.WorkflowConfig{
		PendingStateID:   pendingStateID,
		FinalizedStateID: finalizedStateID,
	})
}

func authedCtx(userID int64) context.Context {
	return ctxutil.WithUserID(context.Background(), userID)
}

func ptr(v int64) *int64 { return &v }

func pendingCase(id int64, prosecutorID *int64) *domain.Case {
	return &domain.Case{ID: id, ProsecutorID: prosecutorID, Correlative: "EXP-001", StateID: pendingStateID}
}

func prosecutorIn(id int64, officeID *int64) *domain.Prosecutor {
	return &domain.Prosecutor{ID: id, PersonID: id + 100, OfficeID: officeID}
}

// ===========================================================================
// AssignProsecutor
// ===========================================================================

func TestAssignProsecutor_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})

	_, err := svc.AssignProsecutor(context.Background(), 1, 2, "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAssignProsecutor_InvalidInput(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})
	ctx := authedCtx(10)

	_, err := svc.AssignProsecutor(ctx, 0, 2, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AssignProsecutor(ctx, 1, 0, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssignProsecutor_CaseNotFound(t *testing.T) {
	t.Parallel()
	audit := &mockAuditRepo{}
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, audit, &mockTxManager{})

	_, err := svc.AssignProsecutor(authedCtx(10), 99, 2, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, audit.entries)
}

func TestAssignProsecutor_NotPending(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return &domain.Case{ID: id, StateID: finalizedStateID}, nil
		},
	}
	audit := &mockAuditRepo{}
	svc := newTestService(cases, &mockProsecutorRepo{}, audit, &mockTxManager{})

	_, err := svc.AssignProsecutor(authedCtx(10), 1, 2, "")
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	assert.Zero(t, cases.updateProsecutorCalls, "case must not be mutated")
	assert.Empty(t, audit.entries, "precondition failures are not logged")
}

func TestAssignProsecutor_ProsecutorNotFound(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, nil), nil
		},
	}
	svc := newTestService(cases, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})

	_, err := svc.AssignProsecutor(authedCtx(10), 1, 2, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, cases.updateProsecutorCalls)
}

func TestAssignProsecutor_FirstAssignment(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, nil), nil
		},
	}
	prosecutors := &mockProsecutorRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.Prosecutor, error) {
			return prosecutorIn(id, ptr(5)), nil
		},
	}
	audit := &mockAuditRepo{}
	tx := &mockTxManager{}
	svc := newTestService(cases, prosecutors, audit, tx)

	got, err := svc.AssignProsecutor(authedCtx(10), 1, 7, "primera asignacion")
	require.NoError(t, err)
	require.NotNil(t, got.ProsecutorID)
	assert.Equal(t, int64(7), *got.ProsecutorID)
	assert.Equal(t, 1, tx.committed)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, domain.AuditActionAssignProsecutor, entry.Action)
	assert.Equal(t, domain.TableCases, entry.TableName)
	assert.Equal(t, int64(1), entry.EntityID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, int64(10), *entry.UserID)
	assert.Equal(t, "primera asignacion", entry.Comment)

	before, err := domain.DecodeAssignmentChange(entry.Before)
	require.NoError(t, err)
	assert.Nil(t, before.ProsecutorID, "before must record the unassigned state")

	after, err := domain.DecodeAssignmentChange(entry.After)
	require.NoError(t, err)
	require.NotNil(t, after.ProsecutorID)
	assert.Equal(t, int64(7), *after.ProsecutorID)
}

func TestAssignProsecutor_CrossOfficeConflict(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, ptr(7)), nil
		},
	}
	prosecutors := &mockProsecutorRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.Prosecutor, error) {
			if id == 7 {
				return prosecutorIn(7, ptr(1)), nil
			}
			return prosecutorIn(id, ptr(2)), nil
		},
	}
	audit := &mockAuditRepo{}
	tx := &mockTxManager{}
	svc := newTestService(cases, prosecutors, audit, tx)

	_, err := svc.AssignProsecutor(authedCtx(10), 1, 8, "")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, cases.updateProsecutorCalls, "case must stay unchanged")
	assert.Equal(t, 1, tx.committed, "the rejection entry must be committed")

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, domain.AuditActionInvalidAssignment, entry.Action)
	assert.NotEmpty(t, entry.Comment)

	before, err := domain.DecodeInvalidAssignmentAttempt(entry.Before)
	require.NoError(t, err)
	require.NotNil(t, before.ProsecutorID)
	assert.Equal(t, int64(7), *before.ProsecutorID)
	require.NotNil(t, before.OfficeID)
	assert.Equal(t, int64(1), *before.OfficeID)

	after, err := domain.DecodeInvalidAssignmentAttempt(entry.After)
	require.NoError(t, err)
	require.NotNil(t, after.ProsecutorID)
	assert.Equal(t, int64(8), *after.ProsecutorID)
	require.NotNil(t, after.OfficeID)
	assert.Equal(t, int64(2), *after.OfficeID)
}

func TestAssignProsecutor_SameOfficeReassignment(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, ptr(7)), nil
		},
	}
	prosecutors := &mockProsecutorRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.Prosecutor, error) {
			return prosecutorIn(id, ptr(1)), nil
		},
	}
	audit := &mockAuditRepo{}
	svc := newTestService(cases, prosecutors, audit, &mockTxManager{})

	got, err := svc.AssignProsecutor(authedCtx(10), 1, 8, "")
	require.NoError(t, err)
	require.NotNil(t, got.ProsecutorID)
	assert.Equal(t, int64(8), *got.ProsecutorID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, domain.AuditActionAssignProsecutor, audit.entries[0].Action)

	before, err := domain.DecodeAssignmentChange(audit.entries[0].Before)
	require.NoError(t, err)
	require.NotNil(t, before.ProsecutorID)
	assert.Equal(t, int64(7), *before.ProsecutorID)
}

func TestAssignProsecutor_UnknownOfficeNeverConflicts(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, ptr(7)), nil
		},
	}
	prosecutors := &mockProsecutorRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.Prosecutor, error) {
			if id == 7 {
				return prosecutorIn(7, nil), nil // current prosecutor without office
			}
			return prosecutorIn(id, ptr(2)), nil
		},
	}
	audit := &mockAuditRepo{}
	svc := newTestService(cases, prosecutors, audit, &mockTxManager{})

	_, err := svc.AssignProsecutor(authedCtx(10), 1, 8, "")
	require.NoError(t, err)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, domain.AuditActionAssignProsecutor, audit.entries[0].Action)
}

func TestAssignProsecutor_AuditFailureAbortsOperation(t *testing.T) {
	t.Parallel()
	storageErr := errors.New("log table unavailable")
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, nil), nil
		},
	}
	prosecutors := &mockProsecutorRepo{
		GetByIDFunc: func(_ context.Context, id int64) (*domain.Prosecutor, error) {
			return prosecutorIn(id, ptr(1)), nil
		},
	}
	audit := &mockAuditRepo{
		AppendFunc: func(_ context.Context, _ domain.AuditEntry) (domain.AuditEntry, error) {
			return domain.AuditEntry{}, storageErr
		},
	}
	tx := &mockTxManager{}
	svc := newTestService(cases, prosecutors, audit, tx)

	_, err := svc.AssignProsecutor(authedCtx(10), 1, 8, "")
	require.ErrorIs(t, err, storageErr)
	assert.Zero(t, tx.committed, "mutation without its audit record must not commit")
}

// ===========================================================================
// ChangeState
// ===========================================================================

func TestChangeState_Unauthorized(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})

	_, err := svc.ChangeState(context.Background(), 1, 2, "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestChangeState_InvalidInput(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})
	ctx := authedCtx(10)

	_, err := svc.ChangeState(ctx, 0, 2, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ChangeState(ctx, 1, 0, "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangeState_CaseNotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockCaseRepo{}, &mockProsecutorRepo{}, &mockAuditRepo{}, &mockTxManager{})

	_, err := svc.ChangeState(authedCtx(10), 99, 2, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeState_HappyPath(t *testing.T) {
	t.Parallel()
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, nil), nil
		},
	}
	audit := &mockAuditRepo{}
	tx := &mockTxManager{}
	svc := newTestService(cases, &mockProsecutorRepo{}, audit, tx)

	got, err := svc.ChangeState(authedCtx(10), 1, finalizedStateID, "caso cerrado")
	require.NoError(t, err)
	assert.Equal(t, finalizedStateID, got.StateID)
	assert.Equal(t, 1, cases.updateStateCalls)
	assert.Equal(t, 1, tx.committed)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, domain.AuditActionChangeState, entry.Action)
	assert.Equal(t, "caso cerrado", entry.Comment)

	before, err := domain.DecodeStateChange(entry.Before)
	require.NoError(t, err)
	require.NotNil(t, before.StateID)
	assert.Equal(t, pendingStateID, *before.StateID)

	after, err := domain.DecodeStateChange(entry.After)
	require.NoError(t, err)
	require.NotNil(t, after.StateID)
	assert.Equal(t, finalizedStateID, *after.StateID)
}

func TestChangeState_AuditFailureAbortsOperation(t *testing.T) {
	t.Parallel()
	storageErr := errors.New("log table unavailable")
	cases := &mockCaseRepo{
		GetForUpdateFunc: func(_ context.Context, id int64) (*domain.Case, error) {
			return pendingCase(id, nil), nil
		},
	}
	audit := &mockAuditRepo{
		AppendFunc: func(_ context.Context, _ domain.AuditEntry) (domain.AuditEntry, error) {
			return domain.AuditEntry{}, storageErr
		},
	}
	tx := &mockTxManager{}
	svc := newTestService(cases, &mockProsecutorRepo{}, audit, tx)

	_, err := svc.ChangeState(authedCtx(10), 1, 2, "")
	require.ErrorIs(t, err, storageErr)
	assert.Zero(t, tx.committed)
}
