package casefile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides access to the cases table.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           int64      `db:"id"`
	ProsecutorID *int64     `db:"prosecutor_id"`
	Correlative  string     `db:"correlative"`
	Name         string     `db:"name"`
	Observation  string     `db:"observation"`
	StateID      int64      `db:"state_id"`
	TypeID       *int64     `db:"type_id"`
	RegisteredAt time.Time  `db:"registered_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

var columns = []string{
	"id",
	"prosecutor_id",
	"correlative",
	"name",
	"observation",
	"state_id",
	"type_id",
	"registered_at",
	"deleted_at",
}

// GetByID returns the case with the given id, soft-deleted or not. Callers
// that must not touch deleted cases check IsActive themselves.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("cases").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

// GetForUpdate loads the case row and takes a row lock. Only meaningful
// inside a transaction started by the tx manager.
func (r *Repo) GetForUpdate(ctx context.Context, id int64) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("cases").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

func (r *Repo) Create(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	registeredAt := c.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	sql, args, err := qb.Insert("cases").
		Columns("prosecutor_id", "correlative", "name", "observation", "state_id", "type_id", "registered_at").
		Values(c.ProsecutorID, c.Correlative, c.Name, c.Observation, c.StateID, c.TypeID, registeredAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", 0)
	}

	return toDomain(&rw), nil
}

// Update modifies the editable fields of an active case. Nil fields in
// params are left untouched.
func (r *Repo) Update(ctx context.Context, id int64, params domain.CaseUpdateParams) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	upd := qb.Update("cases").
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + strings.Join(columns, ", "))

	set := false
	if params.Name != nil {
		upd = upd.Set("name", *params.Name)
		set = true
	}
	if params.Observation != nil {
		upd = upd.Set("observation", *params.Observation)
		set = true
	}
	if params.TypeID != nil {
		upd = upd.Set("type_id", *params.TypeID)
		set = true
	}
	if !set {
		return nil, domain.NewValidationError("params", "no fields to update")
	}

	sql, args, err := upd.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

// SoftDelete marks an active case as deleted and returns its final row.
func (r *Repo) SoftDelete(ctx context.Context, id int64) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Update("cases").
		Set("deleted_at", time.Now()).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

// UpdateProsecutor sets (or clears, when prosecutorID is nil) the assigned
// prosecutor of a case.
func (r *Repo) UpdateProsecutor(ctx context.Context, id int64, prosecutorID *int64) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Update("cases").
		Set("prosecutor_id", prosecutorID).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

// UpdateState moves a case to the given state.
func (r *Repo) UpdateState(ctx context.Context, id int64, stateID int64) (*domain.Case, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Update("cases").
		Set("state_id", stateID).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return toDomain(&rw), nil
}

// Summary counts active cases bucketed for the dashboard. A case is
// "finalized" when it sits in the given terminal state.
func (r *Repo) Summary(ctx context.Context, finalizedStateID int64) (domain.CaseSummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	const sql = `
		SELECT
			COUNT(*) FILTER (WHERE prosecutor_id IS NULL)     AS unassigned,
			COUNT(*) FILTER (WHERE prosecutor_id IS NOT NULL) AS assigned,
			COUNT(*) FILTER (WHERE state_id = $1)             AS finalized
		FROM cases
		WHERE deleted_at IS NULL`

	var s domain.CaseSummary
	if err := pgxscan.Get(ctx, q, &s, sql, finalizedStateID); err != nil {
		return domain.CaseSummary{}, fmt.Errorf("count cases: %w", err)
	}

	return s, nil
}

func toDomain(rw *row) *domain.Case {
	return &domain.Case{
		ID:           rw.ID,
		ProsecutorID: rw.ProsecutorID,
		Correlative:  rw.Correlative,
		Name:         rw.Name,
		Observation:  rw.Observation,
		StateID:      rw.StateID,
		TypeID:       rw.TypeID,
		RegisteredAt: rw.RegisteredAt,
		DeletedAt:    rw.DeletedAt,
	}
}
