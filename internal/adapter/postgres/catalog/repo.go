package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo reads the two reference catalogs: case states and case types.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (r *Repo) GetState(ctx context.Context, id int64) (*domain.CaseState, error) {
	rw, err := r.get(ctx, "case_states", "state", id)
	if err != nil {
		return nil, err
	}
	return &domain.CaseState{ID: rw.ID, Name: rw.Name, DeletedAt: rw.DeletedAt}, nil
}

func (r *Repo) GetType(ctx context.Context, id int64) (*domain.CaseType, error) {
	rw, err := r.get(ctx, "case_types", "case type", id)
	if err != nil {
		return nil, err
	}
	return &domain.CaseType{ID: rw.ID, Name: rw.Name, DeletedAt: rw.DeletedAt}, nil
}

func (r *Repo) ListStates(ctx context.Context) ([]domain.CaseState, error) {
	rows, err := r.list(ctx, "case_states")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CaseState, 0, len(rows))
	for _, rw := range rows {
		out = append(out, domain.CaseState{ID: rw.ID, Name: rw.Name, DeletedAt: rw.DeletedAt})
	}
	return out, nil
}

func (r *Repo) ListTypes(ctx context.Context) ([]domain.CaseType, error) {
	rows, err := r.list(ctx, "case_types")
	if err != nil {
		return nil, err
	}
	out := make([]domain.CaseType, 0, len(rows))
	for _, rw := range rows {
		out = append(out, domain.CaseType{ID: rw.ID, Name: rw.Name, DeletedAt: rw.DeletedAt})
	}
	return out, nil
}

func (r *Repo) get(ctx context.Context, table, entity string, id int64) (*row, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select("id", "name", "deleted_at").
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, entity, id)
	}

	return &rw, nil
}

func (r *Repo) list(ctx context.Context, table string) ([]row, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select("id", "name", "deleted_at").
		From(table).
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	return rows, nil
}
