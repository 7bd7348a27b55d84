package office

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

// Repo provides access to the offices table.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	Address   *string    `db:"address"`
	Phone     *string    `db:"phone"`
	DeletedAt *time.Time `db:"deleted_at"`
}

var columns = []string{"id", "name", "address", "phone", "deleted_at"}

func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Office, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("offices").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "office", id)
	}

	return toDomain(&rw), nil
}

// List returns all active offices ordered by name.
func (r *Repo) List(ctx context.Context) ([]domain.Office, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("offices").
		Where(squirrel.Eq{"deleted_at": nil}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select offices: %w", err)
	}

	out := make([]domain.Office, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomain(&rows[i]))
	}

	return out, nil
}

func toDomain(rw *row) *domain.Office {
	return &domain.Office{
		ID:        rw.ID,
		Name:      rw.Name,
		Address:   rw.Address,
		Phone:     rw.Phone,
		DeletedAt: rw.DeletedAt,
	}
}
