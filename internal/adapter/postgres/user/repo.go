package user

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

// Repo provides access to the users table.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	PersonID     *int64     `db:"person_id"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

var columns = []string{"id", "username", "password_hash", "role", "person_id", "deleted_at"}

func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	return toDomain(&rw), nil
}

// GetByUsername returns the active user with the given login name.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("users").
		Where(squirrel.Eq{"username": username, "deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", 0)
	}

	return toDomain(&rw), nil
}

func (r *Repo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Insert("users").
		Columns("username", "password_hash", "role", "person_id").
		Values(u.Username, u.PasswordHash, u.Role, u.PersonID).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "user", 0)
	}

	return toDomain(&rw), nil
}

// ListNames returns a map of user id to username for the given ids. Missing
// ids are simply absent from the result.
func (r *Repo) ListNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select("id", "username").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []struct {
		ID       int64  `db:"id"`
		Username string `db:"username"`
	}
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	out := make(map[int64]string, len(rows))
	for _, rw := range rows {
		out[rw.ID] = rw.Username
	}

	return out, nil
}

func toDomain(rw *row) *domain.User {
	return &domain.User{
		ID:           rw.ID,
		Username:     rw.Username,
		PasswordHash: rw.PasswordHash,
		Role:         rw.Role,
		PersonID:     rw.PersonID,
		DeletedAt:    rw.DeletedAt,
	}
}
