// Package audit implements the audit log repository using PostgreSQL.
// The log is append-only: this package exposes no update or delete operation,
// and nothing else in the application touches the audit_logs table.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// row mirrors one audit_logs record.
type row struct {
	ID        int64     `db:"id"`
	TableName string    `db:"table_name"`
	EntityID  int64     `db:"entity_id"`
	Action    string    `db:"action"`
	Before    []byte    `db:"before_data"`
	After     []byte    `db:"after_data"`
	UserID    *int64    `db:"user_id"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

var columns = []string{
	"id", "table_name", "entity_id", "action",
	"before_data", "after_data", "user_id", "comment", "created_at",
}

// Append inserts a new audit entry and returns the persisted record.
// CreatedAt defaults to now when unset.
func (r *Repo) Append(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	sql, args, err := qb.Insert("audit_logs").
		Columns("table_name", "entity_id", "action",
			"before_data", "after_data", "user_id", "comment", "created_at").
		Values(entry.TableName, entry.EntityID, entry.Action.String(),
			[]byte(entry.Before), []byte(entry.After), entry.UserID, entry.Comment, entry.CreatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("build audit insert: %w", err)
	}

	var rec row
	if err := pgxscan.Get(ctx, q, &rec, sql, args...); err != nil {
		return domain.AuditEntry{}, postgres.MapError(err, "audit_log", entry.EntityID)
	}

	return toDomain(rec), nil
}

// Log appends an audit entry without returning it (fire-and-forget).
// Satisfies the auditLogger interface of the workflow and registry services.
func (r *Repo) Log(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.Append(ctx, entry)
	return err
}

// ListByEntity returns every audit entry for a table/id pair ordered by
// creation time ascending (ties broken by id), the order history
// reconstruction consumes.
func (r *Repo) ListByEntity(ctx context.Context, tableName string, entityID int64) ([]domain.AuditEntry, error) {
	return r.listByEntity(ctx, tableName, entityID, "created_at ASC, id ASC")
}

// ListByEntityNewestFirst returns the same set ordered newest first, as the
// raw log search endpoint presents it.
func (r *Repo) ListByEntityNewestFirst(ctx context.Context, tableName string, entityID int64) ([]domain.AuditEntry, error) {
	return r.listByEntity(ctx, tableName, entityID, "created_at DESC, id DESC")
}

func (r *Repo) listByEntity(ctx context.Context, tableName string, entityID int64, order string) ([]domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := qb.Select(columns...).
		From("audit_logs").
		Where(squirrel.Eq{"table_name": tableName, "entity_id": entityID}).
		OrderBy(order).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit_log", entityID)
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, rec := range rows {
		entries[i] = toDomain(rec)
	}
	return entries, nil
}

func toDomain(rec row) domain.AuditEntry {
	return domain.AuditEntry{
		ID:        rec.ID,
		TableName: rec.TableName,
		EntityID:  rec.EntityID,
		Action:    domain.AuditAction(rec.Action),
		Before:    rec.Before,
		After:     rec.After,
		UserID:    rec.UserID,
		Comment:   rec.Comment,
		CreatedAt: rec.CreatedAt,
	}
}

