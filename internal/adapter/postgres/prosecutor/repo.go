package prosecutor

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

// Repo provides access to the prosecutors table with person and office joins.
type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

type row struct {
	ID        int64      `db:"id"`
	PersonID  int64      `db:"person_id"`
	OfficeID  *int64     `db:"office_id"`
	DeletedAt *time.Time `db:"deleted_at"`

	FirstName     *string `db:"first_name"`
	MiddleName    *string `db:"middle_name"`
	FirstSurname  *string `db:"first_surname"`
	SecondSurname *string `db:"second_surname"`
	OfficeName    *string `db:"office_name"`
}

func baseQuery() squirrel.SelectBuilder {
	return qb.Select(
		"p.id", "p.person_id", "p.office_id", "p.deleted_at",
		"per.first_name", "per.middle_name", "per.first_surname", "per.second_surname",
		"o.name AS office_name",
	).
		From("prosecutors p").
		Join("people per ON per.id = p.person_id").
		LeftJoin("offices o ON o.id = p.office_id")
}

// GetByID returns the prosecutor with the given id, soft-deleted or not.
// The workflow checks IsActive itself so it can reject with a precise error.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Prosecutor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := baseQuery().
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "prosecutor", id)
	}

	return toDomain(&rw), nil
}

// GetByPersonID returns the active prosecutor linked to the given person.
// Used to resolve which prosecutor a logged-in user acts as.
func (r *Repo) GetByPersonID(ctx context.Context, personID int64) (*domain.Prosecutor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := baseQuery().
		Where(squirrel.Eq{"p.person_id": personID, "p.deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "prosecutor", personID)
	}

	return toDomain(&rw), nil
}

// List returns all active prosecutors ordered by surname.
func (r *Repo) List(ctx context.Context) ([]domain.Prosecutor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := baseQuery().
		Where(squirrel.Eq{"p.deleted_at": nil}).
		OrderBy("per.first_surname", "per.first_name", "p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select prosecutors: %w", err)
	}

	out := make([]domain.Prosecutor, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomain(&rows[i]))
	}

	return out, nil
}

func toDomain(rw *row) *domain.Prosecutor {
	p := &domain.Prosecutor{
		ID:        rw.ID,
		PersonID:  rw.PersonID,
		OfficeID:  rw.OfficeID,
		DeletedAt: rw.DeletedAt,
	}

	if rw.FirstName != nil || rw.FirstSurname != nil {
		p.Person = &domain.Person{
			ID:            rw.PersonID,
			FirstName:     deref(rw.FirstName),
			MiddleName:    rw.MiddleName,
			FirstSurname:  deref(rw.FirstSurname),
			SecondSurname: rw.SecondSurname,
		}
	}
	if rw.OfficeID != nil && rw.OfficeName != nil {
		p.Office = &domain.Office{ID: *rw.OfficeID, Name: *rw.OfficeName}
	}

	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
