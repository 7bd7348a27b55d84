package casefile

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/ptrack/fiscalia-backend/internal/adapter/postgres"
	"github.com/ptrack/fiscalia-backend/internal/domain"
)

const defaultListLimit = 500

type detailRow struct {
	ID           int64      `db:"id"`
	ProsecutorID *int64     `db:"prosecutor_id"`
	Correlative  string     `db:"correlative"`
	Name         string     `db:"name"`
	Observation  string     `db:"observation"`
	StateID      int64      `db:"state_id"`
	TypeID       *int64     `db:"type_id"`
	RegisteredAt time.Time  `db:"registered_at"`
	DeletedAt    *time.Time `db:"deleted_at"`

	StateName *string `db:"state_name"`
	TypeName  *string `db:"type_name"`

	ProsecutorPersonID *int64  `db:"prosecutor_person_id"`
	ProsecutorOfficeID *int64  `db:"prosecutor_office_id"`
	FirstName          *string `db:"first_name"`
	MiddleName         *string `db:"middle_name"`
	FirstSurname       *string `db:"first_surname"`
	SecondSurname      *string `db:"second_surname"`
	OfficeName         *string `db:"office_name"`
}

func detailQuery() squirrel.SelectBuilder {
	return qb.Select(
		"c.id", "c.prosecutor_id", "c.correlative", "c.name", "c.observation",
		"c.state_id", "c.type_id", "c.registered_at", "c.deleted_at",
		"s.name AS state_name",
		"t.name AS type_name",
		"p.person_id AS prosecutor_person_id",
		"p.office_id AS prosecutor_office_id",
		"per.first_name", "per.middle_name", "per.first_surname", "per.second_surname",
		"o.name AS office_name",
	).
		From("cases c").
		Join("case_states s ON s.id = c.state_id").
		LeftJoin("case_types t ON t.id = c.type_id").
		LeftJoin("prosecutors p ON p.id = c.prosecutor_id").
		LeftJoin("people per ON per.id = p.person_id").
		LeftJoin("offices o ON o.id = p.office_id")
}

// GetDetail returns an active case with its state, type and prosecutor
// resolved for presentation.
func (r *Repo) GetDetail(ctx context.Context, id int64) (*domain.CaseDetail, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := detailQuery().
		Where(squirrel.Eq{"c.id": id, "c.deleted_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw detailRow
	if err := pgxscan.Get(ctx, q, &rw, sql, args...); err != nil {
		return nil, postgres.MapError(err, "case", id)
	}

	return detailToDomain(&rw), nil
}

// List returns active cases matching the filter, newest registrations first.
func (r *Repo) List(ctx context.Context, f Filter) ([]domain.CaseDetail, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := detailQuery().Where(squirrel.Eq{"c.deleted_at": nil})

	if f.From != nil {
		b = b.Where(squirrel.GtOrEq{"c.registered_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(squirrel.LtOrEq{"c.registered_at": *f.To})
	}
	if f.StateID != nil {
		b = b.Where(squirrel.Eq{"c.state_id": *f.StateID})
	}
	if f.ProsecutorID != nil {
		b = b.Where(squirrel.Eq{"c.prosecutor_id": *f.ProsecutorID})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	sql, args, err := b.
		OrderBy("c.registered_at DESC", "c.id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []detailRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select cases: %w", err)
	}

	out := make([]domain.CaseDetail, 0, len(rows))
	for i := range rows {
		out = append(out, *detailToDomain(&rows[i]))
	}

	return out, nil
}

func detailToDomain(rw *detailRow) *domain.CaseDetail {
	d := &domain.CaseDetail{
		Case: domain.Case{
			ID:           rw.ID,
			ProsecutorID: rw.ProsecutorID,
			Correlative:  rw.Correlative,
			Name:         rw.Name,
			Observation:  rw.Observation,
			StateID:      rw.StateID,
			TypeID:       rw.TypeID,
			RegisteredAt: rw.RegisteredAt,
			DeletedAt:    rw.DeletedAt,
		},
	}

	if rw.StateName != nil {
		d.State = &domain.CaseState{ID: rw.StateID, Name: *rw.StateName}
	}
	if rw.TypeID != nil && rw.TypeName != nil {
		d.Type = &domain.CaseType{ID: *rw.TypeID, Name: *rw.TypeName}
	}
	if rw.ProsecutorID != nil {
		p := &domain.Prosecutor{ID: *rw.ProsecutorID, OfficeID: rw.ProsecutorOfficeID}
		if rw.ProsecutorPersonID != nil {
			p.PersonID = *rw.ProsecutorPersonID
			p.Person = &domain.Person{
				ID:            *rw.ProsecutorPersonID,
				FirstName:     deref(rw.FirstName),
				MiddleName:    rw.MiddleName,
				FirstSurname:  deref(rw.FirstSurname),
				SecondSurname: rw.SecondSurname,
			}
		}
		if rw.ProsecutorOfficeID != nil && rw.OfficeName != nil {
			p.Office = &domain.Office{ID: *rw.ProsecutorOfficeID, Name: *rw.OfficeName}
		}
		d.Prosecutor = p
	}

	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
