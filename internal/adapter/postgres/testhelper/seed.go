package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedState creates a case state with the given name and returns it.
func SeedState(t *testing.T, pool *pgxpool.Pool, name string) domain.CaseState {
	t.Helper()
	ctx := context.Background()

	var s domain.CaseState
	s.Name = name
	err := pool.QueryRow(ctx,
		`INSERT INTO case_states (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&s.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedState insert: %v", err)
	}

	return s
}

// SeedType creates a case type with the given name and returns it.
func SeedType(t *testing.T, pool *pgxpool.Pool, name string) domain.CaseType {
	t.Helper()
	ctx := context.Background()

	var ct domain.CaseType
	ct.Name = name
	err := pool.QueryRow(ctx,
		`INSERT INTO case_types (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&ct.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedType insert: %v", err)
	}

	return ct
}

// SeedOffice creates an office with a unique name and returns it.
func SeedOffice(t *testing.T, pool *pgxpool.Pool) domain.Office {
	t.Helper()
	ctx := context.Background()

	var o domain.Office
	o.Name = "Fiscalia " + uniqueSuffix()
	err := pool.QueryRow(ctx,
		`INSERT INTO offices (name) VALUES ($1) RETURNING id`,
		o.Name,
	).Scan(&o.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedOffice insert: %v", err)
	}

	return o
}

// SeedPerson creates a person with the given names and returns it.
func SeedPerson(t *testing.T, pool *pgxpool.Pool, firstName, firstSurname string) domain.Person {
	t.Helper()
	ctx := context.Background()

	p := domain.Person{FirstName: firstName, FirstSurname: firstSurname}
	err := pool.QueryRow(ctx,
		`INSERT INTO people (first_name, first_surname) VALUES ($1, $2) RETURNING id`,
		firstName, firstSurname,
	).Scan(&p.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedPerson insert: %v", err)
	}

	return p
}

// SeedProsecutor creates a person and a prosecutor attached to the given
// office (nil officeID leaves the prosecutor unattached).
func SeedProsecutor(t *testing.T, pool *pgxpool.Pool, officeID *int64) domain.Prosecutor {
	t.Helper()
	ctx := context.Background()

	person := SeedPerson(t, pool, "Fiscal", "Prueba-"+uniqueSuffix())

	p := domain.Prosecutor{PersonID: person.ID, OfficeID: officeID, Person: &person}
	err := pool.QueryRow(ctx,
		`INSERT INTO prosecutors (person_id, office_id) VALUES ($1, $2) RETURNING id`,
		person.ID, officeID,
	).Scan(&p.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedProsecutor insert: %v", err)
	}

	return p
}

// SeedUser creates a user with the given role and a bcrypt-free placeholder
// hash. Password-sensitive tests insert their own hash instead.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role string) domain.User {
	t.Helper()
	ctx := context.Background()

	u := domain.User{
		Username:     "user-" + uniqueSuffix(),
		PasswordHash: "x",
		Role:         role,
	}
	err := pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		u.Username, u.PasswordHash, u.Role,
	).Scan(&u.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}

	return u
}

// SeedCase creates a case in the given state, optionally assigned to a
// prosecutor, and returns it.
func SeedCase(t *testing.T, pool *pgxpool.Pool, stateID int64, prosecutorID *int64) domain.Case {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.Case{
		ProsecutorID: prosecutorID,
		Correlative:  "EXP-" + uniqueSuffix(),
		Name:         "Caso " + uniqueSuffix(),
		StateID:      stateID,
		RegisteredAt: now,
	}
	err := pool.QueryRow(ctx,
		`INSERT INTO cases (prosecutor_id, correlative, name, state_id, registered_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.ProsecutorID, c.Correlative, c.Name, c.StateID, c.RegisteredAt,
	).Scan(&c.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedCase insert: %v", err)
	}

	return c
}
