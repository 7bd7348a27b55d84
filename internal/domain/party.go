package domain

import (
	"strings"
	"time"
)

// Prosecutor (fiscal) is a staff member who can be assigned to cases.
// OfficeID is nil for prosecutors not attached to any office.
type Prosecutor struct {
	ID        int64
	PersonID  int64
	OfficeID  *int64
	Person    *Person
	Office    *Office
	DeletedAt *time.Time
}

// IsActive reports whether the prosecutor has not been soft-deleted.
func (p *Prosecutor) IsActive() bool {
	return p.DeletedAt == nil
}

// Office (fiscalía) is the organizational unit a prosecutor belongs to.
type Office struct {
	ID        int64
	Name      string
	Address   *string
	Phone     *string
	DeletedAt *time.Time
}

// Person holds the identity data referenced by prosecutors and users.
type Person struct {
	ID             int64
	FirstName      string
	MiddleName     *string
	FirstSurname   string
	SecondSurname  *string
	DocumentNumber *string
	DeletedAt      *time.Time
}

// ShortName returns "first name + first surname", the display form used in
// case history narratives.
func (p *Person) ShortName() string {
	return strings.TrimSpace(p.FirstName + " " + p.FirstSurname)
}

// FullName returns all name parts joined, skipping the optional ones.
func (p *Person) FullName() string {
	parts := []string{p.FirstName}
	if p.MiddleName != nil && *p.MiddleName != "" {
		parts = append(parts, *p.MiddleName)
	}
	parts = append(parts, p.FirstSurname)
	if p.SecondSurname != nil && *p.SecondSurname != "" {
		parts = append(parts, *p.SecondSurname)
	}
	return strings.Join(parts, " ")
}

// CaseState is a status tag on a case (e.g. PENDIENTE, FINALIZADO).
// The workflow treats state ids as opaque except for the two reserved ones
// carried in configuration.
type CaseState struct {
	ID        int64
	Name      string
	DeletedAt *time.Time
}

// CaseType is an informational classification of a case.
type CaseType struct {
	ID        int64
	Name      string
	DeletedAt *time.Time
}
