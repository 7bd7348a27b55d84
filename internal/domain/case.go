package domain

import (
	"time"
)

// Case is the primary tracked entity: one prosecutorial case file.
// ProsecutorID is nil until a prosecutor is assigned. DeletedAt is the single
// authoritative soft-delete marker; the legacy active flag is derived from it.
type Case struct {
	ID           int64
	ProsecutorID *int64
	Correlative  string
	Name         string
	Observation  string
	StateID      int64
	TypeID       *int64
	RegisteredAt time.Time
	DeletedAt    *time.Time
}

// IsActive reports whether the case has not been soft-deleted.
func (c *Case) IsActive() bool {
	return c.DeletedAt == nil
}

// CaseDetail is a Case with its referenced entities resolved, as returned by
// list/get reads for presentation.
type CaseDetail struct {
	Case
	Prosecutor *Prosecutor
	State      *CaseState
	Type       *CaseType
}

// CaseUpdateParams holds the mutable descriptive fields of a case.
// The prosecutor and state references are changed only through the workflow
// operations, never through a generic update.
type CaseUpdateParams struct {
	Name        *string
	Observation *string
	TypeID      *int64
}

// CaseSummary holds the dashboard counts over active cases. The buckets are
// independent: a finalized case with a prosecutor counts in both Assigned
// and Finalized.
type CaseSummary struct {
	Unassigned int `json:"unassigned"`
	Assigned   int `json:"assigned"`
	Finalized  int `json:"finalized"`
}
