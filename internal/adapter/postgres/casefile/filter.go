package casefile

import (
	"time"
)

// Filter defines parameters for listing cases. Only active (non-soft-deleted)
// cases are ever listed; every field is optional.
type Filter struct {
	// From/To bound registered_at (inclusive).
	From *time.Time
	To   *time.Time

	// StateID restricts to one case state.
	StateID *int64

	// ProsecutorID restricts to cases assigned to one prosecutor.
	ProsecutorID *int64

	// Limit caps the number of rows. 0 means the caller-provided default.
	Limit int
}
