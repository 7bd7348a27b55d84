package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuditEntry is one immutable record of a state-changing action on an entity.
// Entries are append-only: nothing in the application updates or deletes them.
// Before and After hold the serialized payload variant for the entry's action
// kind; either may be nil.
type AuditEntry struct {
	ID        int64
	TableName string
	EntityID  int64
	Action    AuditAction
	Before    json.RawMessage
	After     json.RawMessage
	UserID    *int64
	Comment   string
	CreatedAt time.Time
}

// AssignmentChange is the payload for ASSIGN_PROSECUTOR entries. The before
// payload carries the previous prosecutor reference (nil when the case was
// unassigned), the after payload the new one.
type AssignmentChange struct {
	ProsecutorID *int64 `json:"prosecutor_id"`
}

// StateChange is the payload for CHANGE_STATE entries.
type StateChange struct {
	StateID *int64 `json:"state_id"`
}

// InvalidAssignmentAttempt is the payload for INVALID_ASSIGNMENT entries.
// The before payload describes the current prosecutor and office, the after
// payload the attempted ones.
type InvalidAssignmentAttempt struct {
	ProsecutorID *int64 `json:"prosecutor_id"`
	OfficeID     *int64 `json:"office_id"`
}

// EncodePayload serializes an audit payload variant. A nil value encodes to a
// nil payload (stored as SQL NULL).
func EncodePayload(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit payload: %w", err)
	}
	return data, nil
}

// DecodeAssignmentChange decodes an ASSIGN_PROSECUTOR payload. A nil payload
// decodes to a zero AssignmentChange (no prosecutor).
func DecodeAssignmentChange(raw json.RawMessage) (AssignmentChange, error) {
	var c AssignmentChange
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return AssignmentChange{}, fmt.Errorf("decode assignment change: %w", err)
	}
	return c, nil
}

// DecodeStateChange decodes a CHANGE_STATE payload.
func DecodeStateChange(raw json.RawMessage) (StateChange, error) {
	var c StateChange
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return StateChange{}, fmt.Errorf("decode state change: %w", err)
	}
	return c, nil
}

// DecodeInvalidAssignmentAttempt decodes an INVALID_ASSIGNMENT payload.
func DecodeInvalidAssignmentAttempt(raw json.RawMessage) (InvalidAssignmentAttempt, error) {
	var c InvalidAssignmentAttempt
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return InvalidAssignmentAttempt{}, fmt.Errorf("decode invalid assignment attempt: %w", err)
	}
	return c, nil
}

// TimelineEntry is one narrative line of a case's reconstructed history.
type TimelineEntry struct {
	LogID       int64       `json:"log_id"`
	Action      AuditAction `json:"action"`
	Description string      `json:"description"`
	ActorName   string      `json:"actor_name"`
	Comment     string      `json:"comment,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
