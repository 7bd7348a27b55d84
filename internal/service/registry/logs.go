package registry

import (
	"context"
	"fmt"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// LogRecord is a raw audit entry with the acting user's name resolved for
// display.
type LogRecord struct {
	Entry    domain.AuditEntry `json:"entry"`
	Username string            `json:"username"`
}

// SearchLogs returns the audit entries for one entity newest first, with
// usernames resolved in bulk. Unresolvable user ids yield an empty name.
func (s *Service) SearchLogs(ctx context.Context, tableName string, entityID int64) ([]LogRecord, error) {
	if tableName == "" {
		return nil, domain.NewValidationError("table", "required")
	}
	if entityID <= 0 {
		return nil, domain.NewValidationError("id", "required")
	}

	entries, err := s.audit.ListByEntityNewestFirst(ctx, tableName, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	ids := make([]int64, 0, len(entries))
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.UserID == nil {
			continue
		}
		if _, ok := seen[*e.UserID]; ok {
			continue
		}
		seen[*e.UserID] = struct{}{}
		ids = append(ids, *e.UserID)
	}

	names, err := s.users.ListNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve usernames: %w", err)
	}

	out := make([]LogRecord, 0, len(entries))
	for _, e := range entries {
		rec := LogRecord{Entry: e}
		if e.UserID != nil {
			rec.Username = names[*e.UserID]
		}
		out = append(out, rec)
	}

	return out, nil
}
