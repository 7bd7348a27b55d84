package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// queryID reads an optional positive integer query parameter.
func queryID(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a positive integer")
	}
	return &id, nil
}

// queryDate reads an optional date query parameter. Both full RFC 3339
// timestamps and bare YYYY-MM-DD dates are accepted.
func queryDate(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an RFC 3339 timestamp or YYYY-MM-DD date")
	}
	return &t, nil
}
