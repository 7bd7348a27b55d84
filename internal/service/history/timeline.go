package history

import (
	"context"
	"fmt"
	"iter"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// Fallback labels used when a referenced id is null or no longer resolvable.
const (
	labelNoProsecutor      = "no prosecutor"
	labelUnknownProsecutor = "unknown prosecutor"
	labelNoState           = "no state"
	labelUnknownState      = "unknown state"
	labelNoOffice          = "no office"
	labelUnknownOffice     = "unknown office"
	labelNoActor           = "N/A"
)

// BuildTimeline returns the case's audit entries as a lazy sequence of
// narrative lines, oldest first. The sequence is finite and single-use.
// Name resolution happens per entry as the sequence is consumed; a failed
// lookup degrades to a fallback label instead of aborting the timeline,
// while a storage failure on the log read itself is yielded as an error.
func (s *Service) BuildTimeline(ctx context.Context, caseID int64) (iter.Seq2[domain.TimelineEntry, error], error) {
	if caseID <= 0 {
		return nil, domain.NewValidationError("case_id", "required")
	}

	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return nil, err
	}

	entries, err := s.audit.ListByEntity(ctx, domain.TableCases, caseID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	r := newResolver(s)

	return func(yield func(domain.TimelineEntry, error) bool) {
		for _, entry := range entries {
			line, err := s.narrate(ctx, r, entry)
			if !yield(line, err) {
				return
			}
		}
	}, nil
}

func (s *Service) narrate(ctx context.Context, r *resolver, entry domain.AuditEntry) (domain.TimelineEntry, error) {
	line := domain.TimelineEntry{
		LogID:      entry.ID,
		Action:     entry.Action,
		ActorName:  r.userName(ctx, entry.UserID),
		Comment:    entry.Comment,
		OccurredAt: entry.CreatedAt,
	}

	switch entry.Action {
	case domain.AuditActionAssignProsecutor:
		before, err := domain.DecodeAssignmentChange(entry.Before)
		if err != nil {
			return domain.TimelineEntry{}, err
		}
		after, err := domain.DecodeAssignmentChange(entry.After)
		if err != nil {
			return domain.TimelineEntry{}, err
		}
		line.Description = fmt.Sprintf("prosecutor changed from %s to %s",
			r.prosecutorName(ctx, before.ProsecutorID),
			r.prosecutorName(ctx, after.ProsecutorID),
		)

	case domain.AuditActionChangeState:
		before, err := domain.DecodeStateChange(entry.Before)
		if err != nil {
			return domain.TimelineEntry{}, err
		}
		after, err := domain.DecodeStateChange(entry.After)
		if err != nil {
			return domain.TimelineEntry{}, err
		}
		line.Description = fmt.Sprintf("state changed from %s to %s",
			r.stateName(ctx, before.StateID),
			r.stateName(ctx, after.StateID),
		)

	case domain.AuditActionInvalidAssignment:
		attempt, err := domain.DecodeInvalidAssignmentAttempt(entry.After)
		if err != nil {
			return domain.TimelineEntry{}, err
		}
		line.Description = fmt.Sprintf("invalid assignment attempt to prosecutor %s (office %s)",
			r.prosecutorName(ctx, attempt.ProsecutorID),
			r.officeName(ctx, attempt.OfficeID),
		)

	default:
		line.Description = entry.Action.String()
	}

	return line, nil
}

// resolver memoizes name lookups for the duration of one timeline build so
// repeated references resolve with one query each.
type resolver struct {
	s           *Service
	prosecutors map[int64]string
	states      map[int64]string
	offices     map[int64]string
	users       map[int64]string
}

func newResolver(s *Service) *resolver {
	return &resolver{
		s:           s,
		prosecutors: make(map[int64]string),
		states:      make(map[int64]string),
		offices:     make(map[int64]string),
		users:       make(map[int64]string),
	}
}

func (r *resolver) prosecutorName(ctx context.Context, id *int64) string {
	if id == nil {
		return labelNoProsecutor
	}
	if name, ok := r.prosecutors[*id]; ok {
		return name
	}

	name := labelUnknownProsecutor
	if p, err := r.s.prosecutors.GetByID(ctx, *id); err == nil && p.Person != nil {
		name = p.Person.ShortName()
	}
	r.prosecutors[*id] = name
	return name
}

func (r *resolver) stateName(ctx context.Context, id *int64) string {
	if id == nil {
		return labelNoState
	}
	if name, ok := r.states[*id]; ok {
		return name
	}

	name := labelUnknownState
	if st, err := r.s.catalog.GetState(ctx, *id); err == nil {
		name = st.Name
	}
	r.states[*id] = name
	return name
}

func (r *resolver) officeName(ctx context.Context, id *int64) string {
	if id == nil {
		return labelNoOffice
	}
	if name, ok := r.offices[*id]; ok {
		return name
	}

	name := labelUnknownOffice
	if o, err := r.s.offices.GetByID(ctx, *id); err == nil {
		name = o.Name
	}
	r.offices[*id] = name
	return name
}

func (r *resolver) userName(ctx context.Context, id *int64) string {
	if id == nil {
		return labelNoActor
	}
	if name, ok := r.users[*id]; ok {
		return name
	}

	name := labelNoActor
	if u, err := r.s.users.GetByID(ctx, *id); err == nil {
		name = u.Username
	}
	r.users[*id] = name
	return name
}
