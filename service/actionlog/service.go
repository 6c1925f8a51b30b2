package actionlog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/skillet/internal/clock"
)

// Service is the action-log contract. Append assigns the entry id and
// timestamp; List returns entries oldest first.
type Service interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter *Filter) ([]*Entry, error)
}

// memoryService keeps entries in insertion order.
type memoryService struct {
	mux     sync.RWMutex
	entries []*Entry
}

// New creates an in-memory action log.
func New() Service {
	return &memoryService{}
}

func (s *memoryService) Append(_ context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = clock.Now()
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryService) List(_ context.Context, filter *Filter) ([]*Entry, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	matched := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if !filter.Matches(entry) {
			continue
		}
		matched = append(matched, entry)
		if filter != nil && filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}
