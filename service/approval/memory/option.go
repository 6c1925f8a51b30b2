package memory

import (
	"github.com/viant/skillet/service/approval"
	"github.com/viant/skillet/service/messaging"
)

// Option customizes the in-memory approval gate.
type Option func(*service)

// WithStore overrides the pending-approval store.
func WithStore(store approval.Store) Option {
	return func(s *service) {
		s.pending = store
	}
}

// WithQueue overrides the lifecycle event queue.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) {
		s.events = queue
	}
}
