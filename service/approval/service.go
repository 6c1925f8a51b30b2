package approval

import (
	"context"

	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/service/dao"
	"github.com/viant/skillet/service/messaging"
)

// Store is the pending-approval persistence contract. Take is the at-most-once
// primitive: it atomically removes and returns an entry so that concurrent or
// duplicate resume attempts dispatch the deferred work exactly once.
type Store interface {
	dao.Service[string, PendingApproval]

	Take(ctx context.Context, cardID string) (*PendingApproval, error)
}

// Service defines the approval gate interface.
type Service interface {
	// Defer parks the skill run behind a new approval card and returns the
	// deferred result carrying the card id.
	Defer(ctx context.Context, skill *model.SkillDefinition, execCtx *execution.Context) (*execution.Result, error)

	// ListPending returns all parked entries.
	ListPending(ctx context.Context) ([]*PendingApproval, error)

	// Lookup returns a parked entry without consuming it, or nil.
	Lookup(ctx context.Context, cardID string) (*PendingApproval, error)

	// Take atomically consumes a parked entry; nil means another caller won
	// the race or the entry never existed.
	Take(ctx context.Context, cardID string) (*PendingApproval, error)

	// Remove discards a parked entry without executing it (dismissal path).
	Remove(ctx context.Context, cardID string) error

	Queue() messaging.Queue[Event]
}
