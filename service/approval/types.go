package approval

import (
	"time"

	"github.com/viant/skillet/model/execution"
)

// Event is the envelope published on the pending-lifecycle queue.
type Event struct {
	Topic   string
	Data    *PendingApproval
	Headers map[string]string `json:"headers,omitempty"`
}

// Standard event topics.
const (
	TopicPendingCreated = "pending.created"
	TopicPendingTaken   = "pending.taken"
	TopicPendingRemoved = "pending.removed"
)

// PendingApproval is one unit of deferred work parked behind an approval
// card. The stored context is a snapshot taken at deferral time; resumption
// executes against it, not against the live conversation state.
type PendingApproval struct {
	CardID    string             `json:"cardId"`
	SkillName string             `json:"skillName"`
	Context   *execution.Context `json:"context,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
