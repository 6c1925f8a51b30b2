// Package cardstore manages action cards - the user-facing surface through
// which deferred skill runs are approved, reviewed or dismissed.
package cardstore

import "time"

// ActionType classifies what kind of attention a card asks for.
type ActionType string

const (
	ActionTypeTriage   ActionType = "Triage"
	ActionTypeApproval ActionType = "Approval"
	ActionTypeReview   ActionType = "Review"
	ActionTypeAlert    ActionType = "Alert"
	ActionTypeInfo     ActionType = "Info"
)

// ActionStatus is the card lifecycle state driven by the user.
type ActionStatus string

const (
	StatusPending   ActionStatus = "Pending"
	StatusActioned  ActionStatus = "Actioned"
	StatusDismissed ActionStatus = "Dismissed"
	StatusExpired   ActionStatus = "Expired"
	StatusSnoozed   ActionStatus = "Snoozed"
)

// Card is a single actionable item surfaced to the user. ActionData carries
// the type-specific payload (skill name, summary, proposed input).
type Card struct {
	CardID       string                 `json:"cardId"`
	UserID       string                 `json:"userId,omitempty"`
	ActionType   ActionType             `json:"actionType"`
	ActionStatus ActionStatus           `json:"actionStatus"`
	ActionData   map[string]interface{} `json:"actionData,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// IsTerminal reports whether the card can no longer change state.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case StatusActioned, StatusDismissed, StatusExpired:
		return true
	}
	return false
}
