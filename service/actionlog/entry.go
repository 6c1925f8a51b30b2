// Package actionlog records every notable engine event - matches, runs,
// deferrals and decisions - for feedback and debugging.
package actionlog

import "time"

// Kind classifies a log entry.
type Kind string

const (
	KindMatched  Kind = "matched"
	KindExecuted Kind = "executed"
	KindDeferred Kind = "deferred"
	KindApproved Kind = "approved"
	KindRejected Kind = "rejected"
	KindReview   Kind = "review"
	KindFailed   Kind = "failed"
)

// Entry is a single action-log record.
type Entry struct {
	ID        string                 `json:"id"`
	Kind      Kind                   `json:"kind"`
	SkillName string                 `json:"skillName,omitempty"`
	CardID    string                 `json:"cardId,omitempty"`
	UserID    string                 `json:"userId,omitempty"`
	Pillar    string                 `json:"pillar,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Filter narrows a List call; zero values match everything.
type Filter struct {
	Kind      Kind
	SkillName string
	UserID    string
	Limit     int
}

// Matches reports whether the entry satisfies the filter.
func (f *Filter) Matches(entry *Entry) bool {
	if f == nil {
		return true
	}
	if f.Kind != "" && entry.Kind != f.Kind {
		return false
	}
	if f.SkillName != "" && entry.SkillName != f.SkillName {
		return false
	}
	if f.UserID != "" && entry.UserID != f.UserID {
		return false
	}
	return true
}
