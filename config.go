package skillet

import (
	"fmt"
	"time"

	"github.com/viant/skillet/service/listener"
	"github.com/viant/skillet/service/matcher"
)

// Config holds the tunables of the skill engine.
type Config struct {
	// MatchThreshold is the minimum trigger score for a match.
	MatchThreshold float64 `json:"matchThreshold,omitempty" yaml:"matchThreshold,omitempty"`

	// ApprovalInterval is the approval listener poll cadence.
	ApprovalInterval time.Duration `json:"approvalInterval,omitempty" yaml:"approvalInterval,omitempty"`

	// ReviewInterval is the review listener poll cadence.
	ReviewInterval time.Duration `json:"reviewInterval,omitempty" yaml:"reviewInterval,omitempty"`

	// DisableApprovalListener keeps Runtime.Start from launching the approval
	// poll loop; StartApprovalListener still starts it explicitly.
	DisableApprovalListener bool `json:"disableApprovalListener,omitempty" yaml:"disableApprovalListener,omitempty"`

	// DisableReviewListener keeps Runtime.Start from launching the review
	// poll loop; StartReviewListener still starts it explicitly.
	DisableReviewListener bool `json:"disableReviewListener,omitempty" yaml:"disableReviewListener,omitempty"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MatchThreshold:   matcher.DefaultThreshold,
		ApprovalInterval: listener.DefaultApprovalInterval,
		ReviewInterval:   listener.DefaultReviewInterval,
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("matchThreshold %v is out of range [0, 1]", c.MatchThreshold)
	}
	if c.ApprovalInterval < 0 {
		return fmt.Errorf("approvalInterval must not be negative")
	}
	if c.ReviewInterval < 0 {
		return fmt.Errorf("reviewInterval must not be negative")
	}
	return nil
}
