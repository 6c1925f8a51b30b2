package model

import "fmt"

// StepKind is a closed tagged variant; dispatch is an explicit switch, never
// runtime property probing.
type StepKind string

const (
	// StepKindAction delegates to a registered tool service method.
	StepKindAction StepKind = "action"

	// StepKindConditional runs its action only when the When predicate holds;
	// a false predicate records the step as skipped.
	StepKindConditional StepKind = "conditional"

	// StepKindCleanup releases resources acquired by earlier steps. Cleanup
	// steps always run, regardless of preceding failures.
	StepKindCleanup StepKind = "cleanup"
)

type (
	// Action references a tool service method invoked by a step. The engine
	// performs no business logic itself - every action delegates to an
	// external tool (content fetch, LLM call, record-store write).
	Action struct {
		Service string      `json:"service,omitempty" yaml:"service,omitempty"`
		Method  string      `json:"method,omitempty" yaml:"method,omitempty"`
		Input   interface{} `json:"input,omitempty" yaml:"input,omitempty"`
	}

	// ProcessStep is a single entry of a skill's ordered step pipeline.
	ProcessStep struct {
		ID        string   `json:"id" yaml:"id"`
		Kind      StepKind `json:"kind" yaml:"kind"`
		When      string   `json:"when,omitempty" yaml:"when,omitempty"`
		AlwaysRun bool     `json:"alwaysRun,omitempty" yaml:"alwaysRun,omitempty"`
		Action    *Action  `json:"action,omitempty" yaml:"action,omitempty"`
	}
)

// Always reports whether the step belongs to the always-run set - the
// pipeline-level finally that executes even after a preceding failure.
func (s *ProcessStep) Always() bool {
	return s.AlwaysRun || s.Kind == StepKindCleanup
}

// Validate checks structural soundness of a single step.
func (s *ProcessStep) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("step id is empty")
	}
	switch s.Kind {
	case StepKindAction, StepKindCleanup:
	case StepKindConditional:
		if s.When == "" {
			return fmt.Errorf("conditional step %s has no predicate", s.ID)
		}
	default:
		return fmt.Errorf("step %s has unknown kind %q", s.ID, s.Kind)
	}
	if s.Action == nil {
		return fmt.Errorf("step %s has no action", s.ID)
	}
	if s.Action.Service == "" || s.Action.Method == "" {
		return fmt.Errorf("step %s action needs service and method", s.ID)
	}
	return nil
}

// WithAction sets the action for the step.
func (s *ProcessStep) WithAction(service, method string, input interface{}) *ProcessStep {
	s.Action = &Action{Service: service, Method: method, Input: input}
	return s
}

// WithWhen sets the step predicate and marks the step conditional.
func (s *ProcessStep) WithWhen(expr string) *ProcessStep {
	s.When = expr
	s.Kind = StepKindConditional
	return s
}

// WithAlwaysRun marks the step as always-run.
func (s *ProcessStep) WithAlwaysRun(flag bool) *ProcessStep {
	s.AlwaysRun = flag
	return s
}

// Clone creates a deep copy of the step.
func (s *ProcessStep) Clone() *ProcessStep {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Action != nil {
		action := *s.Action
		clone.Action = &action
	}
	return &clone
}
