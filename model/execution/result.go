package execution

// StepResult records the outcome of a single pipeline step.
type StepResult struct {
	Success bool        `json:"success"`
	Output  interface{} `json:"output,omitempty"`
	Error   string      `json:"error,omitempty"`

	// Skipped marks a conditional step whose predicate evaluated false; a
	// skipped step counts toward neither success nor failure.
	Skipped bool `json:"skipped,omitempty"`

	ExecutionTimeMs int `json:"executionTimeMs"`
}

// Result is the outcome of one skill run. Success is the logical AND over
// all non-skipped step successes.
type Result struct {
	SkillName string `json:"skillName"`
	Success   bool   `json:"success"`

	// Deferred marks a run that was intercepted by the approval gate: no
	// step has executed and a pending approval entry was created instead.
	Deferred bool   `json:"deferred,omitempty"`
	CardID   string `json:"cardId,omitempty"`

	StepResults map[string]*StepResult `json:"stepResults,omitempty"`

	ExecutionTimeMs int    `json:"executionTimeMs"`
	Error           string `json:"error,omitempty"`
}

// NewDeferredResult returns the "deferred, not yet run" outcome produced by
// the approval gate.
func NewDeferredResult(skillName, cardID string) *Result {
	return &Result{
		SkillName:   skillName,
		Deferred:    true,
		CardID:      cardID,
		StepResults: map[string]*StepResult{},
	}
}

// StepOutputs exposes step outputs keyed by step id, the shape consumed by
// later steps referencing prior outputs.
func (r *Result) StepOutputs() map[string]interface{} {
	outputs := make(map[string]interface{}, len(r.StepResults))
	for id, result := range r.StepResults {
		if result.Skipped {
			continue
		}
		outputs[id] = map[string]interface{}{
			"success": result.Success,
			"output":  result.Output,
		}
	}
	return outputs
}
