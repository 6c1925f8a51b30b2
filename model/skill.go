package model

import (
	"fmt"
)

// Tier decides whether a skill executes directly or requires an out-of-band
// human confirmation before its side effects run.
type Tier int

const (
	// TierDirect skills execute as soon as they are triggered.
	TierDirect Tier = 1

	// TierConfirm skills are deferred behind an approval card whenever the
	// execution context raises the approval latch.
	TierConfirm Tier = 2
)

// RequiresApproval reports whether the tier gates execution behind approval.
func (t Tier) RequiresApproval() bool {
	return t >= TierConfirm
}

type (
	// SchemaField describes one field of a skill's input schema.
	SchemaField struct {
		Type     string      `json:"type,omitempty" yaml:"type,omitempty"`
		Required bool        `json:"required,omitempty" yaml:"required,omitempty"`
		Default  interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	}

	// Source provides information about the origin of the definition.
	Source struct {
		URL string `json:"url,omitempty" yaml:"url,omitempty"`
	}

	// SkillDefinition is an immutable, declaratively loaded descriptor of a
	// multi-step automated workflow.
	SkillDefinition struct {
		Source *Source `json:"source,omitempty" yaml:"source,omitempty"`

		// Name is the unique identifier of the skill within a registry.
		Name string `json:"name" yaml:"name"`

		Version     string `json:"version,omitempty" yaml:"version,omitempty"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`

		// Tier gates side-effecting skills behind human approval.
		Tier Tier `json:"tier,omitempty" yaml:"tier,omitempty"`

		// Pillar is the top-level life/work category the skill belongs to;
		// a matching context pillar boosts keyword trigger scores.
		Pillar string `json:"pillar,omitempty" yaml:"pillar,omitempty"`

		Triggers []*Trigger `json:"triggers,omitempty" yaml:"triggers,omitempty"`

		InputSchema map[string]*SchemaField `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`

		// Steps is the ordered pipeline executed on behalf of the skill.
		Steps []*ProcessStep `json:"steps,omitempty" yaml:"steps,omitempty"`
	}
)

// NewSkill creates a new skill definition with the given name.
func NewSkill(name string) *SkillDefinition {
	return &SkillDefinition{Name: name, Tier: TierDirect}
}

// WithVersion sets the skill version.
func (s *SkillDefinition) WithVersion(version string) *SkillDefinition {
	s.Version = version
	return s
}

// WithDescription sets the skill description.
func (s *SkillDefinition) WithDescription(description string) *SkillDefinition {
	s.Description = description
	return s
}

// WithTier sets the execution tier.
func (s *SkillDefinition) WithTier(tier Tier) *SkillDefinition {
	s.Tier = tier
	return s
}

// WithPillar sets the pillar affinity.
func (s *SkillDefinition) WithPillar(pillar string) *SkillDefinition {
	s.Pillar = pillar
	return s
}

// WithTrigger appends a trigger.
func (s *SkillDefinition) WithTrigger(triggerType TriggerType, value string) *SkillDefinition {
	s.Triggers = append(s.Triggers, &Trigger{Type: triggerType, Value: value})
	return s
}

// NewStep appends an action step with the given id and returns it so callers
// can chain WithWhen/WithAlwaysRun/WithAction.
func (s *SkillDefinition) NewStep(id string) *ProcessStep {
	step := &ProcessStep{ID: id, Kind: StepKindAction}
	s.Steps = append(s.Steps, step)
	return step
}

// Validate performs a best-effort structural validation. The returned slice
// is empty when the definition is sound; otherwise it contains human-readable
// error descriptions.
func (s *SkillDefinition) Validate() []error {
	var issues []error
	if s.Name == "" {
		issues = append(issues, fmt.Errorf("skill name is empty"))
	}
	if len(s.Triggers) == 0 {
		issues = append(issues, fmt.Errorf("skill %s has no triggers", s.Name))
	}
	for i, trigger := range s.Triggers {
		if !trigger.IsValid() {
			issues = append(issues, fmt.Errorf("skill %s trigger[%d] is invalid", s.Name, i))
		}
	}
	if len(s.Steps) == 0 {
		issues = append(issues, fmt.Errorf("skill %s has no steps", s.Name))
	}
	seen := map[string]bool{}
	for _, step := range s.Steps {
		if err := step.Validate(); err != nil {
			issues = append(issues, err)
			continue
		}
		if seen[step.ID] {
			issues = append(issues, fmt.Errorf("skill %s has duplicate step id %s", s.Name, step.ID))
		}
		seen[step.ID] = true
	}
	return issues
}

// ApplyDefaults fills input-schema defaults into the supplied input bag and
// returns an error naming the first missing required field.
func (s *SkillDefinition) ApplyDefaults(input map[string]interface{}) error {
	for name, field := range s.InputSchema {
		if _, ok := input[name]; ok {
			continue
		}
		if field.Default != nil {
			input[name] = field.Default
			continue
		}
		if field.Required {
			return fmt.Errorf("skill %s requires input %q", s.Name, name)
		}
	}
	return nil
}

// LookupStep returns a step by id or nil.
func (s *SkillDefinition) LookupStep(id string) *ProcessStep {
	for _, step := range s.Steps {
		if step.ID == id {
			return step
		}
	}
	return nil
}

// Clone creates a deep copy of the definition.
func (s *SkillDefinition) Clone() *SkillDefinition {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Source != nil {
		source := *s.Source
		clone.Source = &source
	}
	if s.Triggers != nil {
		clone.Triggers = make([]*Trigger, len(s.Triggers))
		for i, trigger := range s.Triggers {
			value := *trigger
			clone.Triggers[i] = &value
		}
	}
	if s.InputSchema != nil {
		clone.InputSchema = make(map[string]*SchemaField, len(s.InputSchema))
		for k, v := range s.InputSchema {
			field := *v
			clone.InputSchema[k] = &field
		}
	}
	if s.Steps != nil {
		clone.Steps = make([]*ProcessStep, len(s.Steps))
		for i, step := range s.Steps {
			clone.Steps[i] = step.Clone()
		}
	}
	return &clone
}
