package model

// TriggerType discriminates how a trigger value is matched against content.
type TriggerType string

const (
	// TriggerDomain matches the host of a captured URL exactly.
	TriggerDomain TriggerType = "domain"

	// TriggerURLPattern matches a URL path pattern; literal segments beat
	// wildcards when competing candidates score against the same content.
	TriggerURLPattern TriggerType = "urlPattern"

	// TriggerKeyword matches free text by token overlap.
	TriggerKeyword TriggerType = "keyword"
)

// Trigger binds a skill to a class of captured content.
type Trigger struct {
	Type  TriggerType `json:"type" yaml:"type"`
	Value string      `json:"value" yaml:"value"`
}

// IsValid reports whether the trigger carries a known type and a value.
func (t *Trigger) IsValid() bool {
	if t == nil || t.Value == "" {
		return false
	}
	switch t.Type {
	case TriggerDomain, TriggerURLPattern, TriggerKeyword:
		return true
	}
	return false
}
