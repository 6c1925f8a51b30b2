// Package skill loads declarative skill definitions from YAML documents and
// caches the parsed, validated result per location. Reload is explicit
// (Refresh/Upsert) - definitions are never mutated in place.
package skill

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/skillet/internal/yml"
	"github.com/viant/skillet/model"
	"github.com/viant/skillet/service/meta"
	"gopkg.in/yaml.v3"
)

type Service struct {
	metaService *meta.Service
	mux         sync.RWMutex
	cache       map[string]*model.SkillDefinition
}

// Load loads a skill definition from YAML at the specified URL; the parsed
// definition is cached until Refresh is called for the location.
func (s *Service) Load(ctx context.Context, URL string) (*model.SkillDefinition, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	s.mux.RLock()
	cached, ok := s.cache[URL]
	s.mux.RUnlock()
	if ok {
		return cached, nil
	}

	var node yaml.Node
	if err := s.metaService.Load(ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load skill from %s: %w", URL, err)
	}
	definition, err := s.ParseSkill(URL, &node)
	if err != nil {
		return nil, err
	}
	s.mux.Lock()
	s.cache[URL] = definition
	s.mux.Unlock()
	return definition, nil
}

// DecodeYAML decodes a skill definition from raw YAML bytes.
func (s *Service) DecodeYAML(encoded []byte) (*model.SkillDefinition, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.ParseSkill("", &node)
}

// Refresh discards the cached copy for the given location; the next Load
// re-fetches and re-parses the document.
func (s *Service) Refresh(location string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	delete(s.cache, location)
}

// Upsert stores a pre-parsed definition under the given location.
func (s *Service) Upsert(location string, definition *model.SkillDefinition) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.cache[location] = definition
}

// ParseSkill converts a YAML node into a validated skill definition.
func (s *Service) ParseSkill(URL string, node *yaml.Node) (*model.SkillDefinition, error) {
	definition := &model.SkillDefinition{
		Tier: model.TierDirect,
		Name: skillNameFromURL(URL),
	}
	if URL != "" {
		definition.Source = &model.Source{URL: URL}
	}
	root := yml.Root(node)
	if err := root.Pairs(func(key string, value *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			definition.Name = value.Value
		case "version":
			definition.Version = value.Value
		case "description":
			definition.Description = value.Value
		case "pillar":
			definition.Pillar = value.Value
		case "tier":
			tier, ok := value.Interface().(int)
			if !ok {
				return fmt.Errorf("tier should be an integer")
			}
			definition.Tier = model.Tier(tier)
		case "triggers":
			return value.Items(func(_ int, item *yml.Node) error {
				return parseTrigger(item, definition)
			})
		case "inputschema":
			return parseInputSchema(value, definition)
		case "process", "steps":
			return value.Pairs(func(id string, stepNode *yml.Node) error {
				step, err := parseStep(id, stepNode)
				if err != nil {
					return err
				}
				definition.Steps = append(definition.Steps, step)
				return nil
			})
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to parse skill from %s: %w", URL, err)
	}

	if issues := definition.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return definition, nil
}

func parseTrigger(node *yml.Node, definition *model.SkillDefinition) error {
	return node.Pairs(func(key string, value *yml.Node) error {
		trigger := &model.Trigger{Value: value.Value}
		switch strings.ToLower(key) {
		case "domain":
			trigger.Type = model.TriggerDomain
		case "urlpattern":
			trigger.Type = model.TriggerURLPattern
		case "keyword":
			trigger.Type = model.TriggerKeyword
		default:
			return fmt.Errorf("unknown trigger type %q", key)
		}
		definition.Triggers = append(definition.Triggers, trigger)
		return nil
	})
}

func parseInputSchema(node *yml.Node, definition *model.SkillDefinition) error {
	definition.InputSchema = map[string]*model.SchemaField{}
	return node.Pairs(func(name string, fieldNode *yml.Node) error {
		field := &model.SchemaField{}
		if err := fieldNode.Pairs(func(key string, value *yml.Node) error {
			switch strings.ToLower(key) {
			case "type":
				field.Type = value.Value
			case "required":
				flag, ok := value.Interface().(bool)
				if !ok {
					return fmt.Errorf("required should be a boolean")
				}
				field.Required = flag
			case "default":
				field.Default = value.Interface()
			}
			return nil
		}); err != nil {
			return err
		}
		definition.InputSchema[name] = field
		return nil
	})
}

func parseStep(id string, node *yml.Node) (*model.ProcessStep, error) {
	step := &model.ProcessStep{ID: id, Kind: model.StepKindAction}
	err := node.Pairs(func(key string, value *yml.Node) error {
		switch strings.ToLower(key) {
		case "kind":
			step.Kind = model.StepKind(value.Value)
		case "when":
			step.When = value.Value
			if step.Kind == model.StepKindAction {
				step.Kind = model.StepKindConditional
			}
		case "alwaysrun":
			flag, ok := value.Interface().(bool)
			if !ok {
				return fmt.Errorf("alwaysRun should be a boolean")
			}
			step.AlwaysRun = flag
		case "action":
			if value.Kind == yaml.ScalarNode {
				parts := strings.SplitN(value.Value, ":", 2)
				action := &model.Action{Service: parts[0]}
				if len(parts) > 1 {
					action.Method = parts[1]
				}
				if step.Action != nil {
					action.Input = step.Action.Input
				}
				step.Action = action
				return nil
			}
			action := &model.Action{}
			if step.Action != nil {
				action.Input = step.Action.Input
			}
			if err := value.Pairs(func(actionKey string, actionValue *yml.Node) error {
				switch strings.ToLower(actionKey) {
				case "service":
					action.Service = actionValue.Value
				case "method":
					action.Method = actionValue.Value
				case "input":
					action.Input = actionValue.Interface()
				}
				return nil
			}); err != nil {
				return err
			}
			step.Action = action
		case "input":
			if step.Action == nil {
				step.Action = &model.Action{}
			}
			step.Action.Input = value.Interface()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse step %s: %w", id, err)
	}
	return step, nil
}

func skillNameFromURL(URL string) string {
	if URL == "" {
		return ""
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// New creates a new skill definition service.
func New(opts ...Option) *Service {
	ret := &Service{
		metaService: meta.New(afs.New(), ""),
		cache:       map[string]*model.SkillDefinition{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
