// Package matcher indexes skill definitions by trigger type and scores
// candidate content against them. Matching returns the single best candidate
// at or above a fixed threshold, or nil - never an ambiguous set.
package matcher

import (
	"log"
	"sync"

	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/service/matcher/pattern"
)

// DefaultThreshold is the minimum score a candidate must reach to match.
const DefaultThreshold = 0.5

// Match is the outcome of a successful trigger match.
type Match struct {
	Skill   *model.SkillDefinition
	Trigger *model.Trigger
	Score   float64
}

// candidate is one indexed (skill, trigger) pair.
type candidate struct {
	skill    *model.SkillDefinition
	trigger  *model.Trigger
	pattern  *pattern.Pattern
	regIndex int
}

// Service indexes registered skills and finds the best trigger match.
type Service struct {
	threshold float64
	mux       sync.RWMutex
	skills    map[string]*model.SkillDefinition
	domains   []*candidate
	patterns  []*candidate
	keywords  []*candidate
	nextIndex int
}

// New creates a matcher with the given threshold; zero or negative values
// fall back to DefaultThreshold.
func New(threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{
		threshold: threshold,
		skills:    map[string]*model.SkillDefinition{},
	}
}

// Register indexes the supplied skill definitions. Malformed definitions
// (no triggers, validation issues) and duplicate names are excluded with a
// warning - the first registration of a name wins and registration never
// fails for a single bad entry.
func (s *Service) Register(skills ...*model.SkillDefinition) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, skill := range skills {
		if issues := skill.Validate(); len(issues) > 0 {
			log.Printf("[matcher] skipping skill %q: %v", skill.Name, issues[0])
			continue
		}
		if _, ok := s.skills[skill.Name]; ok {
			log.Printf("[matcher] skipping duplicate skill %q: already registered", skill.Name)
			continue
		}
		s.skills[skill.Name] = skill
		s.index(skill)
	}
}

func (s *Service) index(skill *model.SkillDefinition) {
	for _, trigger := range skill.Triggers {
		entry := &candidate{skill: skill, trigger: trigger, regIndex: s.nextIndex}
		s.nextIndex++
		switch trigger.Type {
		case model.TriggerDomain:
			s.domains = append(s.domains, entry)
		case model.TriggerURLPattern:
			parsed, err := pattern.Parse([]byte(trigger.Value))
			if err != nil {
				log.Printf("[matcher] skill %q has unparseable pattern %q: %v", skill.Name, trigger.Value, err)
				continue
			}
			entry.pattern = parsed
			s.patterns = append(s.patterns, entry)
		case model.TriggerKeyword:
			s.keywords = append(s.keywords, entry)
		}
	}
}

// Lookup returns a registered skill by name or nil.
func (s *Service) Lookup(name string) *model.SkillDefinition {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.skills[name]
}

// Skills returns all registered definitions.
func (s *Service) Skills() []*model.SkillDefinition {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]*model.SkillDefinition, 0, len(s.skills))
	for _, skill := range s.skills {
		ret = append(ret, skill)
	}
	return ret
}

// FindBestMatch scores the content against every registered trigger and
// returns the single best candidate at or above the threshold, or nil when
// nothing clears it. The total order is deterministic: exact domain beats
// URL pattern beats keyword beats pillar-boosted keyword; ties within a
// class resolve to registration order.
func (s *Service) FindBestMatch(content string, execCtx *execution.Context) *Match {
	s.mux.RLock()
	defer s.mux.RUnlock()

	parsed := parseContent(content)
	var best *scored

	for _, entry := range s.domains {
		score := scoreDomain(entry.trigger.Value, parsed)
		best = better(best, entry, score, classDomain, s.threshold)
	}
	for _, entry := range s.patterns {
		score := scorePattern(entry.pattern, parsed)
		best = better(best, entry, score, classPattern, s.threshold)
	}
	for _, entry := range s.keywords {
		base := scoreKeyword(entry.trigger.Value, parsed)
		score, class := applyPillarBoost(base, entry.skill, execCtx, s.threshold)
		best = better(best, entry, score, class, s.threshold)
	}

	if best == nil {
		return nil
	}
	return &Match{Skill: best.entry.skill, Trigger: best.entry.trigger, Score: best.score}
}
