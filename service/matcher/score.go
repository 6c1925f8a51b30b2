package matcher

import (
	"net/url"
	"strings"

	"github.com/viant/skillet/model"
	"github.com/viant/skillet/model/execution"
	"github.com/viant/skillet/service/matcher/pattern"
)

// Candidate classes in descending rank; the class dominates the numeric
// score so the total order stays deterministic regardless of input order.
const (
	classBoostedKeyword = iota
	classKeyword
	classPattern
	classDomain
)

// pillarBoost raises keyword scores when the routing pillar agrees with the
// skill's pillar; it can promote a below-threshold score over the line but
// such a match ranks below every plain keyword match.
const pillarBoost = 0.15

type scored struct {
	entry *candidate
	score float64
	class int
}

// better keeps the dominant candidate: higher class first, then higher
// score, then earlier registration.
func better(current *scored, entry *candidate, score float64, class int, threshold float64) *scored {
	if score < threshold {
		return current
	}
	challenger := &scored{entry: entry, score: score, class: class}
	if current == nil {
		return challenger
	}
	if challenger.class != current.class {
		if challenger.class > current.class {
			return challenger
		}
		return current
	}
	if challenger.score > current.score {
		return challenger
	}
	if challenger.score == current.score && challenger.entry.regIndex < current.entry.regIndex {
		return challenger
	}
	return current
}

// content holds the pre-parsed views of the captured content.
type content struct {
	raw    string
	host   string
	path   string
	tokens map[string]bool
}

func parseContent(raw string) *content {
	ret := &content{raw: raw, tokens: tokenize(raw)}
	trimmed := strings.TrimSpace(raw)
	if strings.Contains(trimmed, "://") {
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			ret.host = strings.ToLower(parsed.Host)
			ret.path = parsed.Path
			return ret
		}
	}
	// bare domain-looking content ("example.com") matches domain triggers too
	if !strings.ContainsAny(trimmed, " \t\n") && strings.Contains(trimmed, ".") {
		ret.host = strings.ToLower(trimmed)
	}
	return ret
}

func scoreDomain(value string, parsed *content) float64 {
	if parsed.host == "" {
		return 0
	}
	domain := strings.ToLower(value)
	host := strings.TrimPrefix(parsed.host, "www.")
	if host == domain || parsed.host == domain {
		return 1.0
	}
	return 0
}

func scorePattern(parsed *pattern.Pattern, candidate *content) float64 {
	if parsed == nil {
		return 0
	}
	target := candidate.path
	if !strings.HasPrefix(parsed.String(), "/") {
		target = candidate.raw
	}
	if target == "" || !parsed.Match(target) {
		return 0
	}
	// literal weight decides specificity within the pattern class
	bonus := float64(parsed.Specificity()) * 0.01
	if bonus > 0.29 {
		bonus = 0.29
	}
	return 0.7 + bonus
}

// scoreKeyword returns the token-overlap ratio: the share of trigger tokens
// present in the content.
func scoreKeyword(value string, parsed *content) float64 {
	wanted := tokenize(value)
	if len(wanted) == 0 {
		return 0
	}
	overlap := 0
	for token := range wanted {
		if parsed.tokens[token] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(wanted))
}

// applyPillarBoost raises (never creates) a keyword score when the context
// pillar agrees with the skill's pillar. A match that needed the boost to
// clear the threshold is demoted to the boosted-keyword class.
func applyPillarBoost(base float64, skill *model.SkillDefinition, execCtx *execution.Context, threshold float64) (float64, int) {
	if base <= 0 {
		return base, classKeyword
	}
	if execCtx == nil || execCtx.Pillar == "" || execCtx.Pillar != skill.Pillar {
		return base, classKeyword
	}
	boosted := base + pillarBoost
	if boosted > 1.0 {
		boosted = 1.0
	}
	if base < threshold && boosted >= threshold {
		return boosted, classBoostedKeyword
	}
	return boosted, classKeyword
}

func tokenize(text string) map[string]bool {
	tokens := map[string]bool{}
	current := strings.Builder{}
	flush := func() {
		if current.Len() > 0 {
			tokens[current.String()] = true
			current.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
