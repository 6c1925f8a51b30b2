// Package pattern parses URL patterns into literal and wildcard tokens. The
// literal weight of a pattern drives trigger specificity scoring: a longer,
// more literal pattern always outranks a wildcard-heavy one.
package pattern

import (
	"strings"

	"github.com/viant/parsly"
)

type (
	// Token is a single pattern fragment.
	Token struct {
		Literal  string
		Wildcard bool
	}

	// Pattern is a parsed URL pattern.
	Pattern struct {
		raw    string
		tokens []Token
	}
)

// Parse tokenizes a pattern such as "/articles/*/read".
func Parse(input []byte) (*Pattern, error) {
	cursor := parsly.NewCursor("", input, 0)
	ret := &Pattern{raw: string(input)}
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAny(wildcardToken, literalToken)
		switch matched.Code {
		case wildcardToken.Code:
			// collapse adjacent wildcards
			if n := len(ret.tokens); n > 0 && ret.tokens[n-1].Wildcard {
				continue
			}
			ret.tokens = append(ret.tokens, Token{Wildcard: true})
		case literalToken.Code:
			ret.tokens = append(ret.tokens, Token{Literal: strings.ToLower(matched.Text(cursor))})
		default:
			return nil, cursor.NewError(literalToken)
		}
	}
	return ret, nil
}

// Specificity returns the number of literal bytes in the pattern.
func (p *Pattern) Specificity() int {
	specificity := 0
	for _, token := range p.tokens {
		specificity += len(token.Literal)
	}
	return specificity
}

// IsExact reports whether the pattern contains no wildcard.
func (p *Pattern) IsExact() bool {
	for _, token := range p.tokens {
		if token.Wildcard {
			return false
		}
	}
	return true
}

// String returns the raw pattern.
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether value matches the pattern; comparison is
// case-insensitive and a wildcard spans any number of characters.
func (p *Pattern) Match(value string) bool {
	return matchTokens(p.tokens, strings.ToLower(value))
}

func matchTokens(tokens []Token, value string) bool {
	if len(tokens) == 0 {
		return value == ""
	}
	head := tokens[0]
	if !head.Wildcard {
		if !strings.HasPrefix(value, head.Literal) {
			return false
		}
		return matchTokens(tokens[1:], value[len(head.Literal):])
	}
	if len(tokens) == 1 {
		return true
	}
	// try every continuation point for the next literal
	next := tokens[1]
	offset := 0
	for {
		idx := strings.Index(value[offset:], next.Literal)
		if idx < 0 {
			return false
		}
		start := offset + idx
		if matchTokens(tokens[2:], value[start+len(next.Literal):]) {
			return true
		}
		offset = start + 1
	}
}
