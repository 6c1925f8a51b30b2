package pattern

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	literalCode = iota
	wildcardCode
)

// Token definitions
var (
	wildcardToken = parsly.NewToken(wildcardCode, "Wildcard", matcher.NewByte('*'))
	literalToken  = parsly.NewToken(literalCode, "Literal", newLiteralMatcher())
)

func newLiteralMatcher() parsly.Matcher {
	return &literalMatcher{}
}

// literalMatcher matches a run of characters up to the next wildcard.
type literalMatcher struct{}

func (m *literalMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == '*' {
			break
		}
		matched++
	}
	return matched
}
