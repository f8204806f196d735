package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lower-cases text, trims it and collapses internal whitespace runs.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Tokenize splits normalized text on whitespace and drops tokens shorter than minLen runes.
func Tokenize(normalized string, minLen int) []string {
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minLen {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// words splits normalized text into words with surrounding punctuation removed.
// "scheme (tier 3)" yields scheme, tier, 3.
func words(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// prefixRunes returns the first n runes of s (all of s when shorter).
func prefixRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// query is a normalized query with its tokens.
type query struct {
	text   string
	tokens []string
}

func parseQuery(raw string, minTokenLen int) query {
	text := Normalize(raw)
	return query{text: text, tokens: Tokenize(text, minTokenLen)}
}
