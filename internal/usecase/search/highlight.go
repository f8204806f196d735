package search

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Span is a highlighted byte range [Start, End) of a text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight returns the merged, case-insensitive match ranges of the whole
// normalized query in text, or of its tokens when the whole query does not occur.
func Highlight(text, rawQuery string, minTokenLen int) []Span {
	q := parseQuery(rawQuery, minTokenLen)
	if q.text == "" || text == "" {
		return nil
	}

	folded, offsets := foldRunes(text)

	spans := findAll(folded, offsets, []rune(q.text))
	if len(spans) == 0 {
		for _, tok := range q.tokens {
			spans = append(spans, findAll(folded, offsets, []rune(tok))...)
		}
	}
	return mergeSpans(spans)
}

// foldRunes lower-cases text rune by rune and records each rune's byte offset,
// with a trailing entry for len(text).
func foldRunes(text string) ([]rune, []int) {
	folded := make([]rune, 0, utf8.RuneCountInString(text))
	offsets := make([]int, 0, cap(folded)+1)
	for pos, r := range text {
		folded = append(folded, unicode.ToLower(r))
		offsets = append(offsets, pos)
	}
	offsets = append(offsets, len(text))
	return folded, offsets
}

func findAll(hay []rune, offsets []int, needle []rune) []Span {
	if len(needle) == 0 || len(needle) > len(hay) {
		return nil
	}
	var out []Span
	for i := 0; i+len(needle) <= len(hay); i++ {
		match := true
		for j := range needle {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			out = append(out, Span{Start: offsets[i], End: offsets[i+len(needle)]})
		}
	}
	return out
}

func mergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	merged := []Span{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			last.End = max(last.End, sp.End)
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
