package search

import "strings"

// suggest collects title words and keywords sharing the query prefix,
// de-duplicated in first-seen corpus order, up to limit.
func (s *Service) suggest(snap *snapshot, raw string, limit int) []string {
	q := Normalize(raw)
	out := []string{}
	if q == "" {
		return out
	}

	prefix := prefixRunes(q, s.weights.SuggestPrefixLength)
	seen := make(map[string]struct{})

	consider := func(candidate string) bool {
		if runeLen(candidate) < s.weights.SuggestMinLength || !strings.HasPrefix(candidate, prefix) {
			return false
		}
		if _, dup := seen[candidate]; dup {
			return false
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
		return len(out) >= limit
	}

	for i := range snap.entries {
		e := &snap.entries[i]
		for _, w := range e.titleWords {
			if consider(w) {
				return out
			}
		}
		for k := range e.doc.AllKeywords() {
			if consider(k) {
				return out
			}
		}
	}
	return out
}
