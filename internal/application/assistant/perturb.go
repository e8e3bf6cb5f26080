package assistant

import (
	"strings"
)

// perturbSuffixes are appended, in order, when a generated query collides
// with the turn's history. The list is fixed so the perturbation is
// deterministic for a given history.
var perturbSuffixes = []string{
	"heritage",
	"traditional",
	"cultural",
	"archive",
	"history",
}

// PerturbQuery derives a novel query from base when the generator repeats
// itself. It tries dropping the last token, then appending fixed suffix
// tokens. Returns "" when no novel variant exists, which the caller treats
// as exhaustion.
func PerturbQuery(base string, tried []string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}

	seen := make(map[string]struct{}, len(tried))
	for _, q := range tried {
		seen[q] = struct{}{}
	}
	novel := func(q string) bool {
		_, ok := seen[q]
		return q != "" && !ok
	}

	tokens := strings.Fields(base)
	if len(tokens) > 1 {
		if q := strings.Join(tokens[:len(tokens)-1], " "); novel(q) {
			return q
		}
	}

	present := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		present[strings.ToLower(t)] = struct{}{}
	}
	for _, suffix := range perturbSuffixes {
		if _, ok := present[suffix]; ok {
			continue
		}
		if q := base + " " + suffix; novel(q) {
			return q
		}
	}

	return ""
}
