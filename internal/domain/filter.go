package domain

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// FilterStates returns the states matching query, restricted to those with
// changes to record when modifiedOnly is set. A query orders the result by
// match quality; otherwise the input order is kept.
func FilterStates(states []*FileState, query string, modifiedOnly bool) []*FileState {
	candidates := make([]*FileState, 0, len(states))
	for _, st := range states {
		if modifiedOnly && !st.IsModified() {
			continue
		}
		candidates = append(candidates, st)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return candidates
	}

	paths := make([]string, len(candidates))
	for i, st := range candidates {
		paths[i] = st.Path
	}
	matches := fuzzy.Find(query, paths)

	result := make([]*FileState, 0, len(matches))
	for _, m := range matches {
		result = append(result, candidates[m.Index])
	}
	return result
}
