package lang

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/automaton/op"
)

const (
	// Accept is the lowest score at which a name is resolved.
	Accept = 0.6
	// Exact is the score of a case-insensitive exact match.
	Exact = 1.0
)

// Match is a scored resolution of a query against one candidate.
type Match struct {
	Name     string
	Score    float64
	Distance int
}

// Score rates how well query names candidate, from 0 to [Exact]. It is
// the larger of the normalized edit distance and, for queries of three or
// more runes that appear in order within candidate, a subsequence score
// growing with the share of candidate covered.
func Score(query, candidate string) Match {
	q, c := op.Fold(query), op.Fold(candidate)
	m := Match{Name: candidate, Distance: levenshtein.ComputeDistance(q, c)}

	if q == c {
		m.Score = Exact

		return m
	}

	ql, cl := utf8.RuneCountInString(q), utf8.RuneCountInString(c)
	if n := max(ql, cl); n > 0 {
		m.Score = 1 - float64(m.Distance)/float64(n)
	}

	if ql >= 3 && ql < cl && len(fuzzy.Find(q, []string{c})) > 0 {
		m.Score = max(m.Score, Accept+(Exact-Accept)*float64(ql)/float64(cl))
	}

	// Only an exact match may reach Exact.
	m.Score = min(m.Score, 0.99)

	return m
}

// Resolve returns candidates scored against query, best first. Ties go to
// the smaller edit distance, then to the lexically smaller name.
func Resolve(query string, candidates []string) []Match {
	out := make([]Match, len(candidates))
	for i, c := range candidates {
		out[i] = Score(query, c)
	}

	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}

		return cmp.Compare(a.Name, b.Name)
	})

	return out
}

// Best returns the best match for query, or false if there are no
// candidates.
func Best(query string, candidates []string) (Match, bool) {
	all := Resolve(query, candidates)
	if len(all) == 0 {
		return Match{}, false
	}

	return all[0], true
}
