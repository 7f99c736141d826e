package state

import (
	"fmt"
	"strconv"
	"strings"
)

// Plans returns the indices of the plan items of s, in order.
func (s *State) Plans() []int {
	var out []int

	for i, it := range s.itemsOrNil() {
		if it.Kind == KindPlan {
			out = append(out, i)
		}
	}

	return out
}

// SelectPlans applies a selection expression to the plan items of s and
// returns the chosen indices into s.Items. The expression is one of "all",
// "first", "last", "#N" (zero-based from the front) or "#-N" (one-based from
// the back).
func (s *State) SelectPlans(expr string) ([]int, error) {
	plans := s.Plans()

	sel := strings.ToLower(strings.TrimSpace(expr))

	switch {
	case sel == "" || sel == "all":
		return plans, nil

	case sel == "first":
		if len(plans) == 0 {
			return nil, nil
		}

		return plans[:1], nil

	case sel == "last":
		if len(plans) == 0 {
			return nil, nil
		}

		return plans[len(plans)-1:], nil

	case strings.HasPrefix(sel, "#"):
		n, err := strconv.Atoi(sel[1:])
		if err != nil {
			return nil, ErrNoSelection.Wrap(
				fmt.Errorf("invalid selection %q: %w", expr, err),
			)
		}

		if n < 0 {
			n += len(plans)
		}

		if n < 0 || n >= len(plans) {
			return nil, nil
		}

		return plans[n : n+1], nil
	}

	return nil, ErrNoSelection.Wrap(fmt.Errorf("invalid selection %q", expr))
}

// Linked returns the indices of every item connected to s.Items[root]
// through ID and Refs, in either direction and transitively. root itself is
// excluded. The result is in state order.
func (s *State) Linked(root int) []int {
	items := s.itemsOrNil()
	if root < 0 || root >= len(items) {
		return nil
	}

	byID := make(map[string][]int)

	for i, it := range items {
		if it.ID != "" {
			byID[it.ID] = append(byID[it.ID], i)
		}
	}

	// referrers maps an ID to the items referring to it.
	referrers := make(map[string][]int)

	for i, it := range items {
		for _, r := range it.Refs {
			referrers[r] = append(referrers[r], i)
		}
	}

	seen := map[int]bool{root: true}
	queue := []int{root}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		var next []int

		for _, r := range items[i].Refs {
			next = append(next, byID[r]...)
		}

		if id := items[i].ID; id != "" {
			next = append(next, referrers[id]...)
		}

		for _, j := range next {
			if !seen[j] {
				seen[j] = true
				queue = append(queue, j)
			}
		}
	}

	out := make([]int, 0, len(seen)-1)

	for i := range items {
		if seen[i] && i != root {
			out = append(out, i)
		}
	}

	return out
}

// Split moves the items at the given indices into a new state and returns
// it together with the remainder, both preserving order.
func (s *State) Split(indices []int) (picked, rest *State) {
	want := make(map[int]bool, len(indices))
	for _, i := range indices {
		want[i] = true
	}

	picked, rest = New(), New()

	for i, it := range s.itemsOrNil() {
		if want[i] {
			picked.Items = append(picked.Items, it)
		} else {
			rest.Items = append(rest.Items, it)
		}
	}

	return picked, rest
}
