package state

import (
	"maps"
	"slices"
)

// Metadata is a flat string key-value map attached to items and elements.
type Metadata map[string]string

// Clone returns an independent copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}

	return maps.Clone(m)
}

// Well-known item kinds.
const (
	KindFile  = "file"
	KindPlan  = "plan"
	KindTable = "table"
)

// Item is one object held in the shared state.
type Item struct {
	// Kind names the item's category, e.g. "image", "plan", "file".
	Kind string
	// ID is an optional cross-reference identifier.
	ID string
	// Refs lists the IDs of items this one links to.
	Refs []string
	// Metadata describes the item as a whole.
	Metadata Metadata
	// Elements holds per-element metadata for composite items.
	Elements []Metadata
	// Source records where the item was loaded from.
	Source string
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}

	out := *it
	out.Refs = slices.Clone(it.Refs)
	out.Metadata = it.Metadata.Clone()

	if it.Elements != nil {
		out.Elements = make([]Metadata, len(it.Elements))
		for i, e := range it.Elements {
			out.Elements[i] = e.Clone()
		}
	}

	return &out
}

// DistinctValues returns the distinct values recorded for key, in order of
// first appearance. Composite items report the values of their elements;
// other items report their own metadata. Elements lacking key contribute
// nothing.
func (it *Item) DistinctValues(key string) []string {
	if len(it.Elements) == 0 {
		if v, ok := it.Metadata[key]; ok {
			return []string{v}
		}

		return nil
	}

	var out []string

	for _, e := range it.Elements {
		v, ok := e[key]
		if ok && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	return out
}

// State is the ordered collection every operation works on.
type State struct {
	Items []*Item
}

// New returns a State holding items.
func New(items ...*Item) *State {
	return &State{Items: items}
}

// Len returns the number of items.
func (s *State) Len() int {
	if s == nil {
		return 0
	}

	return len(s.Items)
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return New()
	}

	out := &State{Items: make([]*Item, len(s.Items))}
	for i, it := range s.Items {
		out.Items[i] = it.Clone()
	}

	return out
}

// Merge appends the items of every other state to s, leaving the others
// empty.
func (s *State) Merge(others ...*State) {
	for _, o := range others {
		if o == nil || o == s {
			continue
		}

		s.Items = append(s.Items, o.Items...)
		o.Items = nil
	}
}

// Replace overwrites the contents of s with those of o in place, so that
// holders of s observe the change.
func (s *State) Replace(o *State) {
	if o == nil {
		s.Items = nil

		return
	}

	s.Items = o.Items
}

// Kinds returns the number of items of each kind.
func (s *State) Kinds() map[string]int {
	out := make(map[string]int)

	for _, it := range s.Items {
		out[it.Kind]++
	}

	return out
}

// Params is the process-wide key-value parameter table.
type Params map[string]string

// Clone returns an independent copy of p. A nil table clones to an empty one.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)

	return out
}

// Replace overwrites the contents of p with those of o in place.
func (p Params) Replace(o Params) {
	clear(p)
	maps.Copy(p, o)
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}
