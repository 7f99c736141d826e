package state

import "strings"

// Partitioned is a state split into classes of items sharing identical
// values for every key in Keys.
type Partitioned struct {
	Keys []string
	// Parts holds one state per distinct value tuple, in order of first
	// appearance.
	Parts []*State
	// Values holds the value tuple of the corresponding part.
	Values [][]string
	// NA collects items lacking a key or carrying more than one value for
	// a key.
	NA *State
	// Heterogeneous lists the items of NA that were rejected for carrying
	// several values for one key.
	Heterogeneous []*Item
}

// Partition splits the items of s by the values of keys. With no keys every
// item lands in the catch-all. The items are shared with s, not copied.
func Partition(s *State, keys []string) *Partitioned {
	p := &Partitioned{Keys: keys, NA: New()}

	if len(keys) == 0 {
		p.NA.Items = append(p.NA.Items, s.itemsOrNil()...)

		return p
	}

	index := make(map[string]int)

	for _, it := range s.itemsOrNil() {
		sig, ok, mixed := signature(it, keys)
		if !ok {
			if mixed {
				p.Heterogeneous = append(p.Heterogeneous, it)
			}

			p.NA.Items = append(p.NA.Items, it)

			continue
		}

		key := strings.Join(sig, "\x00")

		i, seen := index[key]
		if !seen {
			i = len(p.Parts)
			index[key] = i
			p.Parts = append(p.Parts, New())
			p.Values = append(p.Values, sig)
		}

		p.Parts[i].Items = append(p.Parts[i].Items, it)
	}

	return p
}

// signature returns the value tuple of it for keys. ok is false when some key
// has no single value; mixed reports that the cause was several values.
func signature(it *Item, keys []string) (sig []string, ok, mixed bool) {
	sig = make([]string, 0, len(keys))

	for _, k := range keys {
		vals := it.DistinctValues(k)

		switch len(vals) {
		case 0:
			return nil, false, false
		case 1:
			sig = append(sig, vals[0])
		default:
			return nil, false, true
		}
	}

	return sig, true, false
}

// Combine concatenates every part, in order, followed by the catch-all.
func (p *Partitioned) Combine() *State {
	out := New()

	for _, part := range p.Parts {
		out.Items = append(out.Items, part.itemsOrNil()...)
	}

	out.Items = append(out.Items, p.NA.itemsOrNil()...)

	return out
}

func (s *State) itemsOrNil() []*Item {
	if s == nil {
		return nil
	}

	return s.Items
}
