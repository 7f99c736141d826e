package op

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// ArgDoc documents one argument of an operation.
type ArgDoc struct {
	Name     string   `json:"name"               yaml:"name"`
	Desc     string   `json:"desc,omitempty"     yaml:"desc,omitempty"`
	Default  string   `json:"default,omitempty"  yaml:"default,omitempty"`
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	// Exhaustive marks Examples as the complete set of accepted values.
	Exhaustive bool `json:"exhaustive,omitempty" yaml:"exhaustive,omitempty"`
	// Expected arguments receive Default when a call site omits them.
	Expected bool `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Doc documents an operation.
type Doc struct {
	Name    string   `json:"name"              yaml:"name"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Desc    string   `json:"desc,omitempty"    yaml:"desc,omitempty"`
	Notes   []string `json:"notes,omitempty"   yaml:"notes,omitempty"`
	Args    []ArgDoc `json:"args,omitempty"    yaml:"args,omitempty"`
}

// Arg returns the documentation of the named argument.
func (d Doc) Arg(name string) (ArgDoc, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a, true
		}
	}

	return ArgDoc{}, false
}

// ArgNames returns the declared argument names in order.
func (d Doc) ArgNames() []string {
	out := make([]string, len(d.Args))
	for i, a := range d.Args {
		out[i] = a.Name
	}

	return out
}

// Handler executes an operation.
type Handler func(ctx context.Context, x *Exec) Outcome

// Operation pairs documentation with the handler that implements it.
type Operation struct {
	Doc Doc
	Run Handler
}

// Registry maps operation names and aliases to operations. Lookups are
// case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	ops   map[string]*Operation
	names map[string]string
}

// NewRegistry returns a registry holding ops.
func NewRegistry(ops ...Operation) (*Registry, error) {
	r := &Registry{
		ops:   make(map[string]*Operation),
		names: make(map[string]string),
	}

	for _, o := range ops {
		if err := r.Register(o); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds o under its name and aliases.
func (r *Registry) Register(o Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{o.Doc.Name}, o.Doc.Aliases...)

	for _, k := range keys {
		if _, ok := r.names[Fold(k)]; ok {
			return ErrDuplicate.With(slog.String("name", k))
		}
	}

	op := o
	r.ops[o.Doc.Name] = &op

	for _, k := range keys {
		r.names[Fold(k)] = o.Doc.Name
	}

	return nil
}

// Lookup returns the operation registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canon, ok := r.names[Fold(name)]
	if !ok {
		return nil, false
	}

	return r.ops[canon], true
}

// Names returns the canonical operation names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.ops))
}

// Lexicon returns every name a script may use, canonical names and aliases
// alike, mapped to the canonical name.
func (r *Registry) Lexicon() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.names))

	for _, o := range r.ops {
		out[o.Doc.Name] = o.Doc.Name
		for _, a := range o.Doc.Aliases {
			out[a] = o.Doc.Name
		}
	}

	return out
}
