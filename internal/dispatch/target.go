package dispatch

import (
	"sort"

	"dispatchgen/internal/registry"
)

// Target is one generation run for one API family document.
type Target struct {
	Name      string
	Comment   string
	Typedefs  string
	Enums     []registry.Enum
	EnumWidth int // longest constant name

	funcs     map[string]*Function
	sorted    []*Function
	providers []*Provider // enumeration order
}

func newTarget(reg *registry.Registry) *Target {
	enums := make([]registry.Enum, len(reg.Enums))
	copy(enums, reg.Enums)
	return &Target{
		Name:      reg.Name,
		Comment:   reg.Comment,
		Typedefs:  reg.Typedefs,
		Enums:     enums,
		EnumWidth: reg.MaxEnumNameLen(),
		funcs:     make(map[string]*Function, len(reg.Commands)),
	}
}

// Function looks a function up by name.
func (t *Target) Function(name string) (*Function, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Functions returns every function sorted by name.
func (t *Target) Functions() []*Function {
	if t.sorted == nil {
		t.sortFunctions()
	}
	out := make([]*Function, len(t.sorted))
	copy(out, t.sorted)
	return out
}

// Roots returns the alias-group roots sorted by name.
func (t *Target) Roots() []*Function {
	var out []*Function
	for _, f := range t.Functions() {
		if f.IsRoot() {
			out = append(out, f)
		}
	}
	return out
}

// Providers returns the enumerated providers in ordinal order.
func (t *Target) Providers() []*Provider {
	out := make([]*Provider, len(t.providers))
	copy(out, t.providers)
	return out
}

func (t *Target) sortFunctions() {
	t.sorted = make([]*Function, 0, len(t.funcs))
	for _, f := range t.funcs {
		t.sorted = append(t.sorted, f)
	}
	sort.Slice(t.sorted, func(i, j int) bool { return t.sorted[i].Name < t.sorted[j].Name })
}

func (t *Target) remove(name string) {
	delete(t.funcs, name)
	t.sorted = nil
}
