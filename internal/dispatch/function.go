package dispatch

import (
	"strings"

	"dispatchgen/internal/registry"
)

// Function is one exported entry point.
type Function struct {
	Name    string
	Return  string
	Params  []registry.Param
	PtrType string // PFN<NAME>PROC
	// Wrapped functions are emitted under a non-public name because a
	// hand-written wrapper intercepts them first.
	Wrapped bool

	aliasName string    // as written in the registry until resolution
	root      *Function // alias root after resolution
	members   []*Function
	providers providerSet
}

func newFunction(cmd *registry.Command) *Function {
	params := make([]registry.Param, len(cmd.Params))
	copy(params, cmd.Params)
	return &Function{
		Name:      cmd.Name,
		Return:    cmd.Return,
		Params:    params,
		PtrType:   PtrTypeName(cmd.Name),
		aliasName: cmd.Alias,
	}
}

// PtrTypeName derives the function-pointer typedef name.
func PtrTypeName(name string) string {
	return "PFN" + strings.ToUpper(name) + "PROC"
}

// ArgsDecl is the C parameter declaration list, "void" when empty.
func (f *Function) ArgsDecl() string {
	if len(f.Params) == 0 {
		return "void"
	}
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Type + " " + p.Name
	}
	return strings.Join(parts, ", ")
}

// ArgsList is the comma-separated argument names for a forwarding call.
func (f *Function) ArgsList() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// AliasName is the function this one aliases; after resolution it is
// always the root's name.
func (f *Function) AliasName() string { return f.aliasName }

// Root is the alias-group root. A root is its own root.
func (f *Function) Root() *Function {
	if f.root == nil {
		return f
	}
	return f.root
}

// IsRoot reports whether f owns a resolver and a dispatch slot.
func (f *Function) IsRoot() bool { return f.aliasName == "" }

// Members lists the functions aliased onto f, sorted by name.
func (f *Function) Members() []*Function {
	out := make([]*Function, len(f.members))
	copy(out, f.members)
	return out
}

// Providers are f's own providers in insertion order.
func (f *Function) Providers() []*Provider { return f.providers.list() }

// Entry is one step of a resolver's provider walk.
type Entry struct {
	Provider   *Provider
	EntryPoint string // symbol name handed to the loader
}

// ResolverEntries lists, for a root, its own providers followed by each
// member's providers. Non-roots have no resolver and return nil.
func (f *Function) ResolverEntries() []Entry {
	if !f.IsRoot() {
		return nil
	}
	var out []Entry
	for _, p := range f.providers.list() {
		out = append(out, Entry{Provider: p, EntryPoint: f.Name})
	}
	for _, m := range f.members {
		for _, p := range m.providers.list() {
			out = append(out, Entry{Provider: p, EntryPoint: m.Name})
		}
	}
	return out
}
