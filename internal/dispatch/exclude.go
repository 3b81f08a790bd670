package dispatch

import "strings"

// ExcludeFunc reports whether a function must be left out of the target.
type ExcludeFunc func(f *Function) bool

// ExcludeParamTypes drops functions whose parameter declaration mentions any
// of the given type names. Some ancient GLX extensions use types (VLServer,
// DMparams) that no platform header defines.
func ExcludeParamTypes(types ...string) ExcludeFunc {
	if len(types) == 0 {
		return nil
	}
	return func(f *Function) bool {
		decl := f.ArgsDecl()
		for _, ty := range types {
			if ty != "" && strings.Contains(decl, ty) {
				return true
			}
		}
		return false
	}
}

// ExcludeNames drops the listed functions.
func ExcludeNames(names ...string) ExcludeFunc {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(f *Function) bool {
		_, ok := set[f.Name]
		return ok
	}
}

// AnyOf combines predicates; nil entries are skipped.
func AnyOf(preds ...ExcludeFunc) ExcludeFunc {
	var live []ExcludeFunc
	for _, p := range preds {
		if p != nil {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return func(f *Function) bool {
		for _, p := range live {
			if p(f) {
				return true
			}
		}
		return false
	}
}

// applyExclusion removes matching functions and returns their names sorted.
func (t *Target) applyExclusion(pred ExcludeFunc) []string {
	if pred == nil {
		return nil
	}
	var dropped []string
	for _, f := range t.Functions() {
		if pred(f) {
			dropped = append(dropped, f.Name)
			t.remove(f.Name)
		}
	}
	return dropped
}
