package cgen

import (
	"dispatchgen/internal/diag"
	"dispatchgen/internal/dispatch"
)

// Document is one rendered output file.
type Document struct {
	Path    string // relative to the output directory
	Content string
}

// Emit renders the three files generated for a target, in a fixed order:
// public header, vtable defines, dispatch source.
func Emit(t *dispatch.Target) ([]Document, error) {
	if err := checkRoots(t); err != nil {
		return nil, err
	}
	files := []*File{PublicHeader(t), VtableDefines(t), DispatchSource(t)}
	out := make([]Document, len(files))
	for i, f := range files {
		out[i] = Document{Path: f.Path, Content: Render(f)}
	}
	return out, nil
}

// checkRoots verifies every stub has a slot to call through.
func checkRoots(t *dispatch.Target) error {
	for _, fn := range t.Functions() {
		root := fn.Root()
		if !root.IsRoot() {
			return diag.Errorf(diag.EmtMissingRoot, fn.Name, "alias root %s is itself an alias", root.Name)
		}
		if got, ok := t.Function(root.Name); !ok || got != root {
			return diag.Errorf(diag.EmtMissingRoot, fn.Name, "alias root %s is not part of %s", root.Name, t.Name)
		}
	}
	return nil
}
