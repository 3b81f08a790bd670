package cgen

import (
	"fmt"

	"dispatchgen/internal/dispatch"
)

// DispatchSource is the C translation unit holding the dispatch table,
// the provider resolver, one resolver per alias root and one stub per
// function.
func DispatchSource(t *dispatch.Target) *File {
	f := &File{Path: sourcePath(t.Name)}
	f.add(
		banner("code", t.Comment),
		Blank{},
		Include{Path: "stdlib.h", System: true},
		Include{Path: "stdio.h", System: true},
		Blank{},
		Include{Path: "dispatch_common.h"},
		Include{Path: "epoxy/" + t.Name + ".h"},
		Blank{},
	)

	roots := t.Roots()
	table := Struct{Name: "dispatch_table"}
	for _, r := range roots {
		table.Fields = append(table.Fields, Field{Type: r.PtrType, Name: "p" + r.Name})
	}
	f.add(table, Blank{})

	f.add(
		Comment{Lines: []string{"Lazily filled and unsynchronized: calls must come from one thread at a time."}},
		Line{Text: "static struct dispatch_table local_dispatch_table;"},
		Line{Text: "static struct dispatch_table *dispatch_table = &local_dispatch_table;"},
		Blank{},
	)

	providers := t.Providers()
	f.add(providerEnumNode(t.Name, providers), Blank{})
	f.add(enumStrings(providers), Blank{})
	f.add(resolverFunc(t.Name, providers), Blank{})

	for _, r := range roots {
		f.add(rootResolver(t.Name, r), Blank{})
	}
	for _, fn := range t.Functions() {
		f.add(stub(fn), Blank{})
	}
	return f
}

func providerEnumNode(target string, providers []*dispatch.Provider) Enum {
	e := Enum{Name: providerEnum(target)}
	e.Members = append(e.Members, EnumMember{Name: terminator(target), Value: "0"})
	for _, p := range providers {
		e.Members = append(e.Members, EnumMember{Name: p.Token})
	}
	return e
}

func enumStrings(providers []*dispatch.Provider) StringTable {
	st := StringTable{Decl: "static const char *enum_strings"}
	for _, p := range providers {
		st.Entries = append(st.Entries, IndexedString{Index: p.Token, Value: p.Label})
	}
	return st
}

// resolverFunc walks a root's provider list and returns the first pointer
// whose condition holds at runtime, aborting with a report otherwise.
func resolverFunc(target string, providers []*dispatch.Provider) Func {
	sw := Switch{Expr: "providers[i]"}
	for _, p := range providers {
		sw.Cases = append(sw.Cases, Case{
			Label: p.Token,
			Body: []Stmt{
				If{Cond: p.Condition, Then: []Stmt{Return{Expr: p.Loader.Expand("entrypoints[i]")}}},
				Code{Text: "break;"},
			},
		})
	}
	sw.Cases = append(sw.Cases, Case{
		Label: terminator(target),
		Body:  []Stmt{Code{Text: "abort(); /* Not reached */"}},
	})

	return Func{
		Storage: "static",
		Ret:     "void *",
		Name:    providerResolver(target),
		Params: []string{
			"const char *name",
			"const enum " + providerEnum(target) + " *providers",
			"const char **entrypoints",
		},
		WrapParams: true,
		Body: []Stmt{
			Code{Text: "int i;"},
			For{
				Header: fmt.Sprintf("i = 0; providers[i] != %s; i++", terminator(target)),
				Body:   []Stmt{sw},
			},
			Code{},
			Code{Text: "epoxy_print_failure_reasons(name, enum_strings, (const int *)providers);"},
			Code{Text: "abort();"},
		},
	}
}

func rootResolver(target string, root *dispatch.Function) Func {
	entries := root.ResolverEntries()
	provs := ArrayInit{
		Decl: "static const enum " + providerEnum(target) + " providers[]",
		Last: terminator(target),
	}
	names := ArrayInit{
		Decl: "static const char *entrypoints[]",
		Last: "NULL",
	}
	for _, e := range entries {
		provs.Elems = append(provs.Elems, e.Provider.Token)
		names.Elems = append(names.Elems, CQuote(e.EntryPoint))
	}
	return Func{
		Storage: "static",
		Ret:     root.PtrType,
		Name:    resolverName(root.Name),
		Body: []Stmt{
			provs,
			names,
			Return{Expr: fmt.Sprintf("%s(%s, providers, entrypoints)", providerResolver(target), CQuote(root.Name))},
		},
	}
}

// stub lazily resolves the group's shared slot and forwards the call.
func stub(fn *dispatch.Function) Func {
	root := fn.Root()
	entry := slot(root.Name)
	call := fmt.Sprintf("%s(%s)", entry, fn.ArgsList())
	var tail Stmt = Code{Text: call + ";"}
	if fn.Return != "void" {
		tail = Return{Expr: call}
	}
	storage := "PUBLIC"
	if fn.Wrapped {
		storage = ""
	}
	return Func{
		Storage: storage,
		Ret:     fn.Return,
		Name:    stubName(fn),
		Params:  []string{fn.ArgsDecl()},
		Body: []Stmt{
			If{Cond: "!" + entry, Then: []Stmt{Code{Text: fmt.Sprintf("%s = %s();", entry, resolverName(root.Name))}}},
			Code{},
			tail,
		},
	}
}
