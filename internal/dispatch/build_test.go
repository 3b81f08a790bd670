package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dispatchgen/internal/diag"
	"dispatchgen/internal/registry"
	"dispatchgen/internal/trace"
)

func fixtureTarget(t *testing.T, opts Options) *Target {
	t.Helper()
	reg, err := registry.Load(filepath.Join("..", "registry", "testdata", "gl.xml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tgt, err := Build(context.Background(), reg, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tgt
}

// doc wraps command and block markup into a minimal registry document.
func doc(commands, blocks string) string {
	return `<registry><commands>` + commands + `</commands>` + blocks + `</registry>`
}

func cmd(name string, alias string) string {
	s := `<command><proto>void <name>` + name + `</name></proto>`
	if alias != "" {
		s += `<alias name="` + alias + `"/>`
	}
	return s + `</command>`
}

func feature(api, number string, names ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<feature api=%q number=%q><require>`, api, number)
	for _, n := range names {
		fmt.Fprintf(&b, `<command name=%q/>`, n)
	}
	b.WriteString(`</require></feature>`)
	return b.String()
}

func buildDoc(t *testing.T, text string, opts Options) (*Target, error) {
	t.Helper()
	reg, err := registry.Parse(strings.NewReader(text), "gl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return Build(context.Background(), reg, opts)
}

func labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Provider.Label + " @" + e.EntryPoint
	}
	return out
}

func names(fns []*Function) []string {
	out := make([]string, len(fns))
	for i, f := range fns {
		out[i] = f.Name
	}
	return out
}

func mustFunc(t *testing.T, tgt *Target, name string) *Function {
	t.Helper()
	f, ok := tgt.Function(name)
	if !ok {
		t.Fatalf("function %s missing", name)
	}
	return f
}

func TestFunctionsSortedByName(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	want := []string{"glBar", "glBarARB", "glBarEXT", "glBegin", "glEnd", "glFoo", "glGetIntegerv", "glGetString", "glOrphan"}
	if diff := cmp.Diff(want, names(tgt.Functions())); diff != "" {
		t.Fatalf("Functions mismatch (-want +got):\n%s", diff)
	}
	roots := []string{"glBar", "glBegin", "glEnd", "glFoo", "glGetIntegerv", "glGetString", "glOrphan"}
	if diff := cmp.Diff(roots, names(tgt.Roots())); diff != "" {
		t.Fatalf("Roots mismatch (-want +got):\n%s", diff)
	}
}

func TestFeatureThenExtensionOrder(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	got := labels(mustFunc(t, tgt, "glFoo").ResolverEntries())
	want := []string{`Desktop OpenGL 1.0 @glFoo`, `GL extension "GL_ARB_foo" @glFoo`}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("glFoo entries (-want +got):\n%s", diff)
	}
}

func TestAliasChainCompressedOntoRoot(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	bar := mustFunc(t, tgt, "glBar")
	for _, name := range []string{"glBarARB", "glBarEXT"} {
		f := mustFunc(t, tgt, name)
		if f.IsRoot() || f.AliasName() != "glBar" || f.Root() != bar {
			t.Fatalf("%s: alias=%q root=%s", name, f.AliasName(), f.Root().Name)
		}
		if f.ResolverEntries() != nil {
			t.Fatalf("%s: non-root has resolver entries", name)
		}
	}
	if diff := cmp.Diff([]string{"glBarARB", "glBarEXT"}, names(bar.Members())); diff != "" {
		t.Fatalf("members (-want +got):\n%s", diff)
	}
	want := []string{
		"Desktop OpenGL 2.0 @glBar",
		"OpenGL ES 2.0 @glBar",
		`GL extension "GL_ARB_bar" @glBarARB`,
		`GL extension "GL_EXT_bar" @glBarEXT`,
	}
	if diff := cmp.Diff(want, labels(bar.ResolverEntries())); diff != "" {
		t.Fatalf("glBar entries (-want +got):\n%s", diff)
	}
}

func TestResolveAliasesIdempotent(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	before := names(mustFunc(t, tgt, "glBar").Members())
	if err := tgt.resolveAliases(); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if diff := cmp.Diff(before, names(mustFunc(t, tgt, "glBar").Members())); diff != "" {
		t.Fatalf("members changed (-before +after):\n%s", diff)
	}
}

func TestEveryAliasPointsAtRoot(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	for _, f := range tgt.Functions() {
		root := f.Root()
		if !root.IsRoot() {
			t.Fatalf("%s: root %s is an alias", f.Name, root.Name)
		}
		if !f.IsRoot() && f.AliasName() != root.Name {
			t.Fatalf("%s: alias %s != root %s", f.Name, f.AliasName(), root.Name)
		}
		if !f.IsRoot() && len(f.Members()) != 0 {
			t.Fatalf("%s: member has members", f.Name)
		}
	}
}

func TestBootstrapReplacesProviders(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	for _, name := range []string{"glGetString", "glGetIntegerv"} {
		ps := mustFunc(t, tgt, name).Providers()
		if len(ps) != 1 {
			t.Fatalf("%s: %d providers, want 1", name, len(ps))
		}
		p := ps[0]
		if p.Label != BootstrapLabel || p.Condition != "true" || p.Loader != "epoxy_get_proc_address({name})" {
			t.Fatalf("%s: provider %+v", name, *p)
		}
	}
}

func TestNoBootstrapKeepsSynthesized(t *testing.T) {
	opts := DefaultOptions()
	opts.Bootstrap = nil
	tgt := fixtureTarget(t, opts)
	got := labels(mustFunc(t, tgt, "glGetString").ResolverEntries())
	want := []string{
		"Desktop OpenGL 1.0 @glGetString",
		"OpenGL ES 2.0 @glGetString",
		`GL extension "GL_ARB_foo" @glGetString`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("glGetString entries (-want +got):\n%s", diff)
	}
}

func TestBootstrapBadLoader(t *testing.T) {
	opts := DefaultOptions()
	opts.Bootstrap = []Bootstrap{{Name: "glGetString", Loader: "dlsym(handle)"}}
	reg, err := registry.Load(filepath.Join("..", "registry", "testdata", "gl.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(context.Background(), reg, opts); !errors.Is(err, diag.PrvBadLoader) {
		t.Fatalf("err = %v, want %s", err, diag.PrvBadLoader.ID())
	}
}

func TestOrphanHasNoProviders(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	f := mustFunc(t, tgt, "glOrphan")
	if len(f.ResolverEntries()) != 0 {
		t.Fatalf("glOrphan entries = %v", labels(f.ResolverEntries()))
	}
}

func TestWrappedMarked(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	for _, f := range tgt.Functions() {
		want := f.Name == "glBegin" || f.Name == "glEnd"
		if f.Wrapped != want {
			t.Fatalf("%s: Wrapped = %v", f.Name, f.Wrapped)
		}
	}
}

func TestEnumerationOrder(t *testing.T) {
	tgt := fixtureTarget(t, DefaultOptions())
	var got []string
	for i, p := range tgt.Providers() {
		if int(p.Ordinal) != i+1 {
			t.Fatalf("%s: ordinal %d at index %d", p.Label, p.Ordinal, i)
		}
		got = append(got, p.Token)
	}
	want := []string{
		"Desktop_OpenGL_2_0",
		"OpenGL_ES_2_0",
		"GL_extension_GL_ARB_bar",
		"GL_extension_GL_EXT_bar",
		"Desktop_OpenGL_1_0",
		"GL_extension_GL_ARB_foo",
		"always_present",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens (-want +got):\n%s", diff)
	}
}

func TestBuildDeterministic(t *testing.T) {
	first := fixtureTarget(t, DefaultOptions())
	for range 5 {
		again := fixtureTarget(t, DefaultOptions())
		if diff := cmp.Diff(names(first.Functions()), names(again.Functions())); diff != "" {
			t.Fatalf("functions differ:\n%s", diff)
		}
		for _, f := range first.Roots() {
			g := mustFunc(t, again, f.Name)
			if diff := cmp.Diff(labels(f.ResolverEntries()), labels(g.ResolverEntries())); diff != "" {
				t.Fatalf("%s entries differ:\n%s", f.Name, diff)
			}
		}
	}
}

func TestExcludeParamTypes(t *testing.T) {
	text := doc(
		`<command><proto>void <name>glXVLStuff</name></proto><param><ptype>VLServer</ptype> <name>s</name></param></command>`+
			cmd("glXKeep", ""),
		feature("glx", "1.3", "glXVLStuff", "glXKeep"))
	tgt, err := buildDoc(t, text, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tgt.Function("glXVLStuff"); ok {
		t.Fatal("glXVLStuff survived exclusion")
	}
	if _, ok := tgt.Function("glXKeep"); !ok {
		t.Fatal("glXKeep dropped")
	}
}

func TestExcludeNamesAndAnyOf(t *testing.T) {
	pred := AnyOf(nil, ExcludeNames("glB"), ExcludeParamTypes("DMparams"))
	text := doc(cmd("glA", "")+cmd("glB", ""), feature("gl", "1.0", "glA", "glB"))
	tgt, err := buildDoc(t, text, Options{Exclude: pred})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"glA"}, names(tgt.Functions())); diff != "" {
		t.Fatalf("functions (-want +got):\n%s", diff)
	}
	if AnyOf(nil, nil) != nil {
		t.Fatal("AnyOf of nothing should be nil")
	}
}

func TestAliasErrors(t *testing.T) {
	cases := []struct {
		name     string
		commands string
		want     diag.Code
	}{
		{"dangling", cmd("glA", "glMissing"), diag.AlsDangling},
		{"cycle", cmd("glA", "glB") + cmd("glB", "glA"), diag.AlsCycle},
		{"self", cmd("glA", "glA"), diag.AlsCycle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildDoc(t, doc(tc.commands, ""), Options{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %s", err, tc.want.ID())
			}
		})
	}
}

func TestAddAliasTransitive(t *testing.T) {
	root := &Function{Name: "glRoot"}
	mid := &Function{Name: "glMid"}
	leaf := &Function{Name: "glLeaf"}
	if err := mid.addAlias(leaf); err != nil {
		t.Fatal(err)
	}
	if err := root.addAlias(mid); !errors.Is(err, diag.AlsTransitive) {
		t.Fatalf("member with members: err = %v", err)
	}
	other := &Function{Name: "glOther"}
	if err := other.addAlias(leaf); !errors.Is(err, diag.AlsTransitive) {
		t.Fatalf("second root: err = %v", err)
	}
	if err := mid.addAlias(leaf); err != nil {
		t.Fatalf("re-adding to same root: %v", err)
	}
	if len(mid.Members()) != 1 {
		t.Fatalf("members = %v", names(mid.Members()))
	}
}

func extension(name, supported string, names ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<extension name=%q supported=%q><require>`, name, supported)
	for _, n := range names {
		fmt.Fprintf(&b, `<command name=%q/>`, n)
	}
	b.WriteString(`</require></extension>`)
	return b.String()
}

func TestConflictingProvidersAreFatal(t *testing.T) {
	boots := []Bootstrap{
		{Name: "glA", Loader: "epoxy_get_proc_address({name})"},
		{Name: "glB", Loader: "epoxy_gl_dlsym({name})"},
	}
	cases := []struct {
		name   string
		blocks string
		opts   Options
		want   diag.Code
	}{
		{
			name:   "label reused across functions",
			blocks: feature("gles1", "1.0", "glA") + feature("gles2", "1.0", "glB"),
			want:   diag.PrvRedefined,
		},
		{
			name:   "label reused on one function",
			blocks: feature("gles1", "1.0", "glA") + feature("gles2", "1.0", "glA"),
			want:   diag.PrvRedefined,
		},
		{
			name: "bootstrap loaders disagree",
			opts: Options{Bootstrap: boots},
			want: diag.PrvRedefined,
		},
		{
			name:   "labels sanitize to one token",
			blocks: `<extensions>` + extension("GL_x.y", "gl", "glA") + extension("GL_x_y", "gl", "glB") + `</extensions>`,
			want:   diag.PrvTokenCollision,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildDoc(t, doc(cmd("glA", "")+cmd("glB", ""), tc.blocks), tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %s", err, tc.want.ID())
			}
		})
	}
}

func TestEnumerateOrdinalOverflow(t *testing.T) {
	f := &Function{Name: "glA"}
	for i := range 1 << 16 {
		if err := f.providers.add(NewProvider(fmt.Sprintf("P%d", i), "true", "x({name})")); err != nil {
			t.Fatal(err)
		}
	}
	tgt := &Target{Name: "gl", funcs: map[string]*Function{"glA": f}}
	if err := tgt.enumerate(); !errors.Is(err, diag.PrvTokenCollision) {
		t.Fatalf("err = %v, want %s", err, diag.PrvTokenCollision.ID())
	}
}

func TestUnknownCommandIsFatal(t *testing.T) {
	_, err := buildDoc(t, doc(cmd("glA", ""), feature("gl", "1.0", "glA", "glNope")), Options{})
	if !errors.Is(err, diag.RegUnknownCommand) {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownAPIIsFatal(t *testing.T) {
	_, err := buildDoc(t, doc(cmd("glA", ""), feature("vulkan", "1.0", "glA")), Options{})
	if !errors.Is(err, diag.PrvUnknownAPI) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildTraceSpan(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	reg, err := registry.Load(filepath.Join("..", "registry", "testdata", "gl.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(ctx, reg, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events, want begin/end", len(events))
	}
	end := events[1]
	if end.Name != "dispatch:gl" || end.Extra["functions"] != "9" || end.Extra["providers"] != "7" {
		t.Fatalf("end event = %+v", end)
	}
}
