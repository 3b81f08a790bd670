package cgen

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dispatchgen/internal/dispatch"
	"dispatchgen/internal/registry"
)

const smallDoc = `<registry>
<commands>
<command><proto>void <name>glA</name></proto><param><ptype>GLuint</ptype> <name>x</name></param></command>
<command><proto>void <name>glB</name></proto><param><ptype>GLuint</ptype> <name>x</name></param><alias name="glA"/></command>
</commands>
<feature api="gl" number="1.0"><require><command name="glA"/></require></feature>
<extensions>
<extension name="GL_X_b" supported="gl"><require><command name="glB"/></require></extension>
</extensions>
</registry>`

func buildTarget(t *testing.T, reg *registry.Registry) *dispatch.Target {
	t.Helper()
	tgt, err := dispatch.Build(context.Background(), reg, dispatch.DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tgt
}

func smallTarget(t *testing.T) *dispatch.Target {
	t.Helper()
	reg, err := registry.Parse(strings.NewReader(smallDoc), "gl")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return buildTarget(t, reg)
}

func fixtureDocs(t *testing.T) map[string]string {
	t.Helper()
	reg, err := registry.Load(filepath.Join("..", "registry", "testdata", "gl.xml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	docs, err := Emit(buildTarget(t, reg))
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.Path] = d.Content
	}
	return out
}

func TestDispatchSourceExact(t *testing.T) {
	pad := strings.Repeat(" ", len("static void *gl_provider_resolver("))
	want := `/* GL dispatch code.
 * This is code-generated from the GL API XML files from Khronos.
 */

#include <stdlib.h>
#include <stdio.h>

#include "dispatch_common.h"
#include "epoxy/gl.h"

struct dispatch_table {
    PFNGLAPROC pglA;
};

/* Lazily filled and unsynchronized: calls must come from one thread at a time. */
static struct dispatch_table local_dispatch_table;
static struct dispatch_table *dispatch_table = &local_dispatch_table;

enum gl_provider {
    gl_provider_terminator = 0,
    Desktop_OpenGL_1_0,
    GL_extension_GL_X_b,
};

static const char *enum_strings[] = {
    [Desktop_OpenGL_1_0] = "Desktop OpenGL 1.0",
    [GL_extension_GL_X_b] = "GL extension \"GL_X_b\"",
};

static void *gl_provider_resolver(const char *name,
` + pad + `const enum gl_provider *providers,
` + pad + `const char **entrypoints)
{
    int i;
    for (i = 0; providers[i] != gl_provider_terminator; i++) {
        switch (providers[i]) {
        case Desktop_OpenGL_1_0:
            if (epoxy_is_desktop_gl())
                return epoxy_gl_dlsym(entrypoints[i]);
            break;
        case GL_extension_GL_X_b:
            if (epoxy_conservative_has_gl_extension("GL_X_b"))
                return epoxy_get_proc_address(entrypoints[i]);
            break;
        case gl_provider_terminator:
            abort(); /* Not reached */
        }
    }

    epoxy_print_failure_reasons(name, enum_strings, (const int *)providers);
    abort();
}

static PFNGLAPROC
epoxy_glA_resolver(void)
{
    static const enum gl_provider providers[] = {
        Desktop_OpenGL_1_0,
        GL_extension_GL_X_b,
        gl_provider_terminator
    };
    static const char *entrypoints[] = {
        "glA",
        "glB",
        NULL
    };
    return gl_provider_resolver("glA", providers, entrypoints);
}

PUBLIC void
epoxy_glA(GLuint x)
{
    if (!dispatch_table->pglA)
        dispatch_table->pglA = epoxy_glA_resolver();

    dispatch_table->pglA(x);
}

PUBLIC void
epoxy_glB(GLuint x)
{
    if (!dispatch_table->pglA)
        dispatch_table->pglA = epoxy_glA_resolver();

    dispatch_table->pglA(x);
}

`
	got := Render(DispatchSource(smallTarget(t)))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
}

func TestVtableDefinesExact(t *testing.T) {
	want := `/* GL dispatch header.
 * This is code-generated from the GL API XML files from Khronos.
 */

#pragma once
#include <inttypes.h>
#include <stddef.h>

#define glA epoxy_glA
#define glB epoxy_glB
`
	if diff := cmp.Diff(want, Render(VtableDefines(smallTarget(t)))); diff != "" {
		t.Fatalf("defines mismatch (-want +got):\n%s", diff)
	}
}

func TestEmitPaths(t *testing.T) {
	docs := fixtureDocs(t)
	for _, p := range []string{
		"include/epoxy/gl_generated.h",
		"include/epoxy/gl_generated_vtable_defines.h",
		"src/gl_generated_dispatch.c",
	} {
		if _, ok := docs[p]; !ok {
			t.Fatalf("missing %s (have %v)", p, docs)
		}
	}
}

func TestHeaderContents(t *testing.T) {
	h := fixtureDocs(t)["include/epoxy/gl_generated.h"]
	for _, want := range []string{
		" * Copyright (c) 2013 The Khronos Group Inc.\n * Permission is hereby granted to use this sample.\n */\n",
		"typedef int8_t khronos_int8_t;\n",
		"typedef unsigned int GLenum;\n",
		"typedef unsigned int GLhandleARB;\n",
		"#define GL_FALSE        0\n",
		"#define GL_EXTENSIONS   0x1F03\n",
		"typedef const GLubyte * (*PFNGLGETSTRINGPROC)(GLenum name);\n",
		"typedef void (*PFNGLENDPROC)(void);\n",
		"void epoxy_glBegin(GLenum mode);\n\n",
		"void epoxy_glBarEXT(GLuint shader, const GLchar * source);\n\n",
	} {
		if !strings.Contains(h, want) {
			t.Errorf("header lacks %q", want)
		}
	}
	if strings.Contains(h, "This part is not copied") {
		t.Error("comment not truncated at ruler")
	}
	if strings.Contains(h, "khrplatform.h") {
		t.Error("named requirement type leaked into typedefs")
	}
}

func TestWrappedStubs(t *testing.T) {
	src := fixtureDocs(t)["src/gl_generated_dispatch.c"]
	if !strings.Contains(src, "\nvoid\nepoxy_glBegin_unwrapped(GLenum mode)\n{") {
		t.Error("glBegin not emitted as unwrapped")
	}
	if strings.Contains(src, "epoxy_glBegin(GLenum mode)") {
		t.Error("wrapped glBegin still has a public stub")
	}
	if !strings.Contains(src, "PUBLIC void\nepoxy_glFoo(GLuint x)\n") {
		t.Error("glFoo stub not public")
	}
}

func TestStubForwardsThroughRoot(t *testing.T) {
	src := fixtureDocs(t)["src/gl_generated_dispatch.c"]
	want := `PUBLIC void
epoxy_glBarEXT(GLuint shader, const GLchar * source)
{
    if (!dispatch_table->pglBar)
        dispatch_table->pglBar = epoxy_glBar_resolver();

    dispatch_table->pglBar(shader, source);
}
`
	if !strings.Contains(src, want) {
		t.Errorf("glBarEXT stub missing:\n%s", want)
	}
	if strings.Contains(src, "pglBarEXT") || strings.Contains(src, "epoxy_glBarEXT_resolver") {
		t.Error("alias member got its own slot or resolver")
	}
	if !strings.Contains(src, "    return dispatch_table->pglGetString(name);\n") {
		t.Error("non-void stub does not return")
	}
}

func TestEmptyResolver(t *testing.T) {
	src := fixtureDocs(t)["src/gl_generated_dispatch.c"]
	want := `static PFNGLORPHANPROC
epoxy_glOrphan_resolver(void)
{
    static const enum gl_provider providers[] = {
        gl_provider_terminator
    };
    static const char *entrypoints[] = {
        NULL
    };
    return gl_provider_resolver("glOrphan", providers, entrypoints);
}
`
	if !strings.Contains(src, want) {
		t.Errorf("glOrphan resolver missing:\n%s", want)
	}
}

func TestLabelsEscaped(t *testing.T) {
	src := fixtureDocs(t)["src/gl_generated_dispatch.c"]
	for _, want := range []string{
		`    [GL_extension_GL_ARB_foo] = "GL extension \"GL_ARB_foo\"",`,
		`    [always_present] = "always present",`,
		"        case always_present:\n            if (true)\n                return epoxy_get_proc_address(entrypoints[i]);\n",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source lacks %q", want)
		}
	}
}

func TestEmitDeterministic(t *testing.T) {
	first := fixtureDocs(t)
	for range 3 {
		if diff := cmp.Diff(first, fixtureDocs(t)); diff != "" {
			t.Fatalf("output changed between runs:\n%s", diff)
		}
	}
}

func TestCQuote(t *testing.T) {
	cases := map[string]string{
		`plain`:         `"plain"`,
		`say "hi"`:      `"say \"hi\""`,
		`back\slash`:    `"back\\slash"`,
		"tab\tnewline\n": `"tab\tnewline\n"`,
		"\x01":          `"\001"`,
	}
	for in, want := range cases {
		if got := CQuote(in); got != want {
			t.Errorf("CQuote(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCopyrightLines(t *testing.T) {
	got := copyrightLines("\nCopyright (c) 2013\nLine two  \n-----\nhidden\n    ")
	want := []string{"", "Copyright (c) 2013", "Line two"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("copyrightLines (-want +got):\n%s", diff)
	}
}

func TestPlatformPrelude(t *testing.T) {
	render := func(nodes []Node) string {
		var p Printer
		p.Print(nodes...)
		return p.String()
	}
	glx := render(platformPrelude("glx"))
	want := "#include \"epoxy/gl_generated.h\"\n#include <X11/Xlib.h>\n#include <X11/Xutil.h>\n"
	if glx != want {
		t.Fatalf("glx prelude = %q", glx)
	}
	egl := render(platformPrelude("egl"))
	if egl != "#include \"epoxy/gl_generated.h\"\n#include \"EGL/eglplatform.h\"\n" {
		t.Fatalf("egl prelude = %q", egl)
	}
}
