package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dispatchgen/internal/diag"
)

func loadFixture(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load(filepath.Join("testdata", "gl.xml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

func TestLoadFixture(t *testing.T) {
	reg := loadFixture(t)
	if reg.Name != "gl" {
		t.Fatalf("Name = %q, want gl", reg.Name)
	}
	if len(reg.Commands) != 9 {
		t.Fatalf("len(Commands) = %d, want 9", len(reg.Commands))
	}
	if len(reg.Features) != 3 || len(reg.Extensions) != 4 {
		t.Fatalf("features=%d extensions=%d", len(reg.Features), len(reg.Extensions))
	}
}

func TestCommandSignatures(t *testing.T) {
	reg := loadFixture(t)
	cases := []struct {
		name string
		want Command
	}{
		{"glGetString", Command{
			Name:   "glGetString",
			Return: "const GLubyte *",
			Params: []Param{{Type: "GLenum", Name: "name"}},
		}},
		{"glBarEXT", Command{
			Name:   "glBarEXT",
			Return: "void",
			Params: []Param{{Type: "GLuint", Name: "shader"}, {Type: "const GLchar *", Name: "source"}},
			Alias:  "glBarARB",
		}},
		{"glEnd", Command{Name: "glEnd", Return: "void"}},
		{"glOrphan", Command{Name: "glOrphan", Return: "GLuint"}},
	}
	for _, tc := range cases {
		got, ok := reg.Command(tc.name)
		if !ok {
			t.Fatalf("command %s missing", tc.name)
		}
		if diff := cmp.Diff(tc.want, *got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestEnumsKeepDocumentOrder(t *testing.T) {
	reg := loadFixture(t)
	want := []Enum{
		{Name: "GL_FALSE", Value: "0"},
		{Name: "GL_TRUE", Value: "1"},
		{Name: "GL_EXTENSIONS", Value: "0x1F03"},
		{Name: "GL_POINTS", Value: "0x0000"},
	}
	if diff := cmp.Diff(want, reg.Enums); diff != "" {
		t.Fatalf("enums (-want +got):\n%s", diff)
	}
	if got := reg.MaxEnumNameLen(); got != len("GL_EXTENSIONS") {
		t.Fatalf("MaxEnumNameLen = %d", got)
	}
}

func TestEnumRedefinitionKeepsPosition(t *testing.T) {
	doc := `<registry><enums><enum name="A" value="1"/><enum name="B" value="2"/><enum name="A" value="3"/></enums></registry>`
	reg, err := Parse(strings.NewReader(doc), "t")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Enum{{Name: "A", Value: "3"}, {Name: "B", Value: "2"}}
	if diff := cmp.Diff(want, reg.Enums); diff != "" {
		t.Fatalf("enums (-want +got):\n%s", diff)
	}
}

func TestTypedefsSkipNamedRequirements(t *testing.T) {
	reg := loadFixture(t)
	if strings.Contains(reg.Typedefs, "khrplatform") {
		t.Fatalf("named requirement leaked into typedefs:\n%s", reg.Typedefs)
	}
	for _, want := range []string{"typedef unsigned int GLenum;\n", "typedef char GLchar;\n", "typedef unsigned int GLhandleARB;"} {
		if !strings.Contains(reg.Typedefs, want) {
			t.Fatalf("typedefs missing %q:\n%s", want, reg.Typedefs)
		}
	}
}

func TestFeaturesAndExtensions(t *testing.T) {
	reg := loadFixture(t)
	if diff := cmp.Diff(Feature{API: "gl", Number: "2.0", Commands: []string{"glBar"}}, reg.Features[1]); diff != "" {
		t.Fatalf("feature (-want +got):\n%s", diff)
	}
	ext := reg.Extensions[0]
	if diff := cmp.Diff([]string{"gl", "glcore"}, ext.Supported); diff != "" {
		t.Fatalf("supported (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		code diag.Code
	}{
		{"malformed", `<registry><commands>`, diag.RegMalformedXML},
		{"wrong root", `<html/>`, diag.RegEmptyRegistry},
		{"param without name", `<registry><commands><command><proto>void <name>f</name></proto><param>int</param></command></commands></registry>`, diag.RegMissingName},
		{"duplicate command", `<registry><commands><command><proto>void <name>f</name></proto></command><command><proto>void <name>f</name></proto></command></commands></registry>`, diag.RegDuplicateCmd},
		{"feature without number", `<registry><feature api="gl"/></registry>`, diag.RegMissingFeatAttr},
	}
	for _, tc := range cases {
		_, err := Parse(strings.NewReader(tc.doc), "t")
		if !errors.Is(err, tc.code) {
			t.Fatalf("%s: err = %v, want code %s", tc.name, err, tc.code.ID())
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	if !errors.Is(err, os.ErrNotExist) || !errors.Is(err, diag.IOReadFile) {
		t.Fatalf("err = %v", err)
	}
}

func TestDocumentName(t *testing.T) {
	cases := map[string]string{
		"registry/gl.xml": "gl",
		"/abs/glx.xml":    "glx",
		"egl":             "egl",
	}
	for in, want := range cases {
		if got := DocumentName(in); got != want {
			t.Fatalf("DocumentName(%q) = %q, want %q", in, got, want)
		}
	}
}
