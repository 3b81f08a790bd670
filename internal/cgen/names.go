package cgen

import (
	"strings"

	"dispatchgen/internal/dispatch"
)

// Output paths relative to the output directory.
const (
	IncludeDir = "include/epoxy"
	SourceDir  = "src"
)

func headerPath(target string) string  { return IncludeDir + "/" + target + "_generated.h" }
func definesPath(target string) string { return IncludeDir + "/" + target + "_generated_vtable_defines.h" }
func sourcePath(target string) string  { return SourceDir + "/" + target + "_generated_dispatch.c" }

func providerEnum(target string) string { return target + "_provider" }

func terminator(target string) string { return target + "_provider_terminator" }

func providerResolver(target string) string { return target + "_provider_resolver" }

func publicName(name string) string { return "epoxy_" + name }

func resolverName(name string) string { return "epoxy_" + name + "_resolver" }

func slot(root string) string { return "dispatch_table->p" + root }

// stubName is the emitted definition name; wrapped functions give the
// public name up to a hand-written wrapper.
func stubName(f *dispatch.Function) string {
	if f.Wrapped {
		return publicName(f.Name) + "_unwrapped"
	}
	return publicName(f.Name)
}

// copyrightLines keeps the registry comment up to the first ruler line.
func copyrightLines(comment string) []string {
	var out []string
	for _, line := range strings.Split(comment, "\n") {
		if strings.Contains(line, "-----") {
			break
		}
		out = append(out, strings.TrimRight(line, " \t\r"))
	}
	// A comment ending without a ruler still carries the indentation that
	// preceded its closing tag.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func banner(kind, comment string) Comment {
	lines := []string{
		"GL dispatch " + kind + ".",
		"This is code-generated from the GL API XML files from Khronos.",
	}
	return Comment{Lines: append(lines, copyrightLines(comment)...)}
}
