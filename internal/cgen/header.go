package cgen

import "dispatchgen/internal/dispatch"

// khronosTypedefs are the khrplatform.h integer types the registry
// references but never defines.
var khronosTypedefs = []Typedef{
	{"int8_t", "khronos_int8_t"},
	{"int16_t", "khronos_int16_t"},
	{"int32_t", "khronos_int32_t"},
	{"int64_t", "khronos_int64_t"},
	{"uint8_t", "khronos_uint8_t"},
	{"uint16_t", "khronos_uint16_t"},
	{"uint32_t", "khronos_uint32_t"},
	{"uint64_t", "khronos_uint64_t"},
	{"float", "khronos_float_t"},
	{"intptr_t", "khronos_intptr_t"},
	{"ptrdiff_t", "khronos_ssize_t"},
	{"uint64_t", "khronos_utime_nanoseconds_t"},
	{"int64_t", "khronos_stime_nanoseconds_t"},
}

// headerPreamble is the banner, include guard and standard includes every
// generated header starts with.
func headerPreamble(t *dispatch.Target) []Node {
	return []Node{
		banner("header", t.Comment),
		Blank{},
		Pragma{Text: "once"},
		Include{Path: "inttypes.h", System: true},
		Include{Path: "stddef.h", System: true},
		Blank{},
	}
}

// platformPrelude is what a target's typedef text depends on.
func platformPrelude(target string) []Node {
	var out []Node
	switch target {
	case "gl":
		for _, td := range khronosTypedefs {
			out = append(out, td)
		}
	default:
		out = append(out, Include{Path: "epoxy/gl_generated.h"})
		switch target {
		case "glx":
			out = append(out,
				Include{Path: "X11/Xlib.h", System: true},
				Include{Path: "X11/Xutil.h", System: true})
		case "egl":
			out = append(out, Include{Path: "EGL/eglplatform.h"})
		case "wgl":
			out = append(out, Include{Path: "windows.h", System: true})
		}
	}
	return out
}

// PublicHeader declares the target's types, constants, pointer typedefs
// and public prototypes.
func PublicHeader(t *dispatch.Target) *File {
	f := &File{Path: headerPath(t.Name)}
	f.add(headerPreamble(t)...)
	f.add(platformPrelude(t.Name)...)
	f.add(Raw{Text: t.Typedefs}, Blank{})

	for _, e := range t.Enums {
		f.add(Define{Name: e.Name, Value: e.Value, Width: t.EnumWidth + 3})
	}
	f.add(Blank{})

	funcs := t.Functions()
	for _, fn := range funcs {
		f.add(FuncPtrTypedef{Ret: fn.Return, Name: fn.PtrType, Params: fn.ArgsDecl()})
	}
	for _, fn := range funcs {
		f.add(Prototype{Ret: fn.Return, Name: publicName(fn.Name), Params: fn.ArgsDecl()}, Blank{})
	}
	return f
}

// VtableDefines maps each bare API name onto its epoxy_ entry point.
func VtableDefines(t *dispatch.Target) *File {
	f := &File{Path: definesPath(t.Name)}
	f.add(headerPreamble(t)...)
	for _, fn := range t.Functions() {
		f.add(Define{Name: fn.Name, Value: publicName(fn.Name)})
	}
	return f
}
