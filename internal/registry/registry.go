// Package registry loads a Khronos-style API registry document into plain
// data: typedef text, enumerated constants, command signatures, and the
// feature and extension blocks that require those commands.
//
// The package does no interpretation. Deciding which mechanism provides a
// command at runtime is internal/dispatch's job.
package registry

// Param is one command parameter. Type keeps multi-token spellings verbatim
// (e.g. "const GLchar *").
type Param struct {
	Type string
	Name string
}

// Command is one <command> entry.
type Command struct {
	Name   string
	Return string
	Params []Param
	Alias  string // name of the command this one is an alias of, if any
}

// Enum is one <enum> constant; Value is the literal text from the document.
type Enum struct {
	Name  string
	Value string
}

// Feature is a versioned <feature> block.
type Feature struct {
	API      string // gl, gles1, gles2, glx, egl, wgl
	Number   string // "1.0", "4.5"
	Commands []string
}

// Extension is an <extension> block.
type Extension struct {
	Name      string
	Supported []string // split on '|'
	Commands  []string
}

// Registry holds everything extracted from one document.
type Registry struct {
	Name       string // document base name: gl, glx, egl...
	Comment    string
	Typedefs   string
	Enums      []Enum
	Commands   []Command
	Features   []Feature
	Extensions []Extension

	enumIndex map[string]int
	cmdIndex  map[string]int
}

// Command looks a command up by name.
func (r *Registry) Command(name string) (*Command, bool) {
	if r == nil {
		return nil, false
	}
	idx, ok := r.cmdIndex[name]
	if !ok {
		return nil, false
	}
	return &r.Commands[idx], true
}

// MaxEnumNameLen is the longest constant name, used for column alignment.
func (r *Registry) MaxEnumNameLen() int {
	longest := 1
	for _, e := range r.Enums {
		if len(e.Name) > longest {
			longest = len(e.Name)
		}
	}
	return longest
}

func (r *Registry) addEnum(name, value string) {
	if r.enumIndex == nil {
		r.enumIndex = make(map[string]int)
	}
	if idx, ok := r.enumIndex[name]; ok {
		r.Enums[idx].Value = value
		return
	}
	r.enumIndex[name] = len(r.Enums)
	r.Enums = append(r.Enums, Enum{Name: name, Value: value})
}
