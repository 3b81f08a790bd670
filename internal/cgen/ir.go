// Package cgen renders a dispatch.Target as C source text.
//
// Builders (PublicHeader and VtableDefines in header.go, DispatchSource in
// source.go) assemble a File out of the declaration and statement nodes
// below; Printer turns a File into text.
// Nothing here iterates a map, so the same Target always prints the same
// bytes.
package cgen

// Node is a top-level declaration.
type Node interface {
	printNode(p *Printer)
}

// Stmt is a statement inside a function body.
type Stmt interface {
	printStmt(p *Printer, depth int)
}

// File is an ordered list of top-level nodes.
type File struct {
	Path  string // relative output path
	Nodes []Node
}

func (f *File) add(nodes ...Node) {
	f.Nodes = append(f.Nodes, nodes...)
}

// Comment is a block comment; one line prints as /* text */.
type Comment struct {
	Lines []string
}

// Blank is an empty line.
type Blank struct{}

// Raw is copied verbatim, without an added newline.
type Raw struct {
	Text string
}

// Line is a single line of text.
type Line struct {
	Text string
}

// Pragma is a #pragma directive.
type Pragma struct {
	Text string
}

// Include is an #include; System selects <> over "".
type Include struct {
	Path   string
	System bool
}

// Define is `#define Name Value` with Name padded to Width columns.
type Define struct {
	Name  string
	Value string
	Width int
}

// Typedef is `typedef Type Name;`.
type Typedef struct {
	Type string
	Name string
}

// FuncPtrTypedef is `typedef Ret (*Name)(Params);`.
type FuncPtrTypedef struct {
	Ret    string
	Name   string
	Params string
}

// Prototype is a function declaration.
type Prototype struct {
	Ret    string
	Name   string
	Params string
}

// Field is a struct member.
type Field struct {
	Type string
	Name string
}

// Struct is a struct definition.
type Struct struct {
	Name   string
	Fields []Field
}

// EnumMember is one enumerator; Value may be empty.
type EnumMember struct {
	Name  string
	Value string
}

// Enum is an enum definition.
type Enum struct {
	Name    string
	Members []EnumMember
}

// IndexedString is a designated initializer `[Index] = "Value"`.
type IndexedString struct {
	Index string
	Value string
}

// StringTable is `Decl[] = { [idx] = "str", ... };`.
type StringTable struct {
	Decl    string
	Entries []IndexedString
}

// Func is a function definition. The return type line carries Storage;
// with WrapParams each parameter after the first goes on its own line,
// aligned under the first.
type Func struct {
	Storage    string // "static", "PUBLIC" or ""
	Ret        string
	Name       string
	Params     []string
	WrapParams bool
	Body       []Stmt
}

// Statements.

// Code is one statement line; empty Text prints a blank line.
type Code struct {
	Text string
}

// If is an if without else. A single-statement body prints unbraced.
type If struct {
	Cond string
	Then []Stmt
}

// Return is `return Expr;`.
type Return struct {
	Expr string
}

// For is a braced for loop.
type For struct {
	Header string
	Body   []Stmt
}

// Case is one switch arm.
type Case struct {
	Label string
	Body  []Stmt
}

// Switch prints case labels at the switch's own depth.
type Switch struct {
	Expr  string
	Cases []Case
}

// ArrayInit is `Decl = { elem, ..., Last };`. Last prints without a comma.
type ArrayInit struct {
	Decl  string
	Elems []string
	Last  string
}
