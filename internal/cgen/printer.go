package cgen

import (
	"fmt"
	"strings"
)

const indentUnit = "    "

// Printer renders nodes into C text.
type Printer struct {
	buf strings.Builder
}

// Render prints f and returns the text.
func Render(f *File) string {
	var p Printer
	p.Print(f.Nodes...)
	return p.String()
}

// Print appends nodes.
func (p *Printer) Print(nodes ...Node) {
	for _, n := range nodes {
		n.printNode(p)
	}
}

func (p *Printer) String() string { return p.buf.String() }

func (p *Printer) line(depth int, text string) {
	if text != "" {
		p.buf.WriteString(strings.Repeat(indentUnit, depth))
		p.buf.WriteString(text)
	}
	p.buf.WriteByte('\n')
}

func (p *Printer) stmts(depth int, body []Stmt) {
	for _, s := range body {
		s.printStmt(p, depth)
	}
}

func (c Comment) printNode(p *Printer) {
	switch len(c.Lines) {
	case 0:
		return
	case 1:
		p.line(0, "/* "+c.Lines[0]+" */")
		return
	}
	p.line(0, "/* "+c.Lines[0])
	for _, l := range c.Lines[1:] {
		p.line(0, strings.TrimRight(" * "+l, " "))
	}
	p.line(0, " */")
}

func (Blank) printNode(p *Printer) { p.buf.WriteByte('\n') }

func (r Raw) printNode(p *Printer) { p.buf.WriteString(r.Text) }

func (l Line) printNode(p *Printer) { p.line(0, l.Text) }

func (pr Pragma) printNode(p *Printer) { p.line(0, "#pragma "+pr.Text) }

func (i Include) printNode(p *Printer) {
	if i.System {
		p.line(0, "#include <"+i.Path+">")
		return
	}
	p.line(0, "#include \""+i.Path+"\"")
}

func (d Define) printNode(p *Printer) {
	name := d.Name
	if pad := d.Width - len(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	} else if d.Value != "" {
		name += " "
	}
	p.line(0, strings.TrimRight("#define "+name+d.Value, " "))
}

func (t Typedef) printNode(p *Printer) {
	p.line(0, fmt.Sprintf("typedef %s %s;", t.Type, t.Name))
}

func (t FuncPtrTypedef) printNode(p *Printer) {
	p.line(0, fmt.Sprintf("typedef %s (*%s)(%s);", t.Ret, t.Name, t.Params))
}

func (pr Prototype) printNode(p *Printer) {
	p.line(0, fmt.Sprintf("%s %s(%s);", pr.Ret, pr.Name, pr.Params))
}

func (s Struct) printNode(p *Printer) {
	p.line(0, "struct "+s.Name+" {")
	for _, f := range s.Fields {
		p.line(1, f.Type+" "+f.Name+";")
	}
	p.line(0, "};")
}

func (e Enum) printNode(p *Printer) {
	p.line(0, "enum "+e.Name+" {")
	for _, m := range e.Members {
		if m.Value != "" {
			p.line(1, m.Name+" = "+m.Value+",")
			continue
		}
		p.line(1, m.Name+",")
	}
	p.line(0, "};")
}

func (t StringTable) printNode(p *Printer) {
	p.line(0, t.Decl+"[] = {")
	for _, e := range t.Entries {
		p.line(1, fmt.Sprintf("[%s] = %s,", e.Index, CQuote(e.Value)))
	}
	p.line(0, "};")
}

func (f Func) printNode(p *Printer) {
	ret := f.Ret
	if f.Storage != "" {
		ret = f.Storage + " " + ret
	}
	params := f.Params
	if len(params) == 0 {
		params = []string{"void"}
	}
	if f.WrapParams && len(params) > 1 {
		// Return type and name share a line so continuation lines can align.
		head := ret
		if !strings.HasSuffix(head, "*") {
			head += " "
		}
		head += f.Name + "("
		p.line(0, head+params[0]+",")
		pad := strings.Repeat(" ", len(head))
		for i, param := range params[1:] {
			sep := ","
			if i == len(params)-2 {
				sep = ")"
			}
			p.line(0, pad+param+sep)
		}
	} else {
		p.line(0, ret)
		p.line(0, f.Name+"("+strings.Join(params, ", ")+")")
	}
	p.line(0, "{")
	p.stmts(1, f.Body)
	p.line(0, "}")
}

func (c Code) printStmt(p *Printer, depth int) { p.line(depth, c.Text) }

func (i If) printStmt(p *Printer, depth int) {
	if len(i.Then) == 1 {
		p.line(depth, "if ("+i.Cond+")")
		p.stmts(depth+1, i.Then)
		return
	}
	p.line(depth, "if ("+i.Cond+") {")
	p.stmts(depth+1, i.Then)
	p.line(depth, "}")
}

func (r Return) printStmt(p *Printer, depth int) {
	if r.Expr == "" {
		p.line(depth, "return;")
		return
	}
	p.line(depth, "return "+r.Expr+";")
}

func (f For) printStmt(p *Printer, depth int) {
	p.line(depth, "for ("+f.Header+") {")
	p.stmts(depth+1, f.Body)
	p.line(depth, "}")
}

func (s Switch) printStmt(p *Printer, depth int) {
	p.line(depth, "switch ("+s.Expr+") {")
	for _, c := range s.Cases {
		p.line(depth, "case "+c.Label+":")
		p.stmts(depth+1, c.Body)
	}
	p.line(depth, "}")
}

func (a ArrayInit) printStmt(p *Printer, depth int) {
	p.line(depth, a.Decl+" = {")
	for _, e := range a.Elems {
		p.line(depth+1, e+",")
	}
	if a.Last != "" {
		p.line(depth+1, a.Last)
	}
	p.line(depth, "};")
}

// CQuote renders s as a C string literal.
func CQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, "\\%03o", c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
