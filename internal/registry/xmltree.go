package registry

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// node is a minimal element tree with ElementTree-style text/tail so that
// mixed content such as `const <ptype>GLchar</ptype> *<name>x</name>` can be
// reassembled verbatim.
type node struct {
	tag      string
	attrs    map[string]string
	text     string // character data before the first child
	tail     string // character data after this element's end tag
	children []*node
}

func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{tag: t.Name.Local}
			if len(t.Attr) > 0 {
				n.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			if n := len(cur.children); n > 0 {
				cur.children[n-1].tail += string(t)
			} else {
				cur.text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed element %s", stack[len(stack)-1].tag)
	}
	return root, nil
}

func (n *node) attr(name string) string {
	if n == nil || n.attrs == nil {
		return ""
	}
	return n.attrs[name]
}

func (n *node) hasAttr(name string) bool {
	if n == nil || n.attrs == nil {
		return false
	}
	_, ok := n.attrs[name]
	return ok
}

// child returns the first direct child with tag.
func (n *node) child(tag string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// findAll returns descendants along a slash-separated path of tags,
// e.g. "require/command".
func (n *node) findAll(path string) []*node {
	if n == nil {
		return nil
	}
	level := []*node{n}
	for _, seg := range strings.Split(path, "/") {
		var next []*node
		for _, p := range level {
			for _, c := range p.children {
				if c.tag == seg {
					next = append(next, c)
				}
			}
		}
		level = next
	}
	return level
}

// textUntil concatenates the element's own text and the text and tails of
// its direct children, stopping at the first child tagged stop.
func (n *node) textUntil(stop string) string {
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		if c.tag == stop {
			break
		}
		b.WriteString(c.text)
		b.WriteString(c.tail)
	}
	return b.String()
}

// innerText concatenates text, children text and tails (one level deep).
func (n *node) innerText() string {
	var b strings.Builder
	b.WriteString(n.text)
	for _, c := range n.children {
		b.WriteString(c.text)
		b.WriteString(c.tail)
	}
	return b.String()
}
