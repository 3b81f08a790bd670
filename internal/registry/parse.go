package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"dispatchgen/internal/diag"
)

// namedTypedefs are <type name="..."> entries whose text is still emitted.
// Every other named type is a #include-style requirement the headers supply.
var namedTypedefs = map[string]bool{
	"GLhandleARB": true,
}

// DocumentName derives the target name from a registry path: "gl.xml" -> "gl".
func DocumentName(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, ".xml"); idx >= 0 {
		return base[:idx]
	}
	return base
}

// Load reads and parses the document at path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.IOReadFile, path, err)
	}
	return Parse(bytes.NewReader(data), DocumentName(path))
}

// Parse reads a registry document. name becomes Registry.Name.
func Parse(r io.Reader, name string) (*Registry, error) {
	root, err := parseTree(r)
	if err != nil {
		return nil, diag.Wrap(diag.RegMalformedXML, name, err)
	}
	if root.tag != "registry" {
		return nil, diag.Errorf(diag.RegEmptyRegistry, name, "root element is <%s>", root.tag)
	}
	reg := &Registry{Name: name}
	if c := root.child("comment"); c != nil {
		reg.Comment = c.text
	}
	reg.Typedefs = parseTypedefs(root)
	if err := parseEnums(reg, root); err != nil {
		return nil, err
	}
	if err := parseCommands(reg, root); err != nil {
		return nil, err
	}
	if err := parseFeatures(reg, root); err != nil {
		return nil, err
	}
	if err := parseExtensions(reg, root); err != nil {
		return nil, err
	}
	return reg, nil
}

func parseTypedefs(root *node) string {
	var b strings.Builder
	for _, t := range root.findAll("types/type") {
		if t.hasAttr("name") && !namedTypedefs[t.attr("name")] {
			continue
		}
		b.WriteString(t.innerText())
		b.WriteByte('\n')
	}
	return b.String()
}

func parseEnums(reg *Registry, root *node) error {
	for _, e := range root.findAll("enums/enum") {
		name := e.attr("name")
		if name == "" {
			return diag.Errorf(diag.RegMissingName, reg.Name, "<enum value=%q> has no name", e.attr("value"))
		}
		reg.addEnum(name, e.attr("value"))
	}
	return nil
}

func parseCommands(reg *Registry, root *node) error {
	reg.cmdIndex = make(map[string]int)
	for _, c := range root.findAll("commands/command") {
		proto := c.child("proto")
		nameNode := proto.child("name")
		if proto == nil || nameNode == nil {
			return diag.Errorf(diag.RegMissingName, reg.Name, "<command> without <proto><name>")
		}
		cmd := Command{
			Name:   strings.TrimSpace(nameNode.text),
			Return: strings.TrimSpace(proto.textUntil("name")),
		}
		for _, p := range c.findAll("param") {
			pn := p.child("name")
			if pn == nil {
				return diag.Errorf(diag.RegMissingName, cmd.Name, "<param> without <name>")
			}
			cmd.Params = append(cmd.Params, Param{
				Type: strings.TrimSpace(p.textUntil("name")),
				Name: strings.TrimSpace(pn.text),
			})
		}
		// Alias targets may be defined later in the document
		// (glAttachObjectARB -> glAttachShader), so they are not checked here.
		if a := c.child("alias"); a != nil {
			cmd.Alias = a.attr("name")
		}
		if _, dup := reg.cmdIndex[cmd.Name]; dup {
			return diag.Errorf(diag.RegDuplicateCmd, cmd.Name, "command defined more than once in %s", reg.Name)
		}
		reg.cmdIndex[cmd.Name] = len(reg.Commands)
		reg.Commands = append(reg.Commands, cmd)
	}
	return nil
}

func requiredCommands(owner string, n *node) ([]string, error) {
	var names []string
	for _, c := range n.findAll("require/command") {
		name := c.attr("name")
		if name == "" {
			return nil, diag.Errorf(diag.RegMissingName, owner, "<require><command> without name")
		}
		names = append(names, name)
	}
	return names, nil
}

func parseFeatures(reg *Registry, root *node) error {
	for _, f := range root.findAll("feature") {
		feat := Feature{API: f.attr("api"), Number: f.attr("number")}
		if feat.API == "" || feat.Number == "" {
			return diag.Errorf(diag.RegMissingFeatAttr, f.attr("name"), "feature needs both api and number")
		}
		cmds, err := requiredCommands(fmt.Sprintf("%s %s", feat.API, feat.Number), f)
		if err != nil {
			return err
		}
		feat.Commands = cmds
		reg.Features = append(reg.Features, feat)
	}
	return nil
}

func parseExtensions(reg *Registry, root *node) error {
	for _, e := range root.findAll("extensions/extension") {
		ext := Extension{Name: e.attr("name")}
		if ext.Name == "" {
			return diag.Errorf(diag.RegMissingName, reg.Name, "<extension> without name")
		}
		if s := e.attr("supported"); s != "" {
			ext.Supported = strings.Split(s, "|")
		}
		cmds, err := requiredCommands(ext.Name, e)
		if err != nil {
			return err
		}
		ext.Commands = cmds
		reg.Extensions = append(reg.Extensions, ext)
	}
	return nil
}
