// Package snapshot serializes a built dispatch.Target as MessagePack so
// tooling can inspect the provider model without re-parsing C output.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"dispatchgen/internal/dispatch"
)

// SchemaVersion is bumped whenever Model changes shape.
const SchemaVersion uint16 = 1

// Model is the serialized form of a target.
type Model struct {
	Schema    uint16     `msgpack:"schema"`
	Target    string     `msgpack:"target"`
	Providers []Provider `msgpack:"providers"`
	Functions []Function `msgpack:"functions"`
}

type Provider struct {
	Ordinal   uint16 `msgpack:"ordinal"`
	Label     string `msgpack:"label"`
	Token     string `msgpack:"token"`
	Condition string `msgpack:"condition"`
	Loader    string `msgpack:"loader"`
}

type Param struct {
	Type string `msgpack:"type"`
	Name string `msgpack:"name"`
}

// Entry references a provider by ordinal.
type Entry struct {
	Provider   uint16 `msgpack:"provider"`
	EntryPoint string `msgpack:"entry_point"`
}

type Function struct {
	Name    string   `msgpack:"name"`
	Return  string   `msgpack:"return"`
	Params  []Param  `msgpack:"params"`
	Alias   string   `msgpack:"alias,omitempty"`
	Wrapped bool     `msgpack:"wrapped,omitempty"`
	Members []string `msgpack:"members,omitempty"`
	Entries []Entry  `msgpack:"entries,omitempty"`
}

// FromTarget captures t. Functions keep name order and providers keep
// ordinal order.
func FromTarget(t *dispatch.Target) *Model {
	m := &Model{Schema: SchemaVersion, Target: t.Name}
	for _, p := range t.Providers() {
		m.Providers = append(m.Providers, Provider{
			Ordinal:   p.Ordinal,
			Label:     p.Label,
			Token:     p.Token,
			Condition: p.Condition,
			Loader:    string(p.Loader),
		})
	}
	for _, f := range t.Functions() {
		rec := Function{
			Name:    f.Name,
			Return:  f.Return,
			Alias:   f.AliasName(),
			Wrapped: f.Wrapped,
		}
		for _, p := range f.Params {
			rec.Params = append(rec.Params, Param{Type: p.Type, Name: p.Name})
		}
		for _, mem := range f.Members() {
			rec.Members = append(rec.Members, mem.Name)
		}
		for _, e := range f.ResolverEntries() {
			rec.Entries = append(rec.Entries, Entry{Provider: e.Provider.Ordinal, EntryPoint: e.EntryPoint})
		}
		m.Functions = append(m.Functions, rec)
	}
	return m
}

// Encode writes m to w.
func Encode(w io.Writer, m *Model) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(m)
}

// Marshal is Encode into a byte slice.
func Marshal(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a model and rejects other schema versions.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	if m.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", m.Schema, SchemaVersion)
	}
	return &m, nil
}

// Provider looks up a provider by ordinal.
func (m *Model) Provider(ordinal uint16) (Provider, bool) {
	for _, p := range m.Providers {
		if p.Ordinal == ordinal {
			return p, true
		}
	}
	return Provider{}, false
}

// Read decodes the model stored at path.
func Read(path string) (*Model, error) {
	// #nosec G304 -- path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
