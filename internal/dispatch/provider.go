package dispatch

import (
	"strings"

	"dispatchgen/internal/diag"
)

// NamePlaceholder is substituted with the entry-point expression when a
// loader template is expanded.
const NamePlaceholder = "{name}"

// Loader is a C expression template yielding a function pointer, e.g.
// "epoxy_get_proc_address({name})".
type Loader string

// Expand substitutes the entry-point expression.
func (l Loader) Expand(name string) string {
	return strings.ReplaceAll(string(l), NamePlaceholder, name)
}

func (l Loader) validate(subject string) error {
	if !strings.Contains(string(l), NamePlaceholder) {
		return diag.Errorf(diag.PrvBadLoader, subject, "loader %q has no %s placeholder", string(l), NamePlaceholder)
	}
	return nil
}

// Provider is one way of obtaining a function pointer at runtime.
type Provider struct {
	// Label is the human-readable name, unique within a Target:
	// `Desktop OpenGL 3.0`, `GL extension "GL_ARB_foo"`.
	Label string
	// Condition is a C boolean expression evaluated at runtime.
	Condition string
	Loader    Loader
	// Token is the C enumerator derived from Label.
	Token string
	// Ordinal is the enumerator value; 0 is reserved for the terminator.
	// Set by enumeration.
	Ordinal uint16
}

// NewProvider builds a provider with its token derived from label.
func NewProvider(label, condition string, loader Loader) *Provider {
	return &Provider{
		Label:     label,
		Condition: condition,
		Loader:    loader,
		Token:     SanitizeToken(label),
	}
}

// SanitizeToken maps a label to a C identifier: spaces and dots become
// underscores, quotes are dropped.
func SanitizeToken(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch r {
		case ' ', '.':
			b.WriteByte('_')
		case '"', '\\':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sameAs reports whether two providers with one label agree on what they emit.
func (p *Provider) sameAs(other *Provider) bool {
	return p.Condition == other.Condition && p.Loader == other.Loader
}

func redefinition(label string, have, got *Provider) error {
	if have.Condition != got.Condition {
		return diag.Errorf(diag.PrvRedefined, label, "condition %q conflicts with %q", got.Condition, have.Condition)
	}
	return diag.Errorf(diag.PrvRedefined, label, "loader %q conflicts with %q", string(got.Loader), string(have.Loader))
}

// providerSet is an insertion-ordered label -> provider map. Re-adding a
// label keeps its original position.
type providerSet struct {
	order []string
	byKey map[string]*Provider
}

func (s *providerSet) add(p *Provider) error {
	if s.byKey == nil {
		s.byKey = make(map[string]*Provider)
	}
	if have, ok := s.byKey[p.Label]; ok {
		if !have.sameAs(p) {
			return redefinition(p.Label, have, p)
		}
		s.byKey[p.Label] = p
		return nil
	}
	s.order = append(s.order, p.Label)
	s.byKey[p.Label] = p
	return nil
}

func (s *providerSet) list() []*Provider {
	out := make([]*Provider, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, s.byKey[label])
	}
	return out
}

func (s *providerSet) reset() {
	s.order = nil
	s.byKey = nil
}
