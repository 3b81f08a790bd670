package dispatch

import (
	"fortio.org/safecast"

	"dispatchgen/internal/diag"
)

// enumerate walks every function's providers in name order, numbering each
// label the first time it is seen and checking that every later occurrence
// has the same condition and loader.
func (t *Target) enumerate() error {
	byLabel := make(map[string]*Provider)
	byToken := make(map[string]string)
	t.providers = t.providers[:0]
	for _, f := range t.Functions() {
		for _, p := range f.providers.list() {
			if have, ok := byLabel[p.Label]; ok {
				if !have.sameAs(p) {
					return redefinition(p.Label, have, p)
				}
				p.Ordinal = have.Ordinal
				continue
			}
			if other, ok := byToken[p.Token]; ok {
				return diag.Errorf(diag.PrvTokenCollision, p.Label, "token %s already used by %q", p.Token, other)
			}
			ord, err := safecast.Conv[uint16](len(t.providers) + 1)
			if err != nil {
				return diag.Errorf(diag.PrvTokenCollision, p.Label, "too many providers: %v", err)
			}
			p.Ordinal = ord
			byLabel[p.Label] = p
			byToken[p.Token] = p.Label
			t.providers = append(t.providers, p)
		}
	}
	return nil
}
