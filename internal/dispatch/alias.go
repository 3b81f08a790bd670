package dispatch

import (
	"strings"

	"dispatchgen/internal/diag"
)

// resolveAliases compresses every alias chain onto its terminal root and
// registers each dependent function in its root's member list. Running it
// again on a resolved target changes nothing.
func (t *Target) resolveAliases() error {
	for _, f := range t.Functions() {
		if f.aliasName == "" {
			continue
		}
		root, err := t.chainRoot(f)
		if err != nil {
			return err
		}
		if err := root.addAlias(f); err != nil {
			return err
		}
	}
	return nil
}

// chainRoot follows alias references from f until a function with none.
func (t *Target) chainRoot(f *Function) (*Function, error) {
	seen := map[string]bool{f.Name: true}
	path := []string{f.Name}
	cur := f
	for cur.aliasName != "" {
		next, ok := t.funcs[cur.aliasName]
		if !ok {
			return nil, diag.Errorf(diag.AlsDangling, cur.Name, "alias of undefined function %s", cur.aliasName)
		}
		path = append(path, next.Name)
		if seen[next.Name] {
			return nil, diag.Errorf(diag.AlsCycle, f.Name, "alias chain %s", strings.Join(path, " -> "))
		}
		seen[next.Name] = true
		cur = next
	}
	return cur, nil
}

// addAlias registers member under root. Aliasing is one level deep: a root
// never aliases anything and a member never has members of its own.
func (root *Function) addAlias(member *Function) error {
	if root.aliasName != "" {
		return diag.Errorf(diag.AlsTransitive, member.Name, "alias root %s is itself an alias of %s", root.Name, root.aliasName)
	}
	if len(member.members) > 0 {
		return diag.Errorf(diag.AlsTransitive, member.Name, "aliases %s but has %d aliases of its own", root.Name, len(member.members))
	}
	if member == root {
		return diag.Errorf(diag.AlsCycle, member.Name, "function aliases itself")
	}
	if member.root == root {
		return nil
	}
	if member.root != nil {
		return diag.Errorf(diag.AlsTransitive, member.Name, "already aliased onto %s, cannot alias onto %s", member.root.Name, root.Name)
	}
	member.aliasName = root.Name
	member.root = root
	// Functions are visited in name order, but keep the list sorted for
	// callers that resolve piecemeal.
	idx := len(root.members)
	for i, m := range root.members {
		if m.Name > member.Name {
			idx = i
			break
		}
	}
	root.members = append(root.members, nil)
	copy(root.members[idx+1:], root.members[idx:])
	root.members[idx] = member
	return nil
}
