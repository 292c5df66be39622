package cte

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Registry is the ordered list of CTEs attached to one statement. Names are
// unique within a registry and the order is the WITH list order. The
// registry does not reorder by dependency; WITH RECURSIVE lets a CTE refer
// to one listed after it.
type Registry struct {
	ctes []*CTE
}

// Len returns the number of attached CTEs.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ctes)
}

// CTEs returns the attached CTEs in WITH order.
func (r *Registry) CTEs() []*CTE {
	if r == nil {
		return nil
	}
	return append([]*CTE(nil), r.ctes...)
}

// Lookup returns the attached CTE with the given name, or nil.
func (r *Registry) Lookup(name string) *CTE {
	if r == nil {
		return nil
	}
	for _, c := range r.ctes {
		if c.name == name {
			return c
		}
	}
	return nil
}

// Clone returns a copy sharing the CTEs but not the list.
func (r *Registry) Clone() *Registry {
	return &Registry{ctes: r.CTEs()}
}

// Attach appends ctes in order. A CTE already present is moved to the end.
// A different CTE with the name of an attached one is rejected, and the
// registry is left unchanged.
func (r *Registry) Attach(ctes ...*CTE) error {
	next := r.CTEs()
	for _, c := range ctes {
		next = remove(next, c)
		for _, existing := range next {
			if existing.name == c.name {
				return errors.Wrapf(ErrNameCollision, "Found two or more CTEs named '%s'", c.name)
			}
		}
		next = append(next, c)
	}
	r.ctes = next
	return nil
}

// MergeFrom appends the CTEs of other that are not already attached. A CTE
// identical to an attached one is skipped. A different CTE sharing an
// attached name is an error unless rename is set, in which case it gets
// the first free name of the form name_2, name_3, ... The returned map
// holds the renames; CTEs of other that refer to a renamed CTE are
// appended as relabeled copies, and the caller must relabel whatever else
// refers to them.
// Renaming fails with ErrNameCollision when an incoming CTE, or one nested
// in its body, is written as raw SQL. The registry is then left unchanged.
func (r *Registry) MergeFrom(other *Registry, rename bool) (map[string]string, error) {
	incoming := other.CTEs()
	changes := map[string]string{}
	taken := map[string]bool{}
	for _, c := range r.ctes {
		taken[c.name] = true
	}
	for _, c := range incoming {
		taken[c.name] = true
	}

	for _, c := range incoming {
		existing := r.Lookup(c.name)
		if existing == nil || existing == c {
			continue
		}
		if !rename {
			return nil, errors.Wrapf(ErrNameCollision, "Found two or more CTEs named '%s'", c.name)
		}
		to := freeName(c.name, taken)
		taken[to] = true
		changes[c.name] = to
	}

	if len(changes) > 0 {
		// Raw SQL cannot be relabeled, so a raw body on the incoming side
		// would keep reading the attached CTE of the old name.
		for _, c := range incoming {
			if r.contains(c) {
				continue
			}
			if raw := rawCTE(c, map[*CTE]bool{}); raw != nil {
				return nil, errors.Wrapf(ErrNameCollision,
					"Found two or more CTEs named '%s' and raw CTE '%s' cannot be relabeled",
					firstKey(changes), raw.name)
			}
		}
	}

	for _, c := range incoming {
		if r.contains(c) {
			continue
		}
		if len(changes) > 0 {
			c = c.relabeled(changes)
		}
		r.ctes = append(r.ctes, c)
	}
	if len(changes) == 0 {
		return nil, nil
	}
	return changes, nil
}

// rawCTE returns c, or a CTE attached somewhere inside its body, when its
// body is raw SQL.
func rawCTE(c *CTE, seen map[*CTE]bool) *CTE {
	if seen[c] {
		return nil
	}
	seen[c] = true
	switch b := c.body.(type) {
	case *Raw:
		return c
	case *Query:
		for _, inner := range b.ctes.CTEs() {
			if raw := rawCTE(inner, seen); raw != nil {
				return raw
			}
		}
	}
	return nil
}

func firstKey(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys[0]
}

func (r *Registry) contains(c *CTE) bool {
	for _, existing := range r.ctes {
		if existing == c {
			return true
		}
	}
	return false
}

func remove(ctes []*CTE, c *CTE) []*CTE {
	out := ctes[:0:0]
	for _, existing := range ctes {
		if existing != c {
			out = append(out, existing)
		}
	}
	return out
}

func freeName(name string, taken map[string]bool) string {
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
