// Package order sorts surviving contributions into their apply order.
// Ordering combines three signals: explicit before/after edges, a numeric
// order value (lower applies earlier), and discovery order as the stable
// tiebreaker. Cycles in the before/after graph are fatal.
package order

import (
	"sort"

	"github.com/stratumcfg/stratum/pkg/errors"
	"github.com/stratumcfg/stratum/pkg/manifest"
	stringpool "github.com/stratumcfg/stratum/pkg/strings"
)

// DefaultOrder is assumed for contributions without a numeric order hint.
const DefaultOrder = 0

type node struct {
	id       string
	order    int
	index    int // discovery position, stable tiebreaker
	incoming int
	outgoing []*node
}

// Sort returns the contributions in apply order. Edges pointing at unknown
// identifiers are dropped: metadata often references optional contributions
// that were filtered out or never discovered.
func Sort(ids []string, meta *manifest.Metadata) ([]string, error) {
	if len(ids) < 2 {
		return ids, nil
	}

	nodes := make(map[string]*node, len(ids))
	all := make([]*node, 0, len(ids))
	for i, id := range ids {
		n := &node{id: id, index: i, order: DefaultOrder}
		if meta != nil {
			n.order = meta.GetInt(id, manifest.AttrOrder, DefaultOrder)
		}
		nodes[id] = n
		all = append(all, n)
	}

	addEdge := func(earlier, later *node) {
		earlier.outgoing = append(earlier.outgoing, later)
		later.incoming++
	}
	if meta != nil {
		for _, n := range all {
			for _, target := range meta.GetSet(n.id, manifest.AttrBefore) {
				if t, ok := nodes[target]; ok {
					addEdge(n, t)
				}
			}
			for _, target := range meta.GetSet(n.id, manifest.AttrAfter) {
				if t, ok := nodes[target]; ok {
					addEdge(t, n)
				}
			}
		}
	}

	// Kahn's algorithm; the ready set drains by (order, discovery index) so
	// numeric priority decides between unconstrained peers and the original
	// order breaks remaining ties.
	ready := make([]*node, 0, len(all))
	for _, n := range all {
		if n.incoming == 0 {
			ready = append(ready, n)
		}
	}

	out := make([]string, 0, len(all))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			if ready[i].order != ready[j].order {
				return ready[i].order < ready[j].order
			}
			return ready[i].index < ready[j].index
		})
		n := ready[0]
		ready = ready[1:]
		out = append(out, n.id)
		for _, next := range n.outgoing {
			next.incoming--
			if next.incoming == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(out) != len(all) {
		return nil, cycleError(all)
	}
	return out, nil
}

// cycleError isolates the cycle members by repeatedly trimming nodes whose
// remaining edges all leave the unsorted remainder, then names what is left.
func cycleError(all []*node) error {
	remaining := make(map[string]*node)
	for _, n := range all {
		if n.incoming > 0 {
			remaining[n.id] = n
		}
	}

	for changed := true; changed; {
		changed = false
		for id, n := range remaining {
			out := 0
			for _, next := range n.outgoing {
				if _, ok := remaining[next.id]; ok {
					out++
				}
			}
			if out == 0 {
				delete(remaining, id)
				changed = true
			}
		}
	}

	members := make([]string, 0, len(remaining))
	for id := range remaining {
		members = append(members, id)
	}
	sort.Strings(members)

	b := stringpool.GetBuilder(stringpool.Small)
	defer stringpool.PutBuilder(b, stringpool.Small)
	b.WriteString("ordering cycle between contributions: ")
	for i, id := range members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(id)
	}
	return errors.New(errors.ErrorTypeOrdering, b.String())
}
