package diff

import (
	"math"

	"github.com/Duck-and-Squid/arrangement-hub/internal/xmltree"
)

// costInf marks subtree pairs that must never be matched (differing tags).
// Kept well below MaxInt so saturating addition cannot overflow.
const costInf = math.MaxInt / 4

// addCost adds two costs, saturating at the infinity sentinel.
func addCost(a, b int) int {
	if a >= costInf || b >= costInf {
		return costInf
	}
	return a + b
}

type side int

const (
	sideOld side = iota
	sideNew
)

type subtreeKey struct {
	side side
	id   int
}

type pairKey struct {
	oldID int
	newID int
}

// engine holds the memoization state for one diff computation. Both trees
// number their nodes from zero, so subtree costs key on (side, id) while
// pair costs key on (oldID, newID), which is unambiguous because the pair
// order is fixed. Nothing survives past the computation.
type engine struct {
	subtree map[subtreeKey]int
	pair    map[pairKey]int
}

func newEngine() *engine {
	return &engine{
		subtree: make(map[subtreeKey]int),
		pair:    make(map[pairKey]int),
	}
}

// subtreeCost is the cost of inserting or deleting the whole subtree: one
// unit for the element, one per attribute, one for nonempty direct text,
// plus the cost of every element child.
func (e *engine) subtreeCost(n *xmltree.UNode, s side) int {
	key := subtreeKey{side: s, id: n.ID}
	if c, ok := e.subtree[key]; ok {
		return c
	}

	cost := 1 + len(n.Attrs)
	if n.Text != "" {
		cost++
	}
	for _, child := range n.Children {
		cost += e.subtreeCost(child, s)
	}

	e.subtree[key] = cost
	return cost
}

// computeCost estimates the edit distance for transforming subtree a into
// subtree b. Elements with different tags are never matched.
func (e *engine) computeCost(a, b *xmltree.UNode) int {
	if a.Name != b.Name {
		return costInf
	}

	key := pairKey{oldID: a.ID, newID: b.ID}
	if c, ok := e.pair[key]; ok {
		return c
	}

	cost := e.attrCost(a, b)
	if a.Text != b.Text {
		cost++
	}
	matrix := e.alignChildren(a.Children, b.Children)
	cost = addCost(cost, matrix[len(a.Children)][len(b.Children)])

	e.pair[key] = cost
	return cost
}

// attrCost counts one unit per attribute missing on either side and one per
// shared key whose values differ.
func (e *engine) attrCost(a, b *xmltree.UNode) int {
	cost := 0
	for k, oldVal := range a.Attrs {
		newVal, ok := b.Attrs[k]
		if !ok || oldVal != newVal {
			cost++
		}
	}
	for k := range b.Attrs {
		if _, ok := a.Attrs[k]; !ok {
			cost++
		}
	}
	return cost
}

// alignChildren fills the order-preserving edit-distance matrix for two
// sibling lists. Cell [i][j] is the cheapest way to turn the first i old
// children into the first j new children; matching a pair recurses into
// computeCost.
func (e *engine) alignChildren(oldChildren, newChildren []*xmltree.UNode) [][]int {
	m, n := len(oldChildren), len(newChildren)

	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		d[i][0] = addCost(d[i-1][0], e.subtreeCost(oldChildren[i-1], sideOld))
	}
	for j := 1; j <= n; j++ {
		d[0][j] = addCost(d[0][j-1], e.subtreeCost(newChildren[j-1], sideNew))
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			best := addCost(d[i-1][j-1], e.computeCost(oldChildren[i-1], newChildren[j-1]))
			if del := addCost(d[i-1][j], e.subtreeCost(oldChildren[i-1], sideOld)); del < best {
				best = del
			}
			if ins := addCost(d[i][j-1], e.subtreeCost(newChildren[j-1], sideNew)); ins < best {
				best = ins
			}
			d[i][j] = best
		}
	}

	return d
}
