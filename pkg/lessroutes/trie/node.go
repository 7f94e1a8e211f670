package trie

import "math"

// noColor is the reserved color meaning "uncolored / no gateway".
const noColor = 0

// noDecision is the sentinel stored in node.decision meaning "inherit,
// don't emit a route here".
const noDecision = -1

// node is a binary-trie node. A node with any child has color == noColor; a
// node with color != noColor has no children (invariant 1, checked in dp).
//
// numRoutes and decision are parallel arrays indexed by inherited color
// 0..K, kept as plain []int rather than per-color structs to keep the
// per-node footprint to two slice headers (see the resource-model note on
// memory being O(nodes * (K+1))).
type node struct {
	children [2]*node
	color    int

	numRoutes []int
	decision  []int
}

func newNode(k int) *node {
	numRoutes := make([]int, k+1)
	decision := make([]int, k+1)
	for i := range numRoutes {
		numRoutes[i] = math.MaxInt
		decision[i] = noDecision
	}

	return &node{
		numRoutes: numRoutes,
		decision:  decision,
	}
}

func (n *node) isLeaf() bool {
	return n.children[0] == nil && n.children[1] == nil
}

// dp computes numRoutes and decision for n and its whole subtree, bottom up.
//
// numRoutes[c] is a valid route count under inheritance c by construction;
// the local choice between "inherit" and "emit one route here and switch to
// the globally best color" is exhaustive, because any optimal strategy for
// this subtree either emits nothing at the root of the subtree (cost
// base[c]) or emits exactly one route switching to some color c' (cost
// base[c']+1, minimized by picking c' = argmin base).
func (n *node) dp() {
	if n.isLeaf() {
		// An uncolored leaf is only reachable as the root of a trie that
		// received no Mark calls at all (every non-root leaf is created by
		// Mark, which always sets its terminal node's color). There is
		// nothing to route here under any inherited color.
		if n.color == noColor {
			for c := range n.numRoutes {
				n.numRoutes[c] = 0
				n.decision[c] = noDecision
			}
			return
		}

		for c := range n.numRoutes {
			if c == n.color {
				n.numRoutes[c] = 0
				n.decision[c] = noDecision
			} else {
				n.numRoutes[c] = 1
				n.decision[c] = n.color
			}
		}
		return
	}

	if n.color != noColor {
		panic("lessroutes/trie: dp reached an internal node carrying a color")
	}

	for _, child := range n.children {
		if child != nil {
			child.dp()
		}
	}

	base := make([]int, len(n.numRoutes))
	for c := range base {
		sum := 0
		for _, child := range n.children {
			if child != nil {
				sum += child.numRoutes[c]
			}
		}
		base[c] = sum
	}

	best := 0
	for c := 1; c < len(base); c++ {
		if base[c] < base[best] {
			best = c
		}
	}

	for c := range n.numRoutes {
		if base[c] <= base[best]+1 {
			n.numRoutes[c] = base[c]
			n.decision[c] = noDecision
		} else {
			n.numRoutes[c] = base[best] + 1
			n.decision[c] = best
		}
	}
}

// coloredPath pairs a bit-path from the root with the color a route at that
// path should switch to.
type coloredPath struct {
	path  []bool
	color int
}

// generate walks the subtree top-down under the given inherited color,
// appending a coloredPath to out every time decision calls for a route to
// be emitted, and recursing into present children with path extended by
// the branch bit taken (false for children[0], true for children[1]).
func (n *node) generate(inherited int, path []bool, out *[]coloredPath) {
	if d := n.decision[inherited]; d != noDecision {
		emitted := make([]bool, len(path))
		copy(emitted, path)
		*out = append(*out, coloredPath{path: emitted, color: d})
		inherited = d
	}

	for bit, child := range n.children {
		if child == nil {
			continue
		}
		path = append(path, bit != 0)
		child.generate(inherited, path, out)
		path = path[:len(path)-1]
	}
}
