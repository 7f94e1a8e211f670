// Package trie implements the binary-trie route compressor: given a set of
// colored IP prefixes (a color names a gateway), it emits the minimum
// number of (prefix, gateway) routes whose longest-prefix-match semantics
// reproduce the original coloring exactly.
package trie

import "github.com/pkg/errors"

// Width4 and Width6 are the address widths, in bits, of the two supported
// families.
const (
	Width4 = 32
	Width6 = 128
)

// Gateway is the minimal piece of a gateway the emitter needs: its display
// name. Country-to-gateway resolution lives one layer up, in the gateway
// package; the core only ever deals in colors.
type Gateway struct {
	Name string
}

// Trie is a binary trie over address bits, colored at the leaves, that
// compresses its coloring into a minimal route list. Trie is not safe for
// concurrent use; a single owner mutates it sequentially (see the package's
// design notes on ownership).
type Trie struct {
	root   *node
	k      int
	width  int
	frozen bool
}

// New returns an empty trie for k gateways (colors 1..k) over addresses of
// the given bit width (Width4 or Width6).
func New(k int, width int) *Trie {
	return &Trie{
		root:  newNode(k),
		k:     k,
		width: width,
	}
}

// Mark inserts, or extends, the path for the first prefixLen bits of addr
// and sets its terminal node's color. Later marks on the same path
// overwrite earlier ones (last-writer-wins).
//
// A shorter prefix may be marked before a longer, overlapping one is marked
// underneath it (spec §8 S5): descending past a colored leaf turns it into
// an interior node, and that leaf's color is pushed down onto both of its
// new children first, so every part of its subtree the longer mark doesn't
// carve out keeps the shorter mark's color instead of silently losing it.
//
// The reverse order is rejected instead of resolved: a mark that would land
// exactly on an interior node of a previously inserted longer prefix
// returns ErrOverlappingPrefix rather than coloring a node that still has
// children, which would break invariant 1 (leaf-color exclusivity). RIR
// delegation data is disjoint in practice, so this never fires against real
// input; see SPEC_FULL.md §4.3.
func (t *Trie) Mark(addr []byte, prefixLen int, color int) error {
	if t.frozen {
		return ErrUseAfterFreeze
	}
	if color <= 0 || color > t.k {
		return errors.Wrapf(ErrInvalidColor, "color %d not in [1, %d]", color, t.k)
	}
	if prefixLen < 0 || prefixLen > t.width {
		return errors.Wrapf(ErrInvalidPrefixLength, "length %d not in [0, %d]", prefixLen, t.width)
	}

	cur := t.root
	cursor := NewBitCursor(addr, prefixLen)
	for {
		bit, ok := cursor.Next()
		if !ok {
			break
		}

		if cur.color != noColor {
			// cur is a leaf colored by a shorter, previously marked prefix.
			// It's about to gain children, so push its color down onto both
			// before descending further, then clear it so cur itself reverts
			// to the uncolored-interior state dp expects.
			for i := range cur.children {
				cur.children[i] = newNode(t.k)
				cur.children[i].color = cur.color
			}
			cur.color = noColor
		}

		idx := 0
		if bit {
			idx = 1
		}
		if cur.children[idx] == nil {
			cur.children[idx] = newNode(t.k)
		}
		cur = cur.children[idx]
	}

	if !cur.isLeaf() {
		return errors.Wrapf(ErrOverlappingPrefix, "prefix of length %d overlaps a longer prefix already marked", prefixLen)
	}

	cur.color = color
	return nil
}

// Generate runs the DP pass and walks the resulting decisions into a
// minimal list of routes, one per emitted (path, color) pair. gateways is
// indexed by color-1: color c names gateways[c-1]. If noDefaultGateway is
// true, the root's post-DP decision is cleared so no 0-length route is ever
// emitted, even if DP would otherwise have chosen one.
//
// Generate freezes the trie: subsequent Mark calls return
// ErrUseAfterFreeze.
func (t *Trie) Generate(gateways []Gateway, noDefaultGateway bool) ([]Route, error) {
	t.root.dp()

	if noDefaultGateway {
		for i := range t.root.decision {
			t.root.decision[i] = noDecision
		}
	}

	var paths []coloredPath
	t.root.generate(noColor, nil, &paths)
	t.frozen = true

	routes := make([]Route, 0, len(paths))
	for _, cp := range paths {
		if cp.color <= 0 || cp.color > len(gateways) {
			return nil, errors.Errorf("trie: generated color %d out of range for %d gateways", cp.color, len(gateways))
		}
		routes = append(routes, emitRoute(t.width, cp.path, gateways[cp.color-1].Name))
	}

	return routes, nil
}
