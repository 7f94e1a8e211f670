package trie

import (
	"math/rand"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustPrefix(t *testing.T, s string) netip.Prefix {
	t.Helper()
	p, err := netip.ParsePrefix(s)
	require.NoError(t, err)
	return p
}

func markPrefix(t *testing.T, tr *Trie, s string, color int) {
	t.Helper()
	p := mustPrefix(t, s)
	addr4 := p.Addr().As4()
	require.NoError(t, tr.Mark(addr4[:], p.Bits(), color))
}

// classify applies longest-prefix-match semantics directly against an
// emitted route list: the longest matching prefix wins, and "no match" is
// the zero value.
func classify(routes []Route, addr netip.Addr) (gateway string, matched bool) {
	bestLen := -1
	for _, r := range routes {
		p := netip.PrefixFrom(r.Prefix, r.Length)
		if p.Contains(addr) && r.Length > bestLen {
			bestLen = r.Length
			gateway = r.Gateway
			matched = true
		}
	}
	return gateway, matched
}

func TestS1SingleCountry(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "1.0.0.0/8", 1)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Equal(t, 8, routes[0].Length)
	require.Equal(t, "a", routes[0].Gateway)
	require.Equal(t, mustPrefix(t, "1.0.0.0/8").Addr(), routes[0].Prefix)
}

func TestS2ComplementaryHalves(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "0.0.0.0/1", 1)
	markPrefix(t, tr, "128.0.0.0/1", 2)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	// Either tie-break form is valid; both must classify correctly.
	g, ok := classify(routes, netip.MustParseAddr("1.2.3.4"))
	require.True(t, ok)
	require.Equal(t, "a", g)

	g, ok = classify(routes, netip.MustParseAddr("200.1.1.1"))
	require.True(t, ok)
	require.Equal(t, "b", g)
}

func TestS3DominantColor(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "1.0.0.0/8", 1)
	markPrefix(t, tr, "64.0.0.0/8", 1)
	markPrefix(t, tr, "128.0.0.0/8", 1)
	markPrefix(t, tr, "192.0.0.0/8", 2)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	var sawDefault bool
	for _, r := range routes {
		if r.Length == 0 {
			sawDefault = true
			require.Equal(t, "a", r.Gateway)
		}
	}
	require.True(t, sawDefault)
}

func TestS4NoDefault(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "1.0.0.0/8", 1)
	markPrefix(t, tr, "2.0.0.0/8", 1)
	markPrefix(t, tr, "3.0.0.0/8", 1)
	markPrefix(t, tr, "4.0.0.0/8", 2)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, true)
	require.NoError(t, err)
	require.Len(t, routes, 4)

	for _, r := range routes {
		require.NotZero(t, r.Length)
	}
}

func TestS5Nested(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "10.0.0.0/8", 1)
	markPrefix(t, tr, "10.1.0.0/16", 2)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)
	require.Len(t, routes, 2)

	g, ok := classify(routes, netip.MustParseAddr("10.1.0.5"))
	require.True(t, ok)
	require.Equal(t, "b", g)

	g, ok = classify(routes, netip.MustParseAddr("10.2.0.5"))
	require.True(t, ok)
	require.Equal(t, "a", g)
}

func TestS6Empty(t *testing.T) {
	tr := New(2, Width4)
	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)
	require.Empty(t, routes)
}

func TestMarkRejectsInvalidColor(t *testing.T) {
	tr := New(2, Width4)
	err := tr.Mark([]byte{1, 0, 0, 0}, 8, 0)
	require.ErrorIs(t, err, ErrInvalidColor)

	err = tr.Mark([]byte{1, 0, 0, 0}, 8, 3)
	require.ErrorIs(t, err, ErrInvalidColor)
}

func TestMarkRejectsInvalidPrefixLength(t *testing.T) {
	tr := New(2, Width4)
	err := tr.Mark([]byte{1, 0, 0, 0}, 33, 1)
	require.ErrorIs(t, err, ErrInvalidPrefixLength)
}

func TestMarkAfterGenerateFails(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "1.0.0.0/8", 1)
	_, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
	require.NoError(t, err)

	err = tr.Mark([]byte{2, 0, 0, 0}, 8, 1)
	require.ErrorIs(t, err, ErrUseAfterFreeze)
}

func TestMarkRejectsOverlapWithExistingLongerPrefix(t *testing.T) {
	tr := New(2, Width4)
	markPrefix(t, tr, "10.1.0.0/16", 1)

	p := mustPrefix(t, "10.0.0.0/8")
	addr4 := p.Addr().As4()
	err := tr.Mark(addr4[:], p.Bits(), 2)
	require.ErrorIs(t, err, ErrOverlappingPrefix)
}

func TestNoEmittedRouteCarriesReservedColor(t *testing.T) {
	tr := New(3, Width4)
	markPrefix(t, tr, "1.0.0.0/8", 1)
	markPrefix(t, tr, "2.0.0.0/8", 2)
	markPrefix(t, tr, "3.0.0.0/8", 3)

	routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}, {Name: "c"}}, false)
	require.NoError(t, err)
	for _, r := range routes {
		require.NotEqual(t, "", r.Gateway)
	}
}

func TestDeterminism(t *testing.T) {
	build := func() []Route {
		tr := New(2, Width4)
		markPrefix(t, tr, "1.0.0.0/8", 1)
		markPrefix(t, tr, "2.0.0.0/8", 1)
		markPrefix(t, tr, "3.0.0.0/8", 1)
		markPrefix(t, tr, "4.0.0.0/8", 2)
		routes, err := tr.Generate([]Gateway{{Name: "a"}, {Name: "b"}}, false)
		require.NoError(t, err)
		return routes
	}

	require.Equal(t, build(), build())
}

// ---- exhaustive minimality check over small random tries ----

type leaf struct {
	addr   [4]byte
	length int
	color  int
}

// bruteForceMinSize tries every subset-size route list over the candidate
// prefix set (every ancestor prefix of every leaf, for every color) in
// increasing order of size and returns the first size for which some
// combination reproduces the leaf coloring under classify's LPM semantics.
// Bounded to small K/leaf counts by the caller, as the property test
// requires.
func bruteForceMinSize(t *testing.T, leaves []leaf, gateways []Gateway, noDefault bool) int {
	t.Helper()

	type candidate struct {
		prefix netip.Prefix
		color  int
	}

	seen := map[netip.Prefix]bool{}
	var candidates []candidate
	for _, lf := range leaves {
		addr := netip.AddrFrom4(lf.addr)
		for length := 0; length <= lf.length; length++ {
			if noDefault && length == 0 {
				continue
			}
			p := netip.PrefixFrom(addr, length).Masked()
			if seen[p] {
				continue
			}
			seen[p] = true
			for c := 1; c <= len(gateways); c++ {
				candidates = append(candidates, candidate{prefix: p, color: c})
			}
		}
	}

	matches := func(routes []candidate) bool {
		asRoutes := make([]Route, len(routes))
		for i, c := range routes {
			asRoutes[i] = Route{Prefix: c.prefix.Addr(), Length: c.prefix.Bits(), Gateway: gateways[c.color-1].Name}
		}
		for _, lf := range leaves {
			addr := netip.AddrFrom4(lf.addr)
			g, ok := classify(asRoutes, addr)
			wantGateway := gateways[lf.color-1].Name
			if !ok || g != wantGateway {
				return false
			}
		}
		return true
	}

	n := len(candidates)
	if n > 14 {
		t.Fatalf("candidate set too large for brute force: %d", n)
	}

	for size := 0; size <= n; size++ {
		found := false
		var combo func(start int, chosen []candidate) bool
		combo = func(start int, chosen []candidate) bool {
			if len(chosen) == size {
				return matches(chosen)
			}
			for i := start; i < n; i++ {
				if combo(i+1, append(chosen, candidates[i])) {
					return true
				}
			}
			return false
		}
		if combo(0, nil) {
			found = true
		}
		if found {
			return size
		}
	}

	t.Fatalf("no combination of candidates reproduces the coloring")
	return -1
}

func TestMinimalityAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 40; trial++ {
		k := 1 + rng.Intn(2)
		numLeaves := 1 + rng.Intn(3)

		gateways := make([]Gateway, k)
		for i := range gateways {
			gateways[i] = Gateway{Name: string(rune('a' + i))}
		}

		tr := New(k, Width4)
		used := map[string]bool{}
		var leaves []leaf
		for i := 0; i < numLeaves; i++ {
			length := 1 + rng.Intn(2) // keep candidate sets small
			var addr [4]byte
			addr[0] = byte(1 + rng.Intn(4))
			p := netip.PrefixFrom(netip.AddrFrom4(addr), length).Masked()
			key := p.String()
			if used[key] {
				continue
			}
			used[key] = true

			color := 1 + rng.Intn(k)
			maskedAddr := p.Addr().As4()
			if err := tr.Mark(maskedAddr[:], length, color); err != nil {
				// A shorter prefix landing on a node whose children were
				// already created by a longer one picked earlier this trial
				// is a legitimate ErrOverlappingPrefix, not a test bug; skip
				// this candidate leaf rather than asserting it always marks.
				require.ErrorIs(t, err, ErrOverlappingPrefix)
				continue
			}
			leaves = append(leaves, leaf{addr: maskedAddr, length: length, color: color})
		}
		if len(leaves) == 0 {
			continue
		}

		// Candidate set size guard: skip trials whose brute force space
		// would be too large rather than letting bruteForceMinSize fatal.
		seen := map[netip.Prefix]bool{}
		for _, lf := range leaves {
			addr := netip.AddrFrom4(lf.addr)
			for length := 0; length <= lf.length; length++ {
				seen[netip.PrefixFrom(addr, length).Masked()] = true
			}
		}
		if len(seen)*k > 14 {
			continue
		}

		routes, err := tr.Generate(gateways, false)
		require.NoError(t, err)

		wantSize := bruteForceMinSize(t, leaves, gateways, false)
		require.Len(t, routes, wantSize)
	}
}
