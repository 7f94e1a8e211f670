// Package lessroutes wires the gateway-resolution and delegation
// collaborators to the core trie: it owns one trie per address family and
// turns delegation records into marks and DP results into routes.
package lessroutes

import (
	"github.com/minkast/lessroutes/internal/delegation"
	"github.com/minkast/lessroutes/internal/gateway"
	"github.com/minkast/lessroutes/pkg/lessroutes/trie"
)

// Builder owns the v4 and v6 tries for one run and resolves countries to
// gateway colors via a shared gateway.Set.
type Builder struct {
	gateways gateway.Set
	v4, v6   *trie.Trie
}

// NewBuilder returns a Builder for the given gateway declarations. A nil
// trie is built (and silently skipped by Mark/Generate) for any family the
// caller disables.
func NewBuilder(gateways gateway.Set, buildV4, buildV6 bool) *Builder {
	b := &Builder{gateways: gateways}
	if buildV4 {
		b.v4 = trie.New(len(gateways), trie.Width4)
	}
	if buildV6 {
		b.v6 = trie.New(len(gateways), trie.Width6)
	}
	return b
}

// Mark resolves rec's country to a gateway and, if one claims it, marks the
// prefix in the matching family's trie. A country matching no gateway, or
// a family the Builder was told to skip, is silently ignored (see the
// external interfaces section of SPEC_FULL.md).
func (b *Builder) Mark(rec delegation.Record) error {
	color, ok := b.gateways.Resolve(rec.Country)
	if !ok {
		return nil
	}

	addr := rec.Prefix.Addr()
	if addr.Is4() {
		if b.v4 == nil {
			return nil
		}
		a4 := addr.As4()
		return b.v4.Mark(a4[:], rec.Prefix.Bits(), color)
	}

	if b.v6 == nil {
		return nil
	}
	a16 := addr.As16()
	return b.v6.Mark(a16[:], rec.Prefix.Bits(), color)
}

// Generate runs the DP pass for each built family and returns its minimal
// route list. A family the Builder was told to skip returns a nil slice.
func (b *Builder) Generate(noDefaultGateway bool) (v4, v6 []trie.Route, err error) {
	gateways := make([]trie.Gateway, len(b.gateways))
	for i, m := range b.gateways {
		gateways[i] = trie.Gateway{Name: m.Name}
	}

	if b.v4 != nil {
		v4, err = b.v4.Generate(gateways, noDefaultGateway)
		if err != nil {
			return nil, nil, err
		}
	}
	if b.v6 != nil {
		v6, err = b.v6.Generate(gateways, noDefaultGateway)
		if err != nil {
			return nil, nil, err
		}
	}

	return v4, v6, nil
}
