// Package delegation fetches, caches, and parses the five Regional Internet
// Registry (RIR) extended-delegation reports into (country, prefix) pairs.
// It is a collaborator to the core trie, not part of it: see §4.6 of
// SPEC_FULL.md.
package delegation

import "net/netip"

// Record is a single parsed delegation: a country received an allocated or
// assigned prefix from some registry.
type Record struct {
	Country string
	Prefix  netip.Prefix
}

// Delegations groups all parsed records by country, the shape both the
// in-memory consumer and the on-disk cache use.
type Delegations struct {
	ByCountry map[string][]netip.Prefix `json:"by_country"`
}

func newDelegations() *Delegations {
	return &Delegations{ByCountry: make(map[string][]netip.Prefix)}
}

func (d *Delegations) add(rec Record) {
	d.ByCountry[rec.Country] = append(d.ByCountry[rec.Country], rec.Prefix)
}
