// Package gateway parses and resolves the -gateway CLI flag: a name and the
// set of ISO 3166-1 alpha-2 country codes it should receive traffic for.
package gateway

import (
	"strings"

	"github.com/pkg/errors"
)

// Mapping is one `-gateway name=CC,CC,...` declaration, in the order it was
// given on the command line.
type Mapping struct {
	Name      string
	Countries map[string]struct{}
}

// ParseFlag parses a single `-gateway` flag value of the form
// "name=CC,CC,...". It rejects an empty name, an empty country list, and
// any country code that is not exactly two uppercase ASCII letters.
func ParseFlag(s string) (Mapping, error) {
	name, countryList, ok := strings.Cut(s, "=")
	if !ok {
		return Mapping{}, errors.Errorf("gateway mapping %q: missing '='", s)
	}
	if name == "" {
		return Mapping{}, errors.Errorf("gateway mapping %q: empty gateway name", s)
	}

	countries := make(map[string]struct{})
	for _, country := range strings.Split(countryList, ",") {
		if !isCountryCode(country) {
			return Mapping{}, errors.Errorf("gateway mapping %q: %q is not a country code", s, country)
		}
		countries[country] = struct{}{}
	}
	if len(countries) == 0 {
		return Mapping{}, errors.Errorf("gateway mapping %q: no countries listed", s)
	}

	return Mapping{Name: name, Countries: countries}, nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Set is an ordered list of Mappings, as declared on the command line.
type Set []Mapping

// Resolve returns the 1-based color of the first Mapping (in declaration
// order) whose Countries contains country, and true. If no Mapping claims
// the country, it returns (0, false) and the caller must leave the prefix
// unmarked.
func (s Set) Resolve(country string) (color int, ok bool) {
	for i, m := range s {
		if _, has := m.Countries[country]; has {
			return i + 1, true
		}
	}
	return 0, false
}
