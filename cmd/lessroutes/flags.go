package main

import (
	"strings"

	"github.com/minkast/lessroutes/internal/gateway"
)

// gatewayFlags accumulates every -gateway flag, in the order given on the
// command line, implementing flag.Value for repeatable use.
type gatewayFlags gateway.Set

func (f *gatewayFlags) String() string {
	if f == nil {
		return ""
	}
	names := make([]string, len(*f))
	for i, m := range *f {
		names[i] = m.Name
	}
	return strings.Join(names, ",")
}

func (f *gatewayFlags) Set(s string) error {
	m, err := gateway.ParseFlag(s)
	if err != nil {
		return err
	}
	*f = append(*f, m)
	return nil
}
