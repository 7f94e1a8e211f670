// Command lessroutes fetches the five RIR delegation reports, assigns each
// allocated prefix to the gateway the operator configured for its country,
// and writes the minimum-size IPv4 and IPv6 route lists that reproduce that
// assignment under longest-prefix match.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/minkast/lessroutes/internal/delegation"
	"github.com/minkast/lessroutes/internal/gateway"
	"github.com/minkast/lessroutes/pkg/lessroutes"
	"github.com/minkast/lessroutes/pkg/lessroutes/trie"
)

func main() {
	var gateways gatewayFlags
	flag.Var(&gateways, "gateway", "Gateway name and associated countries, e.g. -gateway a=US,JP (repeatable)")

	outputV4 := flag.String("output-v4", "routes.v4.json", "Output file for IPv4 routes")
	noV4 := flag.Bool("no-v4", false, "Do not generate IPv4 routes")
	outputV6 := flag.String("output-v6", "routes.v6.json", "Output file for IPv6 routes")
	noV6 := flag.Bool("no-v6", false, "Do not generate IPv6 routes")
	cacheFile := flag.String("cache-file", "delegations.json", "Cache file for retrieved delegations from registries")
	noCache := flag.Bool("no-cache", false, "Do not use a cache file")
	update := flag.Bool("update", false, "Force update delegations from registries")
	noUpdate := flag.Bool("no-update", false, "Do not update delegations from registries")
	noDefaultGateway := flag.Bool("no-default-gateway", false, "Do not generate a route for 0.0.0.0/0 or ::/0")
	flag.Parse()

	if *update && *noUpdate {
		log.Fatal("-update and -no-update are mutually exclusive")
	}
	if len(gateways) == 0 {
		log.Fatal("at least one -gateway is required")
	}

	ctx := context.Background()

	delegations, err := loadDelegations(ctx, *cacheFile, *noCache, *update, *noUpdate)
	if err != nil {
		log.Fatalf("load delegations: %v", err)
	}

	log.Print("generating minimum routes")
	builder := lessroutes.NewBuilder(gateway.Set(gateways), !*noV4, !*noV6)
	for country, prefixes := range delegations.ByCountry {
		for _, p := range prefixes {
			if err := builder.Mark(delegation.Record{Country: country, Prefix: p}); err != nil {
				log.Fatalf("mark %s (%s): %v", p, country, err)
			}
		}
	}

	v4Routes, v6Routes, err := builder.Generate(*noDefaultGateway)
	if err != nil {
		log.Fatalf("generate routes: %v", err)
	}

	if !*noV4 {
		if err := writeRoutes(*outputV4, v4Routes); err != nil {
			log.Fatalf("write %s: %v", *outputV4, err)
		}
		log.Printf("wrote %d IPv4 routes to %s", len(v4Routes), *outputV4)
	}
	if !*noV6 {
		if err := writeRoutes(*outputV6, v6Routes); err != nil {
			log.Fatalf("write %s: %v", *outputV6, err)
		}
		log.Printf("wrote %d IPv6 routes to %s", len(v6Routes), *outputV6)
	}
}

func loadDelegations(ctx context.Context, cacheFile string, noCache, update, noUpdate bool) (*delegation.Delegations, error) {
	if noCache {
		log.Print("downloading latest delegations from registries")
		return delegation.Fetch(ctx, nil)
	}
	return delegation.LoadWithCache(ctx, nil, cacheFile, update, noUpdate)
}

func writeRoutes(path string, routes []trie.Route) error {
	if routes == nil {
		routes = []trie.Route{}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(routes)
}
