package delegation

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// registry is one RIR's extended-delegation report endpoint.
type registry struct {
	name string
	url  string
}

var registries = []registry{
	{"apnic", "https://ftp.apnic.net/stats/apnic/delegated-apnic-latest"},
	{"arin", "https://ftp.arin.net/pub/stats/arin/delegated-arin-extended-latest"},
	{"ripencc", "https://ftp.ripe.net/pub/stats/ripencc/delegated-ripencc-extended-latest"},
	{"lacnic", "https://ftp.lacnic.net/pub/stats/lacnic/delegated-lacnic-latest"},
	{"afrinic", "https://ftp.afrinic.net/pub/stats/afrinic/delegated-afrinic-latest"},
}

// Fetch downloads and parses all five RIR delegation reports concurrently,
// bounded by ctx, and merges them into a single Delegations. A failure
// fetching or parsing any one registry fails the whole call: the core needs
// a complete country map before the first Mark.
func Fetch(ctx context.Context, client *http.Client) (*Delegations, error) {
	if client == nil {
		client = http.DefaultClient
	}

	results := make([][]Record, len(registries))

	g, ctx := errgroup.WithContext(ctx)
	for i, reg := range registries {
		i, reg := i, reg
		g.Go(func() error {
			records, err := fetchOne(ctx, client, reg)
			if err != nil {
				return errors.Wrapf(err, "fetch %s delegations", reg.name)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := newDelegations()
	for _, records := range results {
		for _, rec := range records {
			d.add(rec)
		}
	}

	return d, nil
}

func fetchOne(ctx context.Context, client *http.Client, reg registry) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reg.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	return ParseReport(resp.Body, reg.name)
}
