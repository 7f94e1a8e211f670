package delegation

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// maxCacheAge is the staleness threshold: a cache file older than this is
// refetched unless the caller passed noUpdate.
const maxCacheAge = 24 * time.Hour

// LoadWithCache returns the delegation data for cacheFile, fetching fresh
// data from the registries and writing it to cacheFile when needed:
//
//   - update forces a refetch regardless of the cache's age.
//   - noUpdate forbids a refetch; a missing cache file is then an error,
//     since there is nothing to load.
//   - otherwise, a cache file older than maxCacheAge (or missing) triggers
//     a refetch; a fresh cache file is loaded as-is.
func LoadWithCache(ctx context.Context, client *http.Client, cacheFile string, update, noUpdate bool) (*Delegations, error) {
	needUpdate, err := needsUpdate(cacheFile, update, noUpdate)
	if err != nil {
		return nil, err
	}

	if !needUpdate {
		return loadCache(cacheFile)
	}

	d, err := Fetch(ctx, client)
	if err != nil {
		return nil, err
	}

	if err := saveCache(cacheFile, d); err != nil {
		return nil, errors.Wrap(err, "cache delegations")
	}

	return d, nil
}

func needsUpdate(cacheFile string, update, noUpdate bool) (bool, error) {
	if update {
		return true, nil
	}

	info, err := os.Stat(cacheFile)
	if err != nil {
		if os.IsNotExist(err) {
			if noUpdate {
				return false, errors.Errorf("cache file %s is not present but -no-update was given", cacheFile)
			}
			return true, nil
		}
		return false, errors.Wrapf(err, "stat cache file %s", cacheFile)
	}

	if noUpdate {
		return false, nil
	}

	return time.Since(info.ModTime()) > maxCacheAge, nil
}

func loadCache(cacheFile string) (*Delegations, error) {
	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read cache file %s", cacheFile)
	}

	d := newDelegations()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, errors.Wrapf(err, "parse cache file %s", cacheFile)
	}

	return d, nil
}

func saveCache(cacheFile string, d *Delegations) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshal delegations")
	}

	return os.WriteFile(cacheFile, data, 0o644)
}
