// Package dirlock implements a filesystem-visible mutual-exclusion
// primitive: a lock that is just a directory, acquired by exclusive
// creation, so it stays visible to and safe across
// sibling processes sharing the same html_cache_dir — not only goroutines
// in this process.
package dirlock

import (
	"fmt"
	"os"
	"time"
)

const (
	maxRetries   = 2000
	retryBackoff = 10 * time.Millisecond
)

// Lock is a held directory lock. Release removes the directory.
type Lock struct {
	path string
}

// Acquire creates path as a directory, exclusively, retrying up to
// maxRetries times with a retryBackoff sleep between attempts to
// tolerate a sibling process or goroutine holding it. It gives up and
// returns an error after that budget is exhausted, rather than blocking
// forever on a stuck lock.
func Acquire(path string) (*Lock, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := os.Mkdir(path, 0700)
		if err == nil {
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		time.Sleep(retryBackoff)
	}
	return nil, fmt.Errorf("dirlock: could not acquire %s after %d attempts", path, maxRetries)
}

// Release removes the lock directory.
func (l *Lock) Release() error {
	return os.Remove(l.path)
}
