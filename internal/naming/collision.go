package naming

import (
	"fmt"
	"sync"
)

// DirClaims hands out destination directories so that no two jobs in a run
// write into the same one. A directory already claimed by another source
// resolves to a " (N)" variant. All methods are goroutine-safe.
type DirClaims struct {
	mu       sync.Mutex
	owners   map[string]string // directory → source that owns it
	counters map[string]int    // requested directory → next variant number
}

// NewDirClaims creates a ready-to-use claim table.
func NewDirClaims() *DirClaims {
	return &DirClaims{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim returns the directory source should write into. If requested is
// unclaimed (or already owned by source) it is returned as-is.
func (c *DirClaims) Claim(source, requested string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	owner, exists := c.owners[requested]
	if !exists || owner == source {
		c.owners[requested] = source
		return requested
	}

	n := c.counters[requested]
	if n == 0 {
		n = 2
	}
	for {
		candidate := fmt.Sprintf("%s (%d)", requested, n)
		cOwner, cExists := c.owners[candidate]
		if !cExists || cOwner == source {
			c.counters[requested] = n + 1
			c.owners[candidate] = source
			return candidate
		}
		n++
	}
}

// Owner returns the source that claimed dir, if any.
func (c *DirClaims) Owner(dir string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.owners[dir]
	return s, ok
}
