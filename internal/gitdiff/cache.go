package gitdiff

import (
	"sync"
	"time"
)

// Cache is the per-editor GitDiffCache of spec §3: a HEAD snapshot fetched
// once per file, and the most recently computed status maps.
type Cache struct {
	mu           sync.Mutex
	headSnapshot string
	haveHead     bool
	lineStatus   map[int]Status
	deletedAfter map[int]int
	lastRefresh  time.Time
}

// EnsureHead fetches and caches the HEAD snapshot for absPath if not
// already cached. Safe to call repeatedly; it is a no-op once populated.
func (c *Cache) EnsureHead(absPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.haveHead {
		return nil
	}
	snap, err := FetchHead(absPath)
	if err != nil {
		if err == ErrUntracked {
			c.headSnapshot = ""
			c.haveHead = true
			return nil
		}
		return err
	}
	c.headSnapshot = snap
	c.haveHead = true
	return nil
}

// Refresh recomputes the diff of the cached HEAD snapshot against current
// buffer text and stores the result.
func (c *Cache) Refresh(current string) Result {
	c.mu.Lock()
	head := c.headSnapshot
	c.mu.Unlock()

	res := Compute(head, current)

	c.mu.Lock()
	c.lineStatus = res.LineStatus
	c.deletedAfter = res.DeletedAfter
	c.lastRefresh = time.Now()
	c.mu.Unlock()
	return res
}

// LineStatus returns the status for line, defaulting to Unchanged.
func (c *Cache) LineStatus(line int) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lineStatus == nil {
		return Unchanged
	}
	return c.lineStatus[line]
}

// DeletedAfter returns how many head-only lines vanished after line.
func (c *Cache) DeletedAfter(line int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletedAfter[line]
}

// LastRefresh reports when Refresh last completed.
func (c *Cache) LastRefresh() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh
}

// Reset clears the cached HEAD snapshot, forcing the next EnsureHead to
// re-fetch (used when the editor reloads its file from disk).
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveHead = false
	c.headSnapshot = ""
}
