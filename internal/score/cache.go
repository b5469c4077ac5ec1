package score

import (
	"twitscan/internal/graph"
	"twitscan/internal/interact"
	"twitscan/internal/util"
)

// Profile is the per-user data a score needs, read once per session.
type Profile struct {
	Circle   graph.Circle
	Hashtags util.Set[string]
	Activity interact.Summary
}

type cacheEntry struct {
	gen     int64
	fold    bool
	profile Profile
}

type CacheStats struct {
	Hits   int
	Misses int
}

// Cache memoizes profiles by user id for one scoring session. Each entry
// remembers the store generation and hashtag folding it was read with and
// is ignored when either differs. Not safe for concurrent use.
type Cache struct {
	entries map[int64]cacheEntry
	stats   CacheStats
}

func NewCache() *Cache { return &Cache{entries: make(map[int64]cacheEntry)} }

// Get returns the profile cached for id if it was read at generation gen
// with the same hashtag folding.
func (c *Cache) Get(id, gen int64, fold bool) (Profile, bool) {
	e, ok := c.entries[id]
	if !ok || e.gen != gen || e.fold != fold {
		c.stats.Misses++
		return Profile{}, false
	}
	c.stats.Hits++
	return e.profile, true
}

func (c *Cache) Put(id, gen int64, fold bool, p Profile) {
	c.entries[id] = cacheEntry{gen: gen, fold: fold, profile: p}
}

func (c *Cache) Invalidate(id int64) { delete(c.entries, id) }

func (c *Cache) Reset() {
	c.entries = make(map[int64]cacheEntry)
	c.stats = CacheStats{}
}

func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) Stats() CacheStats { return c.stats }
