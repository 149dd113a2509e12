package authz

import "sync"

// DefaultCacheSize is the permission cache capacity used when none is configured.
const DefaultCacheSize = 512

// permissionCache holds the effective permission sets of recently checked
// agents. It is bounded and write-invalidated: every role mutation for an
// agent evicts that agent's entry, so a stale grant can never outlive the
// write that changed it.
type permissionCache struct {
	mu      sync.RWMutex
	max     int
	entries map[uint64]map[string]struct{}
}

func newPermissionCache(max int) *permissionCache {
	if max <= 0 {
		max = DefaultCacheSize
	}

	return &permissionCache{
		max:     max,
		entries: make(map[uint64]map[string]struct{}, max),
	}
}

func (c *permissionCache) get(agentID uint64) (map[string]struct{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	perms, ok := c.entries[agentID]

	return perms, ok
}

func (c *permissionCache) put(agentID uint64, codenames []string) {
	perms := make(map[string]struct{}, len(codenames))
	for _, cn := range codenames {
		perms[cn] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[agentID]; !ok && len(c.entries) >= c.max {
		// Evict one arbitrary entry to stay bounded. Map iteration order is
		// random enough here; entries are cheap to rebuild on the next check.
		for id := range c.entries {
			delete(c.entries, id)
			break
		}
	}

	c.entries[agentID] = perms
}

func (c *permissionCache) invalidate(agentID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, agentID)
}

func (c *permissionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
