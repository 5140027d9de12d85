package search

// cacheEntry is one memoized searchable string and the signature it was
// computed for.
type cacheEntry struct {
	signature  string
	searchable string
}

// signatureCache memoizes searchable strings for one entity kind.
// Each rebuild fills a fresh generation; entities that disappeared from the
// snapshot are never carried over, so eviction is implicit.
type signatureCache struct {
	enabled bool
	prev    map[string]cacheEntry
	next    map[string]cacheEntry

	hits   int
	misses int
}

func newSignatureCache(enabled bool) *signatureCache {
	return &signatureCache{
		enabled: enabled,
		prev:    map[string]cacheEntry{},
	}
}

// begin starts a new generation and resets the per-rebuild counters.
func (c *signatureCache) begin(sizeHint int) {
	c.next = make(map[string]cacheEntry, sizeHint)
	c.hits = 0
	c.misses = 0
}

// reconcile returns the searchable string for key. An equal signature in the
// previous generation is a hit and returns the cached string unchanged;
// otherwise compute runs.
func (c *signatureCache) reconcile(key, signature string, compute func() string) string {
	if !c.enabled {
		c.misses++
		return compute()
	}
	if cached, ok := c.prev[key]; ok && cached.signature == signature {
		c.hits++
		c.next[key] = cached
		return cached.searchable
	}
	c.misses++
	searchable := compute()
	c.next[key] = cacheEntry{signature: signature, searchable: searchable}
	return searchable
}

// commit swaps the new generation in.
func (c *signatureCache) commit() {
	if !c.enabled {
		c.next = nil
		return
	}
	c.prev = c.next
	c.next = nil
}

func (c *signatureCache) size() int {
	return len(c.prev)
}

func (c *signatureCache) reset() {
	c.prev = map[string]cacheEntry{}
	c.next = nil
	c.hits = 0
	c.misses = 0
}
