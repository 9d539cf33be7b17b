package idl

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"
	"sync"
)

// SchemaFingerprint derives a stable, compact identifier for a schema+object
// source string: SHA-256, first 5 bytes, lowercase base32. It is used both
// as the SchemaCache key and as a human-facing schema version tag.
func SchemaFingerprint(source string) string {
	sum := sha256.Sum256([]byte(source))
	return strings.ToLower(base32.StdEncoding.EncodeToString(sum[:5]))[:8]
}

// SchemaCache memoizes compiled Registries by the fingerprint of their
// source text, so a service that repeatedly parses byte-identical
// schema+object payloads (common in retry paths) avoids re-lexing and
// re-validating them. Safe for concurrent use; Parse itself is not.
type SchemaCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	registry *Registry
	err      error
}

// NewSchemaCache returns an empty cache.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{entries: map[string]*cacheEntry{}}
}

// Compile returns the Registry for source. The first result stored for a
// fingerprint is returned to every later caller; concurrent first calls for
// the same source may each run Parse, and only the first result to be
// stored is kept. A cached parse failure is replayed rather than retried.
func (c *SchemaCache) Compile(source string) (*Registry, error) {
	key := SchemaFingerprint(source)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.registry, e.err
	}
	c.mu.Unlock()

	r, err := Parse(source)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.registry, e.err
	}
	c.entries[key] = &cacheEntry{registry: r, err: err}
	return r, err
}

// Len reports the number of distinct fingerprints currently cached.
func (c *SchemaCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
