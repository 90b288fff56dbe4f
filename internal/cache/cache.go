package cache

import (
	"context"
	"fmt"
	"net/url"
)

// Store defines the interface for the rendered-view cache
type Store interface {
	// Get returns the cached value for key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key and registers key under every tag
	Set(ctx context.Context, key string, value []byte, tags ...string) error

	// Invalidate advances the generation of tag, then purges every key
	// registered under it
	Invalidate(ctx context.Context, tag string) error

	// Generation returns how many times tag has been invalidated. Readers
	// take it before loading the data they will cache and fold it into
	// the key, so a page loaded before an invalidation is never served
	// after it.
	Generation(ctx context.Context, tag string) (int64, error)

	// Health checks if the cache is reachable
	Health(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}

// ListingKey derives the cache key of one invoice listing page from the
// search state that produced it and the invoices tag generation it was
// read under.
func ListingKey(generation int64, query string, page int) string {
	return fmt.Sprintf("invoices:list:%d:%d:%s", generation, page, url.QueryEscape(query))
}
