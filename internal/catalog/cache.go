// Package catalog serves product listings from a time-bounded in-memory
// snapshot to keep database load flat under read-heavy traffic.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/localbasket/storefront/internal/domain/product"
)

// Cache is a read-through cache holding one global snapshot of the catalog.
// Invalidation is purely time-based: an edit to a product is not visible
// until the TTL elapses. There is no per-key eviction, the catalog is
// small and low-churn.
type Cache struct {
	repo product.Repository
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	snapshot  []product.Product
	fetchedAt time.Time
}

// New creates a Cache over the given repository. A non-positive ttl
// defaults to 5 minutes.
func New(repo product.Repository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// List returns the product catalog and whether it was served from the
// snapshot. A stale or empty snapshot triggers a refetch; concurrent
// expiry may refetch more than once, which is harmless.
func (c *Cache) List(ctx context.Context) ([]product.Product, bool, error) {
	c.mu.RLock()
	snapshot, fetchedAt := c.snapshot, c.fetchedAt
	c.mu.RUnlock()

	if snapshot != nil && c.now().Sub(fetchedAt) < c.ttl {
		return snapshot, true, nil
	}

	fresh, err := c.repo.List(ctx)
	if err != nil {
		// Serve the stale snapshot over an error when we have one.
		if snapshot != nil {
			return snapshot, true, nil
		}
		return nil, false, errors.Wrap(err, "list products")
	}

	c.mu.Lock()
	c.snapshot = fresh
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return fresh, false, nil
}
