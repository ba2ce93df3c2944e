// Package catalog holds the last fetched product list and, for distributor
// views, the distributor's on-hand inventory.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/cache"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Cache is a read-through holder of the current Snapshot. It has no TTL and
// no mutation methods; writes go through the remote API and are observed by
// the next Refresh.
//
// Overlapping refreshes are not sequenced: whichever response resolves last
// is installed, even if it was issued first.
type Cache struct {
	repo          repository.CatalogRepository
	withInventory bool
	mirror        cache.SnapshotStore
	mirrorScope   string
	now           func() time.Time

	current atomic.Pointer[Snapshot]
}

type Option func(*Cache)

// WithInventory makes Refresh also fetch the distributor's inventory.
func WithInventory() Option {
	return func(c *Cache) { c.withInventory = true }
}

// WithMirror persists every installed snapshot under scope and lets Warm
// start from the last one.
func WithMirror(store cache.SnapshotStore, scope string) Option {
	return func(c *Cache) {
		c.mirror = store
		c.mirrorScope = scope
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(repo repository.CatalogRepository, opts ...Option) *Cache {
	c := &Cache{
		repo:   repo,
		mirror: cache.NewNoopSnapshotStore(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(emptySnapshot())
	return c
}

// Snapshot returns the current snapshot; never nil.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Refresh fetches products (and inventory, when enabled) concurrently and
// installs the result. On failure the previous snapshot stays and the error
// matches domain.ErrFetchFailed. If ctx is done by the time the responses
// arrive, they are dropped.
func (c *Cache) Refresh(ctx context.Context) (*Snapshot, error) {
	var (
		products  []domain.Product
		inventory []domain.InventoryRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.repo.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	if c.withInventory {
		g.Go(func() error {
			var err error
			inventory, err = c.repo.ListInventory(gctx)
			if err != nil {
				return fmt.Errorf("list inventory: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return c.Snapshot(), ctx.Err()
		}
		log.Warn().Err(err).Msg("catalog refresh failed")
		return c.Snapshot(), fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return c.Snapshot(), err
	}

	snap := newSnapshot(products, inventory, c.withInventory, c.now())
	c.current.Store(snap)

	log.Debug().
		Int("products", len(products)).
		Int("inventory", len(inventory)).
		Msg("catalog refreshed")

	c.saveMirror(ctx, snap)
	return snap, nil
}

// Warm installs the mirrored snapshot if nothing has been fetched yet. It
// never replaces a snapshot from a real refresh.
func (c *Cache) Warm(ctx context.Context) bool {
	empty := c.Snapshot()
	if empty.Loaded() {
		return false
	}

	stored, ok, err := c.mirror.Load(ctx, c.mirrorScope)
	if err != nil {
		log.Warn().Err(err).Msg("catalog mirror load failed")
		return false
	}
	if !ok {
		return false
	}

	snap := newSnapshot(stored.Products, stored.Inventory, c.withInventory && stored.Inventory != nil, stored.FetchedAt)
	return c.current.CompareAndSwap(empty, snap)
}

func (c *Cache) saveMirror(ctx context.Context, snap *Snapshot) {
	err := c.mirror.Save(ctx, c.mirrorScope, &cache.CatalogSnapshot{
		Products:  snap.Products,
		Inventory: snap.Inventory(),
		FetchedAt: snap.FetchedAt,
	})
	if err != nil {
		log.Warn().Err(err).Msg("catalog mirror save failed")
	}
}

// Forget removes this cache's mirrored snapshot so the next user of the
// scope starts cold. The in-memory snapshot is left alone.
func (c *Cache) Forget(ctx context.Context) {
	if err := c.mirror.Invalidate(ctx, c.mirrorScope); err != nil {
		log.Warn().Err(err).Str("scope", c.mirrorScope).Msg("catalog mirror invalidate failed")
	}
}

// StockCeiling reads Product.stock from whatever snapshot is current at call
// time. Use it as a draft ceiling for supply orders.
func (c *Cache) StockCeiling(productID string) int {
	return c.Snapshot().Stock(productID)
}

// OnHandCeiling is the draft ceiling for sales reports.
func (c *Cache) OnHandCeiling(productID string) int {
	return c.Snapshot().OnHand(productID)
}
