package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/cache"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu           sync.Mutex
	products     []domain.Product
	inventory    []domain.InventoryRecord
	productsErr  error
	inventoryErr error
	release      chan struct{}
	calls        int
}

func (f *fakeRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	products, err := f.products, f.productsErr
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return products, err
}

func (f *fakeRepo) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inventory, f.inventoryErr
}

func (f *fakeRepo) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) UpdateStock(ctx context.Context, id string, u domain.StockUpdate) (*domain.Product, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) UpdateInventory(ctx context.Context, u domain.InventoryUpdate) error {
	return errors.New("not used")
}

func product(id, name string, stock int, price string) domain.Product {
	return domain.Product{ID: id, Name: name, SKU: "SKU-" + id, Stock: stock, Price: decimal.RequireFromString(price)}
}

func TestCache_RefreshInstallsSnapshot(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{product("P1", "Widget", 5, "10")}}
	c := New(repo)

	assert.False(t, c.Snapshot().Loaded())
	assert.Equal(t, 0, c.StockCeiling("P1"))

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Loaded())
	assert.Same(t, snap, c.Snapshot())
	assert.Equal(t, 5, c.StockCeiling("P1"))
	assert.True(t, decimal.RequireFromString("10").Equal(snap.Price("P1")))
	assert.Equal(t, 0, c.StockCeiling("missing"))
}

func TestCache_FailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{product("P1", "Widget", 5, "10")}}
	c := New(repo, WithInventory())

	first, err := c.Refresh(context.Background())
	require.NoError(t, err)

	repo.inventoryErr = errors.New("connection refused")
	repo.products = []domain.Product{product("P1", "Widget", 99, "10")}

	got, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Same(t, first, got)
	assert.Same(t, first, c.Snapshot())
	assert.Equal(t, 5, c.StockCeiling("P1"))
}

func TestCache_CancelledRefreshDropsLateResponse(t *testing.T) {
	repo := &fakeRepo{
		products: []domain.Product{product("P1", "Widget", 5, "10")},
		release:  make(chan struct{}),
	}
	c := New(repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Refresh(ctx)
		done <- err
	}()

	cancel()
	close(repo.release)

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.Snapshot().Loaded())
}

func TestCache_LastResponseWins(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{product("P1", "Widget", 5, "10")}}
	c := New(repo)

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	repo.products = []domain.Product{product("P1", "Widget", 2, "10")}
	_, err = c.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, c.StockCeiling("P1"))
}

func TestCache_InventoryIsIndependentOfStock(t *testing.T) {
	repo := &fakeRepo{
		products: []domain.Product{
			product("P1", "Widget", 50, "10"),
			product("P2", "Gadget", 0, "4.5"),
		},
		inventory: []domain.InventoryRecord{
			{Product: domain.Ref{ID: "P1", Name: "Widget"}, Quantity: 3},
			{Product: domain.Ref{ID: "P9"}, Quantity: 7},
		},
	}
	c := New(repo, WithInventory())

	snap, err := c.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, c.StockCeiling("P1"))
	assert.Equal(t, 3, c.OnHandCeiling("P1"))
	assert.Equal(t, 0, c.OnHandCeiling("P2"))

	merged := snap.Merged()
	require.Len(t, merged, 2)
	assert.Equal(t, 3, merged[0].OnHand)
	assert.Equal(t, domain.StockLow, merged[0].Status)
	assert.Equal(t, 0, merged[1].OnHand)
	assert.Equal(t, domain.StockOut, merged[1].Status)

	records := snap.Inventory()
	require.Len(t, records, 2)
	assert.Equal(t, "P1", records[0].Product.ID)
	assert.Equal(t, "P9", records[1].Product.ID)
}

func TestSnapshot_Search(t *testing.T) {
	p1 := product("P1", "Blue Widget", 1, "1")
	p1.Category = "Hardware"
	p2 := product("P2", "Gadget", 1, "1")
	p2.SKU = "GAD-001"
	snap := newSnapshot([]domain.Product{p1, p2}, nil, false, time.Now())

	assert.Len(t, snap.Search(""), 2)
	assert.Equal(t, []domain.Product{p1}, snap.Search("widget"))
	assert.Equal(t, []domain.Product{p1}, snap.Search("HARD"))
	assert.Equal(t, []domain.Product{p2}, snap.Search("gad-0"))
	assert.Empty(t, snap.Search("nothing"))
}

type memMirror struct {
	saved map[string]*cache.CatalogSnapshot
}

func (m *memMirror) Load(ctx context.Context, scope string) (*cache.CatalogSnapshot, bool, error) {
	s, ok := m.saved[scope]
	return s, ok, nil
}

func (m *memMirror) Save(ctx context.Context, scope string, snap *cache.CatalogSnapshot) error {
	m.saved[scope] = snap
	return nil
}

func (m *memMirror) Invalidate(ctx context.Context, scope string) error {
	delete(m.saved, scope)
	return nil
}

func (m *memMirror) InvalidateAll(ctx context.Context) error {
	m.saved = map[string]*cache.CatalogSnapshot{}
	return nil
}

func TestCache_WarmFromMirror(t *testing.T) {
	mirror := &memMirror{saved: map[string]*cache.CatalogSnapshot{}}
	repo := &fakeRepo{products: []domain.Product{product("P1", "Widget", 5, "10")}}

	first := New(repo, WithMirror(mirror, "distributor:u1"))
	_, err := first.Refresh(context.Background())
	require.NoError(t, err)
	require.Contains(t, mirror.saved, "distributor:u1")

	second := New(repo, WithMirror(mirror, "distributor:u1"))
	assert.True(t, second.Warm(context.Background()))
	assert.Equal(t, 5, second.StockCeiling("P1"))

	// a fetched snapshot is never replaced by the mirror
	assert.False(t, second.Warm(context.Background()))
}

func TestCache_ForgetDropsOnlyItsMirror(t *testing.T) {
	mirror := &memMirror{saved: map[string]*cache.CatalogSnapshot{}}
	repo := &fakeRepo{products: []domain.Product{product("P1", "Widget", 5, "10")}}

	mine := New(repo, WithMirror(mirror, "products:u1"))
	other := New(repo, WithMirror(mirror, "products:u2"))
	_, err := mine.Refresh(context.Background())
	require.NoError(t, err)
	_, err = other.Refresh(context.Background())
	require.NoError(t, err)

	mine.Forget(context.Background())
	assert.NotContains(t, mirror.saved, "products:u1")
	assert.Contains(t, mirror.saved, "products:u2")

	fresh := New(repo, WithMirror(mirror, "products:u1"))
	assert.False(t, fresh.Warm(context.Background()))
}
