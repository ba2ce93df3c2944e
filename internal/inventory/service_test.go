package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/andresuchdata/b2b-portal/internal/catalog"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	products  []domain.Product
	inventory []domain.InventoryRecord
	updates   []domain.StockUpdate
	invWrites []domain.InventoryUpdate
	err       error
}

func (f *fakeRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeRepo) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return f.inventory, nil
}

func (f *fakeRepo) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) UpdateStock(ctx context.Context, id string, u domain.StockUpdate) (*domain.Product, error) {
	f.updates = append(f.updates, u)
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.products {
		if f.products[i].ID != id {
			continue
		}
		if u.Stock != nil {
			f.products[i].Stock = *u.Stock
		}
		if u.Adjustment != nil {
			f.products[i].Stock += *u.Adjustment
		}
		p := f.products[i]
		return &p, nil
	}
	return nil, &domain.RemoteError{Status: 404, Message: "Product not found"}
}

func (f *fakeRepo) UpdateInventory(ctx context.Context, u domain.InventoryUpdate) error {
	f.invWrites = append(f.invWrites, u)
	if f.err != nil {
		return f.err
	}
	f.inventory = []domain.InventoryRecord{{Product: domain.Ref{ID: u.ProductID}, Quantity: u.Quantity}}
	return nil
}

func newService(repo *fakeRepo) (*Service, *catalog.Cache) {
	c := catalog.New(repo, catalog.WithInventory())
	return NewService(repo, c), c
}

func TestRestock_ValidatesAndRefreshes(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{{ID: "P1", Name: "Widget", Stock: 2}}}
	s, c := newService(repo)

	_, err := s.Restock(context.Background(), "P1", "abc")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	_, err = s.Restock(context.Background(), "P1", "-4")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Empty(t, repo.updates)

	p, err := s.Restock(context.Background(), "P1", "25")
	require.NoError(t, err)
	assert.Equal(t, 25, p.Stock)
	assert.Equal(t, 25, c.StockCeiling("P1"))
}

func TestAdjust_RequiresReasonAndDelta(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{{ID: "P1", Stock: 10}}}
	s, _ := newService(repo)

	_, err := s.Adjust(context.Background(), "P1", 0, "count")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	_, err = s.Adjust(context.Background(), "P1", -3, "  ")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	p, err := s.Adjust(context.Background(), "P1", -3, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 7, p.Stock)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, "damaged", repo.updates[0].Reason)
	assert.Nil(t, repo.updates[0].Stock)
}

func TestUpdate_RemoteFailureLeavesSnapshot(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{{ID: "P1", Stock: 10}}}
	s, c := newService(repo)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	repo.err = &domain.RemoteError{Status: 403, Message: "Forbidden"}
	_, err = s.Restock(context.Background(), "P1", "3")
	assert.ErrorIs(t, err, domain.ErrRemoteRejected)
	assert.Equal(t, 10, c.StockCeiling("P1"))
}

func TestSetOnHand_UpdatesInventoryNotStock(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{{ID: "P1", Stock: 40}}}
	s, c := newService(repo)

	assert.ErrorIs(t, s.SetOnHand(context.Background(), "P1", -1), domain.ErrValidationFailed)

	require.NoError(t, s.SetOnHand(context.Background(), "P1", 6))
	assert.Equal(t, 6, c.OnHandCeiling("P1"))
	assert.Equal(t, 40, c.StockCeiling("P1"))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].OnHand)
	assert.Equal(t, domain.StockLow, lines[0].Status)
}

func TestLowStock(t *testing.T) {
	repo := &fakeRepo{products: []domain.Product{
		{ID: "P1", Stock: 0}, {ID: "P2", Stock: 9}, {ID: "P3", Stock: 10},
	}}
	s, c := newService(repo)
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	low := s.LowStock()
	require.Len(t, low, 2)
	assert.Equal(t, "P1", low[0].ID)
	assert.Equal(t, "P2", low[1].ID)
}
