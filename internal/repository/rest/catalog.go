package rest

import (
	"context"
	"net/url"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

type CatalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) *CatalogRepository {
	return &CatalogRepository{client: client}
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.client.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *CatalogRepository) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	if err := r.client.get(ctx, "/distributor/inventory", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	var created domain.Product
	if err := r.client.post(ctx, "/products", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CatalogRepository) UpdateStock(ctx context.Context, productID string, update domain.StockUpdate) (*domain.Product, error) {
	var updated domain.Product
	if err := r.client.put(ctx, "/products/"+url.PathEscape(productID), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CatalogRepository) UpdateInventory(ctx context.Context, update domain.InventoryUpdate) error {
	return r.client.post(ctx, "/distributor/inventory/update", update, nil)
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)
