// Package inventory changes supplier stock and distributor on-hand counts.
// The two are independent counters; nothing here moves one into the other.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/catalog"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/draft"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/rs/zerolog/log"
)

// Service writes through the remote API, then refreshes the catalog so
// readers see the server's numbers rather than a local guess.
type Service struct {
	repo    repository.CatalogRepository
	catalog *catalog.Cache
}

func NewService(repo repository.CatalogRepository, cache *catalog.Cache) *Service {
	return &Service{repo: repo, catalog: cache}
}

// Restock sets a product's absolute stock. raw must start with a
// non-negative integer.
func (s *Service) Restock(ctx context.Context, productID, raw string) (*domain.Product, error) {
	n, ok := draft.ParseLeadingInt(raw)
	if !ok || n < 0 {
		return nil, domain.NewValidationError("Invalid stock value")
	}
	return s.update(ctx, productID, domain.StockUpdate{Stock: &n})
}

// Adjust records a signed stock change with a reason.
func (s *Service) Adjust(ctx context.Context, productID string, delta int, reason string) (*domain.Product, error) {
	if delta == 0 {
		return nil, domain.NewValidationError("adjustment must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("a reason is required for stock adjustments")
	}
	return s.update(ctx, productID, domain.StockUpdate{Adjustment: &delta, Reason: reason})
}

func (s *Service) update(ctx context.Context, productID string, u domain.StockUpdate) (*domain.Product, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product id is required")
	}
	p, err := s.repo.UpdateStock(ctx, productID, u)
	if err != nil {
		return nil, fmt.Errorf("update stock for %s: %w", productID, err)
	}
	log.Info().Str("product_id", productID).Int("stock", p.Stock).Msg("stock updated")
	s.refresh(ctx)
	return p, nil
}

// SetOnHand replaces the distributor's on-hand quantity for a product.
func (s *Service) SetOnHand(ctx context.Context, productID string, quantity int) error {
	if productID == "" {
		return domain.NewValidationError("product id is required")
	}
	if quantity < 0 {
		return domain.NewValidationError("quantity must not be negative")
	}
	if err := s.repo.UpdateInventory(ctx, domain.InventoryUpdate{ProductID: productID, Quantity: quantity}); err != nil {
		return fmt.Errorf("update inventory for %s: %w", productID, err)
	}
	s.refresh(ctx)
	return nil
}

// Lines is the merged product × on-hand view from the current snapshot.
func (s *Service) Lines() []catalog.InventoryLine {
	return s.catalog.Snapshot().Merged()
}

// LowStock lists products whose supplier stock is below the threshold.
func (s *Service) LowStock() []domain.Product {
	var out []domain.Product
	for _, p := range s.catalog.Snapshot().Products {
		if domain.StockStatusOf(p.Stock) != domain.StockIn {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) refresh(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if _, err := s.catalog.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog refresh after stock change failed")
	}
}
