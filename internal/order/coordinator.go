// Package order turns drafts into remote orders and sales reports and
// drives the order lifecycle.
package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/draft"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/rs/zerolog/log"
)

// Coordinator sends one draft as exactly one order-creation request. It
// never changes the lines it is given; clearing the draft after a success
// is the caller's job.
type Coordinator struct {
	orders repository.OrderRepository
}

func NewCoordinator(orders repository.OrderRepository) *Coordinator {
	return &Coordinator{orders: orders}
}

// Submit keeps lines with a product and a positive quantity, checks them
// against ceiling as it reads now, and posts them. Nothing selected yields
// domain.ErrEmptySelection without a network call. A nil ceiling skips the
// availability check.
func (c *Coordinator) Submit(ctx context.Context, lines []domain.DraftLineItem, shopName string, ceiling draft.Ceiling) (*domain.Order, error) {
	selected := draft.Selected(lines)
	if len(selected) == 0 {
		return nil, domain.ErrEmptySelection
	}
	if err := draft.ValidateSelected(lines, ceiling); err != nil {
		return nil, err
	}

	items := make([]domain.DraftLineItem, len(selected))
	for i, l := range selected {
		items[i] = domain.DraftLineItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	req := domain.OrderRequest{Items: items, ShopName: strings.TrimSpace(shopName)}
	order, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		log.Warn().Err(err).Int("items", len(items)).Msg("order submission rejected")
		return nil, fmt.Errorf("submit order: %w", err)
	}

	log.Info().Str("order_id", order.ID).Int("items", len(items)).Msg("order submitted")
	return order, nil
}
