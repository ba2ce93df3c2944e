package order

import (
	"context"
	"fmt"
	"sort"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

// Lifecycle lists orders and requests status and payment transitions. The
// remote API owns the state machine; this only forwards requests.
type Lifecycle struct {
	orders repository.OrderRepository
}

func NewLifecycle(orders repository.OrderRepository) *Lifecycle {
	return &Lifecycle{orders: orders}
}

// List returns orders newest first.
func (l *Lifecycle) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := l.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", domain.ErrFetchFailed, err)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// SetStatus accepts a status label in any case.
func (l *Lifecycle) SetStatus(ctx context.Context, orderID, label string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	status, ok := domain.ParseOrderStatus(label)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown order status %q", label))
	}
	order, err := l.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}
	return order, nil
}

// Advance moves an order to the next status in the usual flow.
func (l *Lifecycle) Advance(ctx context.Context, o domain.Order) (*domain.Order, error) {
	next, ok := domain.NextOrderStatus(o.Status)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("order in status %s cannot advance", o.Status))
	}
	return l.SetStatus(ctx, o.ID, string(next))
}

func (l *Lifecycle) Pay(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	order, err := l.orders.PayOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("pay order %s: %w", orderID, err)
	}
	return order, nil
}

func (l *Lifecycle) VerifyPayment(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	order, err := l.orders.VerifyPayment(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", orderID, err)
	}
	return order, nil
}
