package rest

import (
	"context"
	"net/url"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

type OrderRepository struct {
	client *Client
}

func NewOrderRepository(client *Client) *OrderRepository {
	return &OrderRepository{client: client}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := r.client.post(ctx, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := r.client.get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	body := map[string]domain.OrderStatus{"status": status}
	if err := r.client.put(ctx, orderPath(orderID, "status"), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) PayOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := r.client.put(ctx, orderPath(orderID, "pay"), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) VerifyPayment(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := r.client.put(ctx, orderPath(orderID, "verify-payment"), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ReportSales(ctx context.Context, report domain.SalesReport) error {
	return r.client.post(ctx, "/distributor/sales/report", report, nil)
}

func orderPath(orderID, action string) string {
	return "/orders/" + url.PathEscape(orderID) + "/" + action
}

var _ repository.OrderRepository = (*OrderRepository)(nil)
