package domain

import "strings"

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCanceled  OrderStatus = "Canceled"
)

var orderStatusNext = map[OrderStatus]OrderStatus{
	OrderPending:   OrderConfirmed,
	OrderConfirmed: OrderShipped,
	OrderShipped:   OrderDelivered,
}

var orderStatusCodes = map[string]OrderStatus{
	"pending":   OrderPending,
	"confirmed": OrderConfirmed,
	"shipped":   OrderShipped,
	"delivered": OrderDelivered,
	"canceled":  OrderCanceled,
	"cancelled": OrderCanceled,
}

// NextOrderStatus returns the status a company would move the order to next.
// The remote API owns the state machine; this only drives what is offered.
func NextOrderStatus(s OrderStatus) (OrderStatus, bool) {
	next, ok := orderStatusNext[s]
	return next, ok
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	s, ok := orderStatusCodes[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "Pending"
	PaymentVerificationPending PaymentStatus = "Verification Pending"
	PaymentPaid                PaymentStatus = "Paid"
)

// CanPay reports whether a distributor may submit payment for the order.
func (o Order) CanPay() bool {
	return o.PaymentStatus != PaymentPaid &&
		o.PaymentStatus != PaymentVerificationPending &&
		o.Status != OrderCanceled
}

type DistributorStatus string

const (
	DistributorPending   DistributorStatus = "Pending"
	DistributorActive    DistributorStatus = "Active"
	DistributorSuspended DistributorStatus = "Suspended"
	DistributorRejected  DistributorStatus = "Rejected"
)

var distributorStatusCodes = map[string]DistributorStatus{
	"pending":   DistributorPending,
	"active":    DistributorActive,
	"suspended": DistributorSuspended,
	"rejected":  DistributorRejected,
}

func ParseDistributorStatus(label string) (DistributorStatus, bool) {
	s, ok := distributorStatusCodes[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// LowStockThreshold is the stock level below which a product is flagged.
const LowStockThreshold = 10

type StockStatus string

const (
	StockOut StockStatus = "Out of Stock"
	StockLow StockStatus = "Low Stock"
	StockIn  StockStatus = "In Stock"
)

func StockStatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOut
	case stock < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}
