package order

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/draft"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Availability is the distributor's on-hand view; catalog.Snapshot
// satisfies it.
type Availability interface {
	Product(productID string) (domain.Product, bool)
	Price(productID string) decimal.Decimal
	OnHand(productID string) int
}

// SalesReporter posts a distributor's downstream sales against its inventory.
type SalesReporter struct {
	orders repository.OrderRepository
	now    func() time.Time
}

func NewSalesReporter(orders repository.OrderRepository) *SalesReporter {
	return &SalesReporter{orders: orders, now: time.Now}
}

// Report validates each selected line against on-hand inventory and posts
// the batch. Lines without a price take the catalog price; a zero date
// means today.
func (r *SalesReporter) Report(ctx context.Context, lines []domain.DraftLineItem, stock Availability, date time.Time) (*domain.SalesReport, error) {
	selected := draft.Selected(lines)
	if len(selected) == 0 {
		return nil, domain.ErrEmptySelection
	}

	var bad []domain.LineError
	items := make([]domain.DraftLineItem, 0, len(selected))
	for i, l := range lines {
		if !draft.IsSelected(l) {
			continue
		}
		available := stock.OnHand(l.ProductID)
		if l.Quantity > available {
			name := l.ProductID
			if p, ok := stock.Product(l.ProductID); ok && p.Name != "" {
				name = p.Name
			}
			bad = append(bad, domain.LineError{
				Line:      i + 1,
				ProductID: l.ProductID,
				Reason:    fmt.Sprintf("Insufficient stock for %s. Available: %d", name, available),
			})
		}

		if l.Price == nil {
			p := stock.Price(l.ProductID)
			l.Price = &p
		}
		items = append(items, l)
	}
	if len(bad) > 0 {
		return nil, &domain.ValidationError{Lines: bad}
	}

	if date.IsZero() {
		date = r.now()
	}
	report := domain.SalesReport{Items: items, Date: date}
	if err := r.orders.ReportSales(ctx, report); err != nil {
		return nil, fmt.Errorf("report sales: %w", err)
	}

	log.Info().Int("items", len(items)).Time("date", date).Msg("sales reported")
	return &report, nil
}

// ReportTotal sums quantity × price over a report's items.
func ReportTotal(items []domain.DraftLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Price == nil {
			continue
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
