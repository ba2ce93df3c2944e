package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is one complete, immutable catalog read. Readers hold a pointer
// to it; a refresh swaps in a new one and never touches an existing one.
type Snapshot struct {
	Products     []domain.Product
	HasInventory bool
	FetchedAt    time.Time

	byID      map[string]int
	inventory map[string]domain.InventoryRecord
}

func newSnapshot(products []domain.Product, inventory []domain.InventoryRecord, withInventory bool, at time.Time) *Snapshot {
	s := &Snapshot{
		Products:     products,
		HasInventory: withInventory,
		FetchedAt:    at,
		byID:         make(map[string]int, len(products)),
		inventory:    make(map[string]domain.InventoryRecord, len(inventory)),
	}
	for i, p := range products {
		s.byID[p.ID] = i
	}
	for _, rec := range inventory {
		if rec.Product.ID == "" {
			continue
		}
		s.inventory[rec.Product.ID] = rec
	}
	return s
}

func emptySnapshot() *Snapshot {
	return newSnapshot(nil, nil, false, time.Time{})
}

// Loaded reports whether the snapshot came from a fetch (or a mirror of one).
func (s *Snapshot) Loaded() bool {
	return !s.FetchedAt.IsZero()
}

func (s *Snapshot) Product(id string) (domain.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.Products[i], true
}

// Price is the catalog unit price, zero for unknown products.
func (s *Snapshot) Price(id string) decimal.Decimal {
	p, ok := s.Product(id)
	if !ok {
		return decimal.Zero
	}
	return p.Price
}

// Stock is what the company can ship. Unknown products have none.
func (s *Snapshot) Stock(id string) int {
	p, ok := s.Product(id)
	if !ok || p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// OnHand is the distributor's own quantity, 0 without a record.
func (s *Snapshot) OnHand(id string) int {
	rec, ok := s.inventory[id]
	if !ok || rec.Quantity < 0 {
		return 0
	}
	return rec.Quantity
}

// Inventory returns the raw records in product order, then any records for
// products missing from the product list.
func (s *Snapshot) Inventory() []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(s.inventory))
	seen := make(map[string]bool, len(s.inventory))
	for _, p := range s.Products {
		if rec, ok := s.inventory[p.ID]; ok {
			out = append(out, rec)
			seen[p.ID] = true
		}
	}
	var orphans []domain.InventoryRecord
	for id, rec := range s.inventory {
		if !seen[id] {
			orphans = append(orphans, rec)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Product.ID < orphans[j].Product.ID })
	return append(out, orphans...)
}

// Search matches name, SKU and category case-insensitively. An empty query
// returns every product.
func (s *Snapshot) Search(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Products
	}
	var out []domain.Product
	for _, p := range s.Products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// InventoryLine is a product joined with what the distributor holds.
type InventoryLine struct {
	Product domain.Product     `json:"product"`
	OnHand  int                `json:"onHand"`
	Status  domain.StockStatus `json:"status"`
}

// Merged lists every catalog product with its on-hand quantity; a product
// without an inventory record shows 0.
func (s *Snapshot) Merged() []InventoryLine {
	out := make([]InventoryLine, 0, len(s.Products))
	for _, p := range s.Products {
		n := s.OnHand(p.ID)
		out = append(out, InventoryLine{Product: p, OnHand: n, Status: domain.StockStatusOf(n)})
	}
	return out
}
