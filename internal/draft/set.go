// Package draft holds the unpersisted order or sales report a user is
// building, keeping every quantity within its availability ceiling.
package draft

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// Ceiling returns the current maximum quantity for a product. It is called
// on every mutation and validation, so it must read live data.
type Ceiling func(productID string) int

// PriceLookup returns the catalog unit price for a product.
type PriceLookup func(productID string) decimal.Decimal

// Set is an ordered list of draft lines.
//
// A keyed set (NewForProducts) has one line per product and is addressed by
// product id; a row set (NewRows) may hold several lines for the same
// product, one per destination shop, and is addressed by index.
type Set struct {
	mu      sync.RWMutex
	ceiling Ceiling
	price   PriceLookup
	keyed   bool
	lines   []domain.DraftLineItem
}

// NewForProducts starts a keyed set with every product at quantity 0.
func NewForProducts(productIDs []string, ceiling Ceiling, price PriceLookup) *Set {
	s := &Set{ceiling: ceiling, price: price, keyed: true}
	s.lines = make([]domain.DraftLineItem, 0, len(productIDs))
	for _, id := range productIDs {
		s.lines = append(s.lines, domain.DraftLineItem{ProductID: id})
	}
	return s
}

// NewRows starts an empty row set.
func NewRows(ceiling Ceiling, price PriceLookup) *Set {
	return &Set{ceiling: ceiling, price: price}
}

func (s *Set) ceilingOf(productID string) int {
	if productID == "" || s.ceiling == nil {
		return 0
	}
	return s.ceiling(productID)
}

func (s *Set) indexOf(productID string) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// SetQuantity parses value and stores it clamped to [0, ceiling(productID)].
// A product not yet in the set is added. It returns the stored quantity.
func (s *Set) SetQuantity(productID, value string) int {
	return s.SetQuantityN(productID, ParseQuantity(value))
}

func (s *Set) SetQuantityN(productID string, n int) int {
	if productID == "" {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	q := Clamp(n, s.ceilingOf(productID))
	i := s.indexOf(productID)
	if i < 0 {
		s.lines = append(s.lines, domain.DraftLineItem{ProductID: productID, Quantity: q})
		return q
	}
	s.lines[i].Quantity = q
	return q
}

// Step adds delta to a product's quantity, staying within bounds.
func (s *Set) Step(productID string, delta int) int {
	return s.SetQuantityN(productID, s.Quantity(productID)+delta)
}

// Quantity is the first line's quantity for productID, 0 when absent.
func (s *Set) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// AddRow appends an empty line and returns its index.
func (s *Set) AddRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, domain.DraftLineItem{})
	return len(s.lines) - 1
}

// RemoveRow drops the line at index. Removing the last remaining line is
// allowed and leaves the set empty.
func (s *Set) RemoveRow(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return true
}

// SetRowProduct picks the product for a row, fills in its catalog price and
// re-clamps the quantity against the new product's ceiling.
func (s *Set) SetRowProduct(index int, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}
	l := &s.lines[index]
	l.ProductID = productID
	l.Price = nil
	if productID != "" && s.price != nil {
		p := s.price(productID)
		l.Price = &p
	}
	l.Quantity = Clamp(l.Quantity, s.ceilingOf(productID))
	return true
}

func (s *Set) SetRowQuantity(index int, value string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return 0
	}
	l := &s.lines[index]
	l.Quantity = Clamp(ParseQuantity(value), s.ceilingOf(l.ProductID))
	return l.Quantity
}

// SetRowPrice overrides a row's unit price. Unparseable or negative input
// stores 0.
func (s *Set) SetRowPrice(index int, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}
	p, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || p.IsNegative() {
		p = decimal.Zero
	}
	s.lines[index].Price = &p
	return true
}

func (s *Set) SetRowShop(index int, shopName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.lines) {
		return false
	}
	s.lines[index].ShopName = strings.TrimSpace(shopName)
	return true
}

// Lines returns a copy of every line, including zero-quantity ones.
func (s *Set) Lines() []domain.DraftLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DraftLineItem, len(s.lines))
	for i, l := range s.lines {
		if l.Price != nil {
			p := *l.Price
			l.Price = &p
		}
		out[i] = l
	}
	return out
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Selected returns the lines that would be submitted: a product is set and
// the quantity is positive.
func (s *Set) Selected() []domain.DraftLineItem {
	return Selected(s.Lines())
}

// TotalValue sums quantity × unit price, using a line's own price when set
// and the catalog price otherwise. It is computed on every call.
func (s *Set) TotalValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.lines {
		if l.Quantity == 0 {
			continue
		}
		total = total.Add(s.unitPrice(l).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (s *Set) unitPrice(l domain.DraftLineItem) decimal.Decimal {
	if l.Price != nil {
		return *l.Price
	}
	if l.ProductID == "" || s.price == nil {
		return decimal.Zero
	}
	return s.price(l.ProductID)
}

// Validate checks every line against the ceiling as it is now.
func (s *Set) Validate() error {
	return ValidateLines(s.Lines(), s.ceiling)
}

// Reset returns the set to how it started: a keyed set keeps its products
// at quantity 0, a row set becomes empty.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.keyed {
		s.lines = nil
		return
	}
	for i := range s.lines {
		s.lines[i] = domain.DraftLineItem{ProductID: s.lines[i].ProductID}
	}
}

// Selected filters lines to those with a product and a positive quantity.
func Selected(lines []domain.DraftLineItem) []domain.DraftLineItem {
	var out []domain.DraftLineItem
	for _, l := range lines {
		if IsSelected(l) {
			out = append(out, l)
		}
	}
	return out
}

// IsSelected reports whether a line would be submitted.
func IsSelected(l domain.DraftLineItem) bool {
	return l.ProductID != "" && l.Quantity > 0
}

// ValidateSelected checks only the selected lines against ceiling but
// numbers them by their position in lines, so errors point at the row the
// user sees.
func ValidateSelected(lines []domain.DraftLineItem, ceiling Ceiling) error {
	var bad []domain.LineError
	for i, l := range lines {
		if !IsSelected(l) {
			continue
		}
		if ceiling != nil && l.Quantity > ceiling(l.ProductID) {
			bad = append(bad, domain.LineError{
				Line:      i + 1,
				ProductID: l.ProductID,
				Reason:    fmt.Sprintf("quantity %d exceeds available %d", l.Quantity, ceiling(l.ProductID)),
			})
		}
	}
	if len(bad) > 0 {
		return &domain.ValidationError{Lines: bad}
	}
	return nil
}

// ValidateLines rejects lines with no product, a non-positive quantity, or a
// quantity above ceiling. Line numbers in the error are 1-based positions in
// lines.
func ValidateLines(lines []domain.DraftLineItem, ceiling Ceiling) error {
	var bad []domain.LineError
	for i, l := range lines {
		reason := ""
		switch {
		case l.ProductID == "":
			reason = "product is required"
		case l.Quantity <= 0:
			reason = "quantity must be greater than zero"
		case ceiling != nil && l.Quantity > ceiling(l.ProductID):
			reason = fmt.Sprintf("quantity %d exceeds available %d", l.Quantity, ceiling(l.ProductID))
		}
		if reason != "" {
			bad = append(bad, domain.LineError{Line: i + 1, ProductID: l.ProductID, Reason: reason})
		}
	}
	if len(bad) > 0 {
		return &domain.ValidationError{Lines: bad}
	}
	return nil
}
