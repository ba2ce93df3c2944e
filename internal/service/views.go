package service

import (
	"context"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/catalog"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/draft"
	"github.com/andresuchdata/b2b-portal/internal/inventory"
	"github.com/andresuchdata/b2b-portal/internal/order"
	"github.com/shopspring/decimal"
)

// newSalesRows starts a sales report with one empty row.
func newSalesRows(onHand *catalog.Cache) *draft.Set {
	s := draft.NewRows(onHand.OnHandCeiling, priceFrom(onHand))
	s.AddRow()
	return s
}

func (w *Workspace) salesDraft() *draft.Set {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.salesSet
}

func (w *Workspace) stock() (*inventory.Service, *catalog.Cache) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inventory, w.onHand
}

// SalesView is the sales report form: its rows, their total and the
// distributor's on-hand lines they draw from.
type SalesView struct {
	Rows  []domain.DraftLineItem  `json:"rows"`
	Total decimal.Decimal         `json:"total"`
	Stock []catalog.InventoryLine `json:"stock"`
}

func (w *Workspace) salesView() SalesView {
	d := w.salesDraft()
	_, onHand := w.caches()
	return SalesView{Rows: d.Lines(), Total: d.TotalValue(), Stock: onHand.Snapshot().Merged()}
}

// EnterSales refreshes the distributor's products and on-hand inventory and
// starts a fresh report with one empty row.
func (w *Workspace) EnterSales(ctx context.Context) (SalesView, error) {
	sc := w.views.Enter(ViewSales)
	_, onHand := w.caches()
	onHand.Warm(ctx)

	_, err := refreshWithin(ctx, sc, onHand)
	logRefresh(ViewSales, err)

	w.mu.Lock()
	if w.onHand == onHand && sc.Alive() {
		w.salesSet = newSalesRows(onHand)
	}
	w.mu.Unlock()
	return w.salesView(), err
}

func (w *Workspace) SalesRows() SalesView {
	return w.salesView()
}

func (w *Workspace) AddSalesRow() SalesView {
	w.salesDraft().AddRow()
	return w.salesView()
}

func (w *Workspace) RemoveSalesRow(index int) (SalesView, error) {
	if !w.salesDraft().RemoveRow(index) {
		return w.salesView(), domain.ErrNotFound
	}
	return w.salesView(), nil
}

// SalesRowPatch carries the fields to change on one row; nil fields stay.
type SalesRowPatch struct {
	ProductID *string `json:"productId"`
	Quantity  *string `json:"quantity"`
	Price     *string `json:"price"`
	ShopName  *string `json:"shopName"`
}

// UpdateSalesRow applies the product first so the quantity is clamped
// against the newly chosen product.
func (w *Workspace) UpdateSalesRow(index int, patch SalesRowPatch) (SalesView, error) {
	d := w.salesDraft()
	if index < 0 || index >= d.Len() {
		return w.salesView(), domain.ErrNotFound
	}
	if patch.ProductID != nil {
		d.SetRowProduct(index, *patch.ProductID)
	}
	if patch.Quantity != nil {
		d.SetRowQuantity(index, *patch.Quantity)
	}
	if patch.Price != nil {
		d.SetRowPrice(index, *patch.Price)
	}
	if patch.ShopName != nil {
		d.SetRowShop(index, *patch.ShopName)
	}
	return w.salesView(), nil
}

// SubmitSalesDraft reports the selected rows for date against current
// on-hand inventory. On success the form resets to one empty row and the
// inventory is refetched.
func (w *Workspace) SubmitSalesDraft(ctx context.Context, date time.Time) (*domain.SalesReport, error) {
	d := w.salesDraft()
	report, err := w.ReportSales(ctx, d.Lines(), date)
	if err != nil {
		return nil, err
	}
	d.Reset()
	d.AddRow()
	return report, nil
}

// ReportSales posts lines directly, bypassing the row draft.
func (w *Workspace) ReportSales(ctx context.Context, lines []domain.DraftLineItem, date time.Time) (*domain.SalesReport, error) {
	_, onHand := w.caches()
	report, err := w.reporter.Report(ctx, lines, onHand.Snapshot(), date)
	if err != nil {
		return nil, err
	}
	_, rerr := onHand.Refresh(ctx)
	logRefresh(ViewSales, rerr)
	return report, nil
}

// SalesTotal sums lines at their entered prices.
func SalesTotal(lines []domain.DraftLineItem) decimal.Decimal {
	return order.ReportTotal(lines)
}

// EnterInventory refreshes products and on-hand inventory for the stock views.
func (w *Workspace) EnterInventory(ctx context.Context) ([]catalog.InventoryLine, error) {
	sc := w.views.Enter(ViewInventory)
	svc, onHand := w.stock()
	onHand.Warm(ctx)
	_, err := refreshWithin(ctx, sc, onHand)
	logRefresh(ViewInventory, err)
	return svc.Lines(), err
}

func (w *Workspace) InventoryLines() []catalog.InventoryLine {
	svc, _ := w.stock()
	return svc.Lines()
}

func (w *Workspace) LowStock() []domain.Product {
	svc, _ := w.stock()
	return svc.LowStock()
}

// Restock sets a product's absolute stock from user input.
func (w *Workspace) Restock(ctx context.Context, productID, raw string) (*domain.Product, error) {
	svc, _ := w.stock()
	p, err := svc.Restock(ctx, productID, raw)
	if err == nil {
		w.refreshProducts(ctx)
	}
	return p, err
}

// AdjustStock applies a signed manual change with its reason.
func (w *Workspace) AdjustStock(ctx context.Context, productID string, delta int, reason string) (*domain.Product, error) {
	svc, _ := w.stock()
	p, err := svc.Adjust(ctx, productID, delta, reason)
	if err == nil {
		w.refreshProducts(ctx)
	}
	return p, err
}

// SetOnHand records a distributor's counted quantity for a product.
func (w *Workspace) SetOnHand(ctx context.Context, productID string, quantity int) error {
	svc, _ := w.stock()
	return svc.SetOnHand(ctx, productID, quantity)
}

// refreshProducts keeps the supplier catalog in step after a stock write.
func (w *Workspace) refreshProducts(ctx context.Context) {
	products, _ := w.caches()
	_, err := products.Refresh(ctx)
	logRefresh(ViewCatalog, err)
}
