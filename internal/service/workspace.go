// Package service wires the catalog, drafts, importer and order flows into
// one workspace per signed-in user. The portal server and the CLI both
// drive it.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/analytics"
	"github.com/andresuchdata/b2b-portal/internal/cache"
	"github.com/andresuchdata/b2b-portal/internal/catalog"
	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/draft"
	"github.com/andresuchdata/b2b-portal/internal/importer"
	"github.com/andresuchdata/b2b-portal/internal/inventory"
	"github.com/andresuchdata/b2b-portal/internal/order"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/andresuchdata/b2b-portal/internal/scope"
	"github.com/andresuchdata/b2b-portal/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// View keys for per-view scopes.
const (
	ViewCatalog   = "catalog"
	ViewSales     = "sales"
	ViewInventory = "inventory"
	ViewImports   = "imports"
)

type Deps struct {
	Session   *session.Manager
	Catalog   repository.CatalogRepository
	Orders    repository.OrderRepository
	Accounts  repository.AccountRepository
	Analytics repository.AnalyticsRepository
	Snapshots cache.SnapshotStore
	Imports   *importer.Registry
	Loader    *importer.Loader
	Location  *time.Location
}

// Workspace holds the per-session state: catalog caches, the order draft
// and the sales report rows.
type Workspace struct {
	deps  Deps
	views *scope.Views

	coordinator *order.Coordinator
	reporter    *order.SalesReporter
	lifecycle   *order.Lifecycle
	analytics   *analytics.Service

	mu        sync.Mutex
	products  *catalog.Cache // supplier catalog, ceilings are Product.stock
	onHand    *catalog.Cache // distributor view, ceilings are inventory quantity
	inventory *inventory.Service
	orderSet  *draft.Set
	salesSet  *draft.Set
}

func NewWorkspace(ctx context.Context, deps Deps) *Workspace {
	if deps.Snapshots == nil {
		deps.Snapshots = cache.NewNoopSnapshotStore()
	}
	if deps.Imports == nil {
		deps.Imports = importer.NewRegistry(deps.Catalog)
	}
	if deps.Loader == nil {
		deps.Loader = &importer.Loader{}
	}

	w := &Workspace{
		deps:        deps,
		views:       scope.NewViews(ctx),
		coordinator: order.NewCoordinator(deps.Orders),
		reporter:    order.NewSalesReporter(deps.Orders),
		lifecycle:   order.NewLifecycle(deps.Orders),
		analytics:   analytics.NewService(deps.Analytics, deps.Location),
	}
	w.Reset()
	return w
}

// Reset discards every cache, draft and open view; call it when the
// signed-in user changes.
func (w *Workspace) Reset() {
	w.views.CloseAll()

	owner := "anonymous"
	if s := w.deps.Session; s != nil {
		if u := s.Current().User; u != nil {
			owner = u.ID
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.products = catalog.New(w.deps.Catalog, catalog.WithMirror(w.deps.Snapshots, "products:"+owner))
	w.onHand = catalog.New(w.deps.Catalog, catalog.WithInventory(), catalog.WithMirror(w.deps.Snapshots, "inventory:"+owner))
	w.inventory = inventory.NewService(w.deps.Catalog, w.onHand)
	w.orderSet = draft.NewForProducts(nil, w.products.StockCeiling, priceFrom(w.products))
	w.salesSet = newSalesRows(w.onHand)
}

// Close cancels every view's outstanding work.
func (w *Workspace) Close() {
	w.views.CloseAll()
}

func (w *Workspace) caches() (*catalog.Cache, *catalog.Cache) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.products, w.onHand
}

// LeaveView cancels a view's in-flight requests.
func (w *Workspace) LeaveView(name string) {
	w.views.Leave(name)
}

// EnterCatalog is the route-enter for ordering: it refreshes the supplier
// catalog under a fresh view scope and starts an empty order draft. The
// previous snapshot stays on a failed refresh.
func (w *Workspace) EnterCatalog(ctx context.Context) (*catalog.Snapshot, error) {
	sc := w.views.Enter(ViewCatalog)
	products, _ := w.caches()
	products.Warm(ctx)

	snap, err := refreshWithin(ctx, sc, products)

	w.mu.Lock()
	if w.products == products && sc.Alive() {
		ids := make([]string, len(snap.Products))
		for i, p := range snap.Products {
			ids[i] = p.ID
		}
		w.orderSet = draft.NewForProducts(ids, products.StockCeiling, priceFrom(products))
	}
	w.mu.Unlock()
	return snap, err
}

// refreshWithin runs a refresh bound to both the request and the view scope.
func refreshWithin(ctx context.Context, sc *scope.Scope, c *catalog.Cache) (*catalog.Snapshot, error) {
	rctx, cancel := context.WithCancel(sc.Context())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return c.Refresh(rctx)
}

func priceFrom(c *catalog.Cache) draft.PriceLookup {
	return func(productID string) decimal.Decimal {
		return c.Snapshot().Price(productID)
	}
}

// SearchCatalog filters the current supplier snapshot.
func (w *Workspace) SearchCatalog(query string) []domain.Product {
	products, _ := w.caches()
	return products.Snapshot().Search(query)
}

// DraftView is the order draft as shown to the user.
type DraftView struct {
	Lines []domain.DraftLineItem `json:"lines"`
	Total decimal.Decimal        `json:"total"`
}

func (w *Workspace) orderDraft() *draft.Set {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orderSet
}

// SetDraftQuantity clamps value against the product's current stock.
func (w *Workspace) SetDraftQuantity(productID, value string) (int, decimal.Decimal) {
	d := w.orderDraft()
	q := d.SetQuantity(productID, value)
	return q, d.TotalValue()
}

// StepDraftQuantity nudges a line by delta, clamped like SetDraftQuantity.
func (w *Workspace) StepDraftQuantity(productID string, delta int) (int, decimal.Decimal) {
	d := w.orderDraft()
	q := d.Step(productID, delta)
	return q, d.TotalValue()
}

func (w *Workspace) Draft() DraftView {
	d := w.orderDraft()
	return DraftView{Lines: d.Lines(), Total: d.TotalValue()}
}

// SubmitDraft sends the order draft. The draft is cleared only when the
// remote API accepts the order.
func (w *Workspace) SubmitDraft(ctx context.Context, shopName string) (*domain.Order, error) {
	d := w.orderDraft()
	products, _ := w.caches()

	o, err := w.coordinator.Submit(ctx, d.Lines(), shopName, products.StockCeiling)
	if err != nil {
		return nil, err
	}
	d.Reset()
	return o, nil
}

// Orders lists orders newest first.
func (w *Workspace) Orders(ctx context.Context) ([]domain.Order, error) {
	return w.lifecycle.List(ctx)
}

func (w *Workspace) SetOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	return w.lifecycle.SetStatus(ctx, orderID, status)
}

// AdvanceOrder moves an order one step along the usual status flow.
func (w *Workspace) AdvanceOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	orders, err := w.lifecycle.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return w.lifecycle.Advance(ctx, o)
		}
	}
	return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
}

func (w *Workspace) PayOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return w.lifecycle.Pay(ctx, orderID)
}

func (w *Workspace) VerifyPayment(ctx context.Context, orderID string) (*domain.Order, error) {
	return w.lifecycle.VerifyPayment(ctx, orderID)
}

func (w *Workspace) CompanyAnalytics(ctx context.Context) (*domain.CompanyAnalytics, error) {
	return w.analytics.Company(ctx)
}

func (w *Workspace) SalesCalendar(ctx context.Context, distributorID string, year int, month time.Month) (*domain.SalesCalendar, error) {
	return w.analytics.Calendar(ctx, distributorID, year, month)
}

func logRefresh(view string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("view", view).Msg("view refresh failed")
	}
}
