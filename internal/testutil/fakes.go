// Package testutil holds in-memory stand-ins for the remote API used by
// service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// Remote is an in-memory remote API. It implements every repository
// interface. Set Fail to make the next calls error.
type Remote struct {
	mu sync.Mutex

	Products  map[string]domain.Product
	Inventory map[string]int
	Orders    []domain.OrderRequest
	Sales     []domain.SalesReport
	Shops     []domain.Shop
	Employees []domain.Employee
	Users     map[string]domain.User // by token
	Fail      error

	ProductCalls int
	created      int
}

func NewRemote() *Remote {
	return &Remote{
		Products:  map[string]domain.Product{},
		Inventory: map[string]int{},
		Users:     map[string]domain.User{},
	}
}

// AddProduct seeds a product with a price and supplier stock.
func (r *Remote) AddProduct(id, name, price string, stock int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Products[id] = domain.Product{ID: id, Name: name, SKU: "SKU-" + id, Price: decimal.RequireFromString(price), Stock: stock}
}

func (r *Remote) SetInventory(id string, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Inventory[id] = qty
}

func (r *Remote) SetFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fail = err
}

func (r *Remote) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ProductCalls
}

func (r *Remote) OrderRequests() []domain.OrderRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderRequest(nil), r.Orders...)
}

func (r *Remote) SalesReports() []domain.SalesReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SalesReport(nil), r.Sales...)
}

func (r *Remote) ListProducts(ctx context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ProductCalls++
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]domain.Product, 0, len(r.Products))
	for _, p := range r.Products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Remote) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]domain.InventoryRecord, 0, len(r.Inventory))
	for id, q := range r.Inventory {
		out = append(out, domain.InventoryRecord{Product: domain.Ref{ID: id}, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product.ID < out[j].Product.ID })
	return out, nil
}

func (r *Remote) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	r.created++
	id := fmt.Sprintf("new-%d", r.created)
	prod := domain.Product{ID: id, Name: p.Name, SKU: p.SKU, Price: p.Price, Stock: p.Stock}
	r.Products[id] = prod
	return &prod, nil
}

func (r *Remote) UpdateStock(ctx context.Context, productID string, u domain.StockUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	p, ok := r.Products[productID]
	if !ok {
		return nil, &domain.RemoteError{Status: 404, Message: "Product not found"}
	}
	switch {
	case u.Stock != nil:
		p.Stock = *u.Stock
	case u.Adjustment != nil:
		p.Stock += *u.Adjustment
	}
	r.Products[productID] = p
	return &p, nil
}

func (r *Remote) UpdateInventory(ctx context.Context, u domain.InventoryUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Inventory[u.ProductID] = u.Quantity
	return nil
}

func (r *Remote) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Orders = append(r.Orders, req)
	if r.Fail != nil {
		return nil, r.Fail
	}
	return &domain.Order{ID: fmt.Sprintf("o%d", len(r.Orders)), Status: domain.OrderPending, ShopName: req.ShopName}, nil
}

func (r *Remote) ListOrders(ctx context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]domain.Order, len(r.Orders))
	for i, req := range r.Orders {
		out[i] = domain.Order{ID: fmt.Sprintf("o%d", i+1), Status: domain.OrderPending, ShopName: req.ShopName}
	}
	return out, nil
}

func (r *Remote) UpdateOrderStatus(ctx context.Context, id string, s domain.OrderStatus) (*domain.Order, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return &domain.Order{ID: id, Status: s}, nil
}

func (r *Remote) PayOrder(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return &domain.Order{ID: id, Status: domain.OrderDelivered, PaymentStatus: domain.PaymentVerificationPending}, nil
}

func (r *Remote) VerifyPayment(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return &domain.Order{ID: id, Status: domain.OrderDelivered, PaymentStatus: domain.PaymentPaid}, nil
}

func (r *Remote) ReportSales(ctx context.Context, report domain.SalesReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.Sales = append(r.Sales, report)
	for _, it := range report.Items {
		r.Inventory[it.ProductID] -= it.Quantity
	}
	return nil
}

func (r *Remote) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Fail
}

func (r *Remote) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, u := range r.Users {
		if u.Email == creds.Email {
			return token, nil
		}
	}
	return "", &domain.RemoteError{Status: 400, Message: "Invalid credentials"}
}

func (r *Remote) RegisterCompany(ctx context.Context, form domain.Registration) (string, error) {
	return r.register(form, domain.EntityCompany)
}

func (r *Remote) RegisterDistributor(ctx context.Context, form domain.Registration) (string, error) {
	return r.register(form, domain.EntityDistributor)
}

func (r *Remote) register(form domain.Registration, entity string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token := "tok-" + form.Email
	r.Users[token] = domain.User{ID: "u-" + form.Email, Name: form.Name, Email: form.Email, EntityType: entity}
	return token, nil
}

// AddUser makes email log in with token.
func (r *Remote) AddUser(token string, u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Users[token] = u
}

// Me answers for whichever user was added last; tests only sign one in.
func (r *Remote) Me(ctx context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		u := u
		return &u, nil
	}
	return nil, &domain.RemoteError{Status: 401, Message: "Token is not valid"}
}

func (r *Remote) UpdateProfile(ctx context.Context, patch domain.User) (*domain.User, error) {
	return &patch, r.failure()
}

func (r *Remote) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Employee(nil), r.Employees...), r.Fail
}

func (r *Remote) AddEmployee(ctx context.Context, e domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Employees = append(r.Employees, e)
	return r.Fail
}

func (r *Remote) ListDistributors(ctx context.Context) ([]domain.Distributor, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return []domain.Distributor{{ID: "d1", Name: "North", Status: domain.DistributorPending}}, nil
}

func (r *Remote) UpdateDistributorStatus(ctx context.Context, id string, s domain.DistributorStatus) error {
	return r.failure()
}

func (r *Remote) OnboardShop(ctx context.Context, shop domain.Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Shops = append(r.Shops, shop)
	return r.Fail
}

func (r *Remote) CompanyAnalytics(ctx context.Context) (*domain.CompanyAnalytics, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return &domain.CompanyAnalytics{}, nil
}

func (r *Remote) DistributorSales(ctx context.Context, distributorID string) ([]domain.SaleRecord, error) {
	if err := r.failure(); err != nil {
		return nil, err
	}
	return nil, nil
}
