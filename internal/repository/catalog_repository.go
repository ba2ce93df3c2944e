// internal/repository/catalog_repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/b2b-portal/internal/domain"
)

// CatalogRepository is the remote product and inventory collaborator.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListInventory(ctx context.Context) ([]domain.InventoryRecord, error)
	CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
	UpdateStock(ctx context.Context, productID string, update domain.StockUpdate) (*domain.Product, error)
	UpdateInventory(ctx context.Context, update domain.InventoryUpdate) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	PayOrder(ctx context.Context, orderID string) (*domain.Order, error)
	VerifyPayment(ctx context.Context, orderID string) (*domain.Order, error)
	ReportSales(ctx context.Context, report domain.SalesReport) error
}

// AccountRepository covers authentication, profile and the company's view of
// its distributors and employees.
type AccountRepository interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	RegisterCompany(ctx context.Context, form domain.Registration) (string, error)
	RegisterDistributor(ctx context.Context, form domain.Registration) (string, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, patch domain.User) (*domain.User, error)

	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	AddEmployee(ctx context.Context, e domain.Employee) error

	ListDistributors(ctx context.Context) ([]domain.Distributor, error)
	UpdateDistributorStatus(ctx context.Context, distributorID string, status domain.DistributorStatus) error
	OnboardShop(ctx context.Context, shop domain.Shop) error
}

type AnalyticsRepository interface {
	CompanyAnalytics(ctx context.Context) (*domain.CompanyAnalytics, error)
	DistributorSales(ctx context.Context, distributorID string) ([]domain.SaleRecord, error)
}
