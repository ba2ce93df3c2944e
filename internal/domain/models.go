// internal/domain/models.go
package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote API speaks JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

// Ref is a reference to a remote document that the API returns either as a
// bare id or as a populated object, e.g. "productId": "abc" or
// "productId": {"_id": "abc", "name": "Widget"}.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	type plain Ref
	return json.Marshal(plain(r))
}

// Product is the supplier-side catalog entry. Stock is what the company can ship.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Unit        string          `json:"unit,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// NewProduct is the body of POST /products.
type NewProduct struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// StockUpdate is the body of PUT /products/:id. Exactly one of Stock or
// Adjustment is sent.
type StockUpdate struct {
	Stock      *int   `json:"stock,omitempty"`
	Adjustment *int   `json:"stockAdjustment,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// InventoryRecord is what a distributor holds on hand. Its Quantity is an
// independent counter from Product.Stock.
type InventoryRecord struct {
	ID        string     `json:"_id,omitempty"`
	Product   Ref        `json:"productId"`
	Quantity  int        `json:"quantity"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// InventoryUpdate is the body of POST /distributor/inventory/update.
type InventoryUpdate struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// DraftLineItem is one line of an unpersisted order or sales report.
// A nil Price means "use the catalog price".
type DraftLineItem struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	ShopName  string           `json:"shopName,omitempty"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Items    []DraftLineItem `json:"items"`
	ShopName string          `json:"shopName,omitempty"`
}

type OrderItem struct {
	Product  Ref             `json:"productId"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID             string          `json:"_id"`
	Distributor    Ref             `json:"distributorId"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus,omitempty"`
	PaymentDueDate *time.Time      `json:"paymentDueDate,omitempty"`
	ShopName       string          `json:"shopName,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// SalesReport is the body of POST /distributor/sales/report.
type SalesReport struct {
	Items []DraftLineItem `json:"items"`
	Date  time.Time       `json:"date"`
}

type SaleItem struct {
	Product  Ref             `json:"productId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
	ShopName string          `json:"shopName,omitempty"`
}

// SaleRecord is one reported sale batch as returned to the company.
type SaleRecord struct {
	ID          string          `json:"_id"`
	Date        time.Time       `json:"date"`
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type User struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	EntityType  string `json:"entityType"`
	EntityID    string `json:"entityId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

const (
	EntityCompany     = "Company"
	EntityDistributor = "Distributor"
)

func (u User) IsCompany() bool     { return u.EntityType == EntityCompany }
func (u User) IsDistributor() bool { return u.EntityType == EntityDistributor }

// Merge returns a copy of u with every non-empty field of patch applied.
func (u User) Merge(patch User) User {
	out := u
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.ID, patch.ID)
	set(&out.Name, patch.Name)
	set(&out.Email, patch.Email)
	set(&out.Role, patch.Role)
	set(&out.EntityType, patch.EntityType)
	set(&out.EntityID, patch.EntityID)
	set(&out.PhoneNumber, patch.PhoneNumber)
	set(&out.Address, patch.Address)
	return out
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries the sign-up form for either account type.
type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

type Distributor struct {
	ID          string            `json:"_id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	Address     string            `json:"address,omitempty"`
	Status      DistributorStatus `json:"status"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// Shop is a downstream retail outlet onboarded by a distributor.
type Shop struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	PhoneNumber   string `json:"phoneNumber"`
	DistributorID string `json:"distributorId,omitempty"`
}

type Employee struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	// Password is only sent when adding an employee.
	Password string `json:"password,omitempty"`
}
