package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/session"
)

// Login signs in and resets per-user state so nothing from a previous user
// is shown.
func (w *Workspace) Login(ctx context.Context, creds domain.Credentials) (session.Snapshot, error) {
	snap, err := w.deps.Session.Login(ctx, creds)
	if err != nil {
		return snap, err
	}
	w.Reset()
	return snap, nil
}

// Register creates a company or distributor account depending on kind.
func (w *Workspace) Register(ctx context.Context, kind string, form domain.Registration) (session.Snapshot, error) {
	var (
		snap session.Snapshot
		err  error
	)
	switch strings.ToLower(kind) {
	case "company":
		snap, err = w.deps.Session.RegisterCompany(ctx, form)
	case "distributor":
		snap, err = w.deps.Session.RegisterDistributor(ctx, form)
	default:
		return w.deps.Session.Current(), domain.NewValidationError(fmt.Sprintf("unknown account type %q", kind))
	}
	if err != nil {
		return snap, err
	}
	w.Reset()
	return snap, nil
}

// Logout drops the signed-out user's mirrored catalogs before clearing the
// session.
func (w *Workspace) Logout(ctx context.Context) (session.Snapshot, error) {
	products, onHand := w.caches()
	products.Forget(ctx)
	onHand.Forget(ctx)

	snap, err := w.deps.Session.Logout(ctx)
	w.Reset()
	return snap, err
}

func (w *Workspace) Session() session.Snapshot {
	return w.deps.Session.Current()
}

func (w *Workspace) UpdateProfile(ctx context.Context, patch domain.User) (session.Snapshot, error) {
	return w.deps.Session.UpdateProfile(ctx, patch)
}

func (w *Workspace) Distributors(ctx context.Context) ([]domain.Distributor, error) {
	ds, err := w.deps.Accounts.ListDistributors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list distributors: %w", domain.ErrFetchFailed, err)
	}
	return ds, nil
}

func (w *Workspace) SetDistributorStatus(ctx context.Context, distributorID, label string) error {
	status, ok := domain.ParseDistributorStatus(label)
	if !ok {
		return domain.NewValidationError(fmt.Sprintf("unknown distributor status %q", label))
	}
	if err := w.deps.Accounts.UpdateDistributorStatus(ctx, distributorID, status); err != nil {
		return fmt.Errorf("update distributor %s: %w", distributorID, err)
	}
	return nil
}

// OnboardShop registers a downstream shop; every field is required.
func (w *Workspace) OnboardShop(ctx context.Context, shop domain.Shop) error {
	shop.Name = strings.TrimSpace(shop.Name)
	shop.Location = strings.TrimSpace(shop.Location)
	shop.PhoneNumber = strings.TrimSpace(shop.PhoneNumber)
	if shop.Name == "" || shop.Location == "" || shop.PhoneNumber == "" {
		return domain.NewValidationError("shop name, location and phone number are required")
	}
	if shop.DistributorID == "" {
		if u := w.deps.Session.Current().User; u != nil {
			shop.DistributorID = u.EntityID
		}
	}
	if err := w.deps.Accounts.OnboardShop(ctx, shop); err != nil {
		return fmt.Errorf("onboard shop: %w", err)
	}
	return nil
}

func (w *Workspace) Employees(ctx context.Context) ([]domain.Employee, error) {
	es, err := w.deps.Accounts.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list employees: %w", domain.ErrFetchFailed, err)
	}
	return es, nil
}

func (w *Workspace) AddEmployee(ctx context.Context, e domain.Employee) error {
	if strings.TrimSpace(e.Email) == "" || e.Password == "" {
		return domain.NewValidationError("employee email and password are required")
	}
	if err := w.deps.Accounts.AddEmployee(ctx, e); err != nil {
		return fmt.Errorf("add employee: %w", err)
	}
	return nil
}

// ClearCachedCatalogs drops every mirrored catalog snapshot in the shared
// cache, for all users.
func (w *Workspace) ClearCachedCatalogs(ctx context.Context) error {
	if err := w.deps.Snapshots.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("clear catalog cache: %w", err)
	}
	return nil
}
