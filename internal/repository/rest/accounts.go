package rest

import (
	"context"
	"net/url"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

type AccountRepository struct {
	client *Client
}

func NewAccountRepository(client *Client) *AccountRepository {
	return &AccountRepository{client: client}
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (r *AccountRepository) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp tokenResponse
	if err := r.client.post(ctx, "/auth/login", creds, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (r *AccountRepository) RegisterCompany(ctx context.Context, form domain.Registration) (string, error) {
	var resp tokenResponse
	if err := r.client.post(ctx, "/auth/register-company", form, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (r *AccountRepository) RegisterDistributor(ctx context.Context, form domain.Registration) (string, error) {
	var resp tokenResponse
	if err := r.client.post(ctx, "/auth/register-distributor", form, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (r *AccountRepository) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := r.client.get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, patch domain.User) (*domain.User, error) {
	var user domain.User
	if err := r.client.put(ctx, "/auth/update-profile", patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *AccountRepository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	if err := r.client.get(ctx, "/auth/employees", &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *AccountRepository) AddEmployee(ctx context.Context, e domain.Employee) error {
	return r.client.post(ctx, "/auth/add-employee", e, nil)
}

func (r *AccountRepository) ListDistributors(ctx context.Context) ([]domain.Distributor, error) {
	var distributors []domain.Distributor
	if err := r.client.get(ctx, "/distributors", &distributors); err != nil {
		return nil, err
	}
	return distributors, nil
}

func (r *AccountRepository) UpdateDistributorStatus(ctx context.Context, distributorID string, status domain.DistributorStatus) error {
	body := map[string]domain.DistributorStatus{"status": status}
	return r.client.put(ctx, "/distributors/"+url.PathEscape(distributorID)+"/status", body, nil)
}

func (r *AccountRepository) OnboardShop(ctx context.Context, shop domain.Shop) error {
	return r.client.post(ctx, "/distributors/shop-data", shop, nil)
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
