package rest

import (
	"context"
	"net/url"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

type AnalyticsRepository struct {
	client *Client
}

func NewAnalyticsRepository(client *Client) *AnalyticsRepository {
	return &AnalyticsRepository{client: client}
}

func (r *AnalyticsRepository) CompanyAnalytics(ctx context.Context) (*domain.CompanyAnalytics, error) {
	var data domain.CompanyAnalytics
	if err := r.client.get(ctx, "/analytics/company", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (r *AnalyticsRepository) DistributorSales(ctx context.Context, distributorID string) ([]domain.SaleRecord, error) {
	var sales []domain.SaleRecord
	if err := r.client.get(ctx, "/distributor/company/sales/"+url.PathEscape(distributorID), &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)
