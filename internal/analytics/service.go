package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
)

type Service struct {
	repo repository.AnalyticsRepository
	loc  *time.Location
}

func NewService(repo repository.AnalyticsRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

func (s *Service) Company(ctx context.Context) (*domain.CompanyAnalytics, error) {
	data, err := s.repo.CompanyAnalytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: company analytics: %w", domain.ErrFetchFailed, err)
	}
	return data, nil
}

// Calendar fetches a distributor's sales and buckets one month of them.
func (s *Service) Calendar(ctx context.Context, distributorID string, year int, month time.Month) (*domain.SalesCalendar, error) {
	if distributorID == "" {
		return nil, domain.NewValidationError("distributor id is required")
	}
	if month < time.January || month > time.December {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid month %d", month))
	}
	sales, err := s.repo.DistributorSales(ctx, distributorID)
	if err != nil {
		return nil, fmt.Errorf("%w: distributor sales: %w", domain.ErrFetchFailed, err)
	}
	cal := BuildCalendar(sales, year, month, s.loc)
	return &cal, nil
}

// ParseMonth reads "YYYY-MM"; empty means the current month in loc.
func ParseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, domain.NewValidationError(fmt.Sprintf("invalid month %q, want YYYY-MM", s))
	}
	return t.Year(), t.Month(), nil
}
