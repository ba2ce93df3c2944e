package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyAnalytics is the payload of GET /analytics/company.
type CompanyAnalytics struct {
	Summary                AnalyticsSummary         `json:"summary"`
	DistributorPerformance []DistributorPerformance `json:"distributorPerformance"`
	RecentActivity         RecentActivity           `json:"recentActivity"`
}

type AnalyticsSummary struct {
	TotalRestocking    decimal.Decimal `json:"totalRestocking"`
	TotalDistSales     decimal.Decimal `json:"totalDistSales"`
	ActiveDistributors int             `json:"activeDistributors"`
	SalesCount         int             `json:"salesCount"`
}

type DistributorPerformance struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	RestockCount    int             `json:"restockCount"`
	SalesCount      int             `json:"salesCount"`
	TotalRestocking decimal.Decimal `json:"totalRestocking"`
	TotalSales      decimal.Decimal `json:"totalSales"`
}

type RecentActivity struct {
	ManualRestocks []StockAdjustmentLog `json:"manualRestocks"`
	Restocks       []RestockSummary     `json:"restocks"`
}

// StockAdjustmentLog records a signed manual stock change and its reason.
type StockAdjustmentLog struct {
	Product   Ref       `json:"productId"`
	User      Ref       `json:"userId"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

type RestockSummary struct {
	Distributor Ref             `json:"distributorId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CalendarDay aggregates the sales reported on one day of a month.
type CalendarDay struct {
	Day           int             `json:"day"`
	Sales         []SaleRecord    `json:"sales"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

// SalesCalendar is one month of a distributor's sales bucketed by day.
type SalesCalendar struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	DaysInMonth  int             `json:"daysInMonth"`
	FirstWeekday time.Weekday    `json:"firstWeekday"`
	Days         []CalendarDay   `json:"days"`
	MonthTotal   decimal.Decimal `json:"monthTotal"`
}
