// Package analytics aggregates sales and passes company analytics through.
package analytics

import (
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildCalendar buckets sales into the days of one month. Sale dates are
// read in loc; sales outside the month are ignored. Every day of the month
// is present, in order, even when it has no sales.
func BuildCalendar(sales []domain.SaleRecord, year int, month time.Month, loc *time.Location) domain.SalesCalendar {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cal := domain.SalesCalendar{
		Year:         year,
		Month:        month,
		DaysInMonth:  daysInMonth,
		FirstWeekday: first.Weekday(),
		Days:         make([]domain.CalendarDay, daysInMonth),
		MonthTotal:   decimal.Zero,
	}
	for i := range cal.Days {
		cal.Days[i] = domain.CalendarDay{Day: i + 1, Sales: []domain.SaleRecord{}, TotalAmount: decimal.Zero}
	}

	for _, sale := range sales {
		d := sale.Date.In(loc)
		if d.Year() != year || d.Month() != month {
			continue
		}
		day := &cal.Days[d.Day()-1]
		day.Sales = append(day.Sales, sale)
		day.TotalAmount = day.TotalAmount.Add(sale.TotalAmount)
		for _, it := range sale.Items {
			day.TotalQuantity += it.Quantity
		}
		cal.MonthTotal = cal.MonthTotal.Add(sale.TotalAmount)
	}
	return cal
}

// ActiveDays returns the days that have at least one sale.
func ActiveDays(cal domain.SalesCalendar) []domain.CalendarDay {
	var out []domain.CalendarDay
	for _, d := range cal.Days {
		if len(d.Sales) > 0 {
			out = append(out, d)
		}
	}
	return out
}
