package importer

import (
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
)

// toProduct builds the creation body for a valid row. Numeric columns that
// do not parse become 0; they never fail the row.
func toProduct(row domain.ImportRow) domain.NewProduct {
	return domain.NewProduct{
		Name:        row.Field(ColumnName),
		SKU:         row.Field("sku"),
		Description: row.Field("description"),
		Price:       toDecimal(row.Field(ColumnPrice)),
		Stock:       toInt(row.Field("stock")),
		Unit:        row.Field("unit"),
		Category:    row.Field("category"),
		Image:       row.Field("image"),
	}
}

func toDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
