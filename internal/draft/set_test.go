package draft

import (
	"testing"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	stock  map[string]int
	prices map[string]decimal.Decimal
}

func (f *fixture) ceiling(id string) int           { return f.stock[id] }
func (f *fixture) price(id string) decimal.Decimal { return f.prices[id] }
func dec(s string) decimal.Decimal                 { return decimal.RequireFromString(s) }

func newFixture() *fixture {
	return &fixture{
		stock:  map[string]int{"P1": 5, "P2": 20},
		prices: map[string]decimal.Decimal{"P1": dec("10"), "P2": dec("2.50")},
	}
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"7":                    7,
		" 12 ":                 12,
		"12abc":                12,
		"3.7":                  3,
		"-3":                   -3,
		"+4":                   4,
		"abc":                  0,
		"":                     0,
		"-":                    0,
		"99999999999999999999": 2147483647,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseQuantity(in), "input %q", in)
	}
}

func TestClampAlwaysWithinRange(t *testing.T) {
	for _, c := range []int{0, 1, 5, 100} {
		for _, v := range []int{-1000, -1, 0, 1, 4, 5, 6, 1000} {
			got := Clamp(v, c)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, c)
		}
	}
	assert.Equal(t, 0, Clamp(3, -2))
}

func TestSet_SetQuantityClampsToStock(t *testing.T) {
	f := newFixture()
	s := NewForProducts([]string{"P1", "P2"}, f.ceiling, f.price)

	assert.Equal(t, 5, s.SetQuantity("P1", "10"))
	assert.Equal(t, 0, s.SetQuantity("P1", "-3"))
	assert.Equal(t, 0, s.SetQuantity("P1", "lots"))
	assert.Equal(t, 3, s.SetQuantity("P1", "3"))
	assert.Equal(t, 3, s.Quantity("P1"))
}

func TestSet_CeilingIsReadLive(t *testing.T) {
	f := newFixture()
	s := NewForProducts([]string{"P1"}, f.ceiling, f.price)

	assert.Equal(t, 5, s.SetQuantity("P1", "5"))
	f.stock["P1"] = 2
	require.NoError(t, ValidateLines([]domain.DraftLineItem{{ProductID: "P1", Quantity: 2}}, f.ceiling))

	err := s.Validate()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Lines[0].Line)
	assert.Contains(t, verr.Lines[0].Reason, "exceeds available 2")
}

func TestSet_StepStaysInBounds(t *testing.T) {
	f := newFixture()
	s := NewForProducts([]string{"P1"}, f.ceiling, f.price)

	assert.Equal(t, 0, s.Step("P1", -1))
	for i := 0; i < 10; i++ {
		s.Step("P1", 1)
	}
	assert.Equal(t, 5, s.Quantity("P1"))
}

func TestSet_TotalValueTracksEveryChange(t *testing.T) {
	f := newFixture()
	s := NewForProducts([]string{"P1", "P2"}, f.ceiling, f.price)
	assert.True(t, s.TotalValue().IsZero())

	s.SetQuantity("P1", "2")
	assert.True(t, dec("20").Equal(s.TotalValue()))

	s.SetQuantity("P2", "3")
	assert.True(t, dec("27.5").Equal(s.TotalValue()))

	s.SetQuantity("P1", "0")
	assert.True(t, dec("7.5").Equal(s.TotalValue()))

	f.prices["P2"] = dec("3")
	assert.True(t, dec("9").Equal(s.TotalValue()))
}

func TestSet_RowsForSalesReport(t *testing.T) {
	f := newFixture()
	s := NewRows(f.ceiling, f.price)

	i := s.AddRow()
	assert.Equal(t, 0, s.SetRowQuantity(i, "4"), "no product means no availability")

	require.True(t, s.SetRowProduct(i, "P1"))
	assert.Equal(t, 4, s.SetRowQuantity(i, "4"))
	assert.Equal(t, 5, s.SetRowQuantity(i, "8"))

	j := s.AddRow()
	require.True(t, s.SetRowProduct(j, "P1"))
	s.SetRowQuantity(j, "1")
	require.True(t, s.SetRowPrice(j, "12.25"))
	require.True(t, s.SetRowShop(j, " Corner Store "))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.True(t, dec("10").Equal(*lines[0].Price))
	assert.Equal(t, "Corner Store", lines[1].ShopName)
	assert.True(t, dec("62.25").Equal(s.TotalValue()))

	// switching product re-clamps against the new ceiling
	f.stock["P2"] = 2
	require.True(t, s.SetRowProduct(i, "P2"))
	assert.Equal(t, 2, s.Lines()[0].Quantity)
	assert.True(t, dec("2.50").Equal(*s.Lines()[0].Price))

	assert.True(t, s.RemoveRow(0))
	assert.True(t, s.RemoveRow(0))
	assert.False(t, s.RemoveRow(0))
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.TotalValue().IsZero())
}

func TestSet_LinesAreCopies(t *testing.T) {
	f := newFixture()
	s := NewRows(f.ceiling, f.price)
	i := s.AddRow()
	s.SetRowProduct(i, "P1")

	lines := s.Lines()
	*lines[0].Price = dec("999")
	lines[0].Quantity = 3

	assert.True(t, dec("10").Equal(*s.Lines()[0].Price))
	assert.Equal(t, 0, s.Lines()[0].Quantity)
}

func TestSet_Reset(t *testing.T) {
	f := newFixture()
	keyed := NewForProducts([]string{"P1", "P2"}, f.ceiling, f.price)
	keyed.SetQuantity("P1", "2")
	keyed.Reset()
	assert.Equal(t, 2, keyed.Len())
	assert.Empty(t, keyed.Selected())

	rows := NewRows(f.ceiling, f.price)
	rows.AddRow()
	rows.Reset()
	assert.Equal(t, 0, rows.Len())
}

func TestValidateLines_Reasons(t *testing.T) {
	f := newFixture()
	err := ValidateLines([]domain.DraftLineItem{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "", Quantity: 1},
		{ProductID: "P2", Quantity: 0},
	}, f.ceiling)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Lines, 2)
	assert.Equal(t, domain.LineError{Line: 2, Reason: "product is required"}, verr.Lines[0])
	assert.Equal(t, domain.LineError{Line: 3, ProductID: "P2", Reason: "quantity must be greater than zero"}, verr.Lines[1])
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}
