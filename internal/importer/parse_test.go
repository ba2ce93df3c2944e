package importer

import (
	"testing"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullHeader = "name,sku,price,stock,unit,category,image,description"

func TestParse_ThreeRowsWithFullHeader(t *testing.T) {
	text := fullHeader + "\n" +
		"Widget,W-1,10,5,pcs,Hardware,,A widget\n" +
		"Gadget,G-1,4.5,0,pcs,Hardware,,\n" +
		"Gizmo,Z-1,1,100,box,Toys,http://img/z.png,Small\n"

	table, err := Parse(text, ParseModeNaive)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "sku", "price", "stock", "unit", "category", "image", "description"}, table.Header)
	require.Len(t, table.Rows, 3)
	for i, row := range table.Rows {
		assert.Equal(t, i+1, row.Number)
		assert.True(t, row.Valid)
	}
	assert.Equal(t, "http://img/z.png", table.Rows[2].Field("image"))
}

func TestParse_BlankLinesAreDropped(t *testing.T) {
	text := fullHeader + "\n" +
		"Widget,W-1,10,5,pcs,Hardware,,\n" +
		"   \n" +
		"\n" +
		"Gadget,G-1,4.5,0,pcs,Hardware,,\r\n"

	table, err := Parse(text, ParseModeNaive)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[1].Number)
	assert.Equal(t, "Gadget", table.Rows[1].Field("name"))
}

func TestParse_NamePriceSample(t *testing.T) {
	table, err := Parse("name,price\nWidget,10\n,20\nGadget,", ParseModeNaive)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.True(t, table.Rows[0].Valid)
	assert.Equal(t, "Widget", table.Rows[0].Field("name"))
	assert.Equal(t, "10", table.Rows[0].Field("price"))

	assert.False(t, table.Rows[1].Valid)
	assert.Equal(t, "20", table.Rows[1].Field("price"))
	assert.Contains(t, table.Rows[1].Error, "name")

	assert.False(t, table.Rows[2].Valid)
	assert.Contains(t, table.Rows[2].Error, "price")
}

func TestParse_NaiveModeSplitsInsideQuotes(t *testing.T) {
	text := "name,price,description\n\"Bolt, large\",2,x\n"

	naive, err := Parse(text, ParseModeNaive)
	require.NoError(t, err)
	assert.Equal(t, `"Bolt`, naive.Rows[0].Field("name"))
	assert.Equal(t, `large"`, naive.Rows[0].Field("price"))

	quoted, err := Parse(text, ParseModeQuoted)
	require.NoError(t, err)
	assert.Equal(t, "Bolt, large", quoted.Rows[0].Field("name"))
	assert.Equal(t, "2", quoted.Rows[0].Field("price"))
	assert.True(t, quoted.Rows[0].Valid)
}

func TestParse_ShortRowsAndHeaderCase(t *testing.T) {
	table, err := Parse(" Name , PRICE ,Stock\nWidget,3\n", ParseModeNaive)
	require.NoError(t, err)
	row := table.Rows[0]
	assert.Equal(t, "Widget", row.Field("name"))
	assert.Equal(t, "3", row.Field("price"))
	assert.Equal(t, "", row.Field("stock"))
	assert.True(t, row.Valid)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("\n  \n", ParseModeNaive)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	table, err := Parse("name,price\n", ParseModeNaive)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestParseModeOf(t *testing.T) {
	m, err := ParseModeOf("")
	require.NoError(t, err)
	assert.Equal(t, ParseModeNaive, m)

	m, err = ParseModeOf("Quoted")
	require.NoError(t, err)
	assert.Equal(t, ParseModeQuoted, m)

	_, err = ParseModeOf("tsv")
	assert.Error(t, err)
}

func TestToProduct_CoercesNumbers(t *testing.T) {
	p := toProduct(domain.ImportRow{Fields: map[string]string{
		"name": "Widget", "price": "abc", "stock": "7.9", "sku": "W-1",
	}})
	assert.True(t, p.Price.IsZero())
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, "W-1", p.SKU)

	assert.Equal(t, 0, toInt("lots"))
	assert.Equal(t, 12, toInt(" 12 "))
}
