package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesFromLayout(t *testing.T) {
	text := "Invoice Summary\n" +
		"Item        Qty     Price\n" +
		"Widget      2       10.00\n" +
		"Gadget      1       25.50\n" +
		"\n" +
		"Thanks for your business."

	tables := tablesFromLayout(text)
	require.Len(t, tables, 1)
	tb := tables[0]
	assert.Equal(t, 1, tb.Page)
	assert.Equal(t, 1, tb.Number)
	assert.Equal(t, []string{"Item", "Qty", "Price"}, tb.Headers)
	require.Len(t, tb.Rows, 2)
	assert.Equal(t, []string{"Widget", "2", "10.00"}, tb.Rows[0])
	assert.Equal(t, []string{"Gadget", "1", "25.50"}, tb.Rows[1])
}

func TestTablesFromLayoutIgnoresProse(t *testing.T) {
	text := "This is a paragraph of ordinary prose with single spaces.\n" +
		"It should not be mistaken for tabular data.\n"
	assert.Empty(t, tablesFromLayout(text))
}

func TestTablesFromLayoutSingleRowIsNotATable(t *testing.T) {
	// One column-aligned line has no data rows under a header.
	assert.Empty(t, tablesFromLayout("Name      Value\n"))
}

func TestTablesFromLayoutPerPageNumbering(t *testing.T) {
	page1 := "A    B\n1    2\n"
	page2 := "X    Y\n3    4\n\nP    Q\n5    6\n"
	tables := tablesFromLayout(page1 + "\f" + page2)
	require.Len(t, tables, 3)
	assert.Equal(t, 1, tables[0].Page)
	assert.Equal(t, 1, tables[0].Number)
	assert.Equal(t, 2, tables[1].Page)
	assert.Equal(t, 1, tables[1].Number)
	assert.Equal(t, 2, tables[2].Page)
	assert.Equal(t, 2, tables[2].Number)
}

func TestTablesFromLayoutColumnCountChangeSplitsTables(t *testing.T) {
	text := "A    B\n1    2\nX    Y    Z\n7    8    9\n"
	tables := tablesFromLayout(text)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Headers, 2)
	assert.Len(t, tables[1].Headers, 3)
}
