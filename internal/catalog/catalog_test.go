package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewDropsDuplicatesAndBlankIDs(t *testing.T) {
	c := New([]Product{
		{ID: " 1 ", Name: "first"},
		{ID: "1", Name: "dup"},
		{ID: "", Name: "blank"},
		{ID: "2", Name: "second", Price: decimal.NewFromInt(10)},
	})
	list := c.List()
	require.Len(t, list, 2)
	require.Equal(t, "first", list[0].Name)

	p, ok := c.Find("2")
	require.True(t, ok)
	require.True(t, p.Price.Equal(decimal.NewFromInt(10)))

	_, ok = c.Find("404")
	require.False(t, ok)
}

func TestDefaultCatalogHasUniqueProducts(t *testing.T) {
	list := Default().List()
	require.NotEmpty(t, list)
	seen := map[string]bool{}
	for _, p := range list {
		require.False(t, seen[p.ID])
		seen[p.ID] = true
		require.False(t, p.Price.IsNegative())
	}
}
