package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowcart/internal/catalog"
)

func ids(t *testing.T, tbl *catalog.Table, tag, q string) []string {
	t.Helper()
	var out []string
	for _, p := range tbl.Find(tag, q) {
		out = append(out, p.ID)
	}
	return out
}

func TestDefaultTableLookup(t *testing.T) {
	tbl := catalog.Default()

	p, ok := tbl.Lookup("ser-01")
	require.True(t, ok)
	assert.Equal(t, "Vitamin C Serum 15%", p.Name)
	assert.Equal(t, "22", p.Price.String())
	assert.Equal(t, 20, p.Stock)

	_, ok = tbl.Lookup("nope")
	assert.False(t, ok)
	assert.Len(t, tbl.All(), 6)
}

func TestFindByTagAndQuery(t *testing.T) {
	tbl := catalog.Default()

	assert.Equal(t, []string{"ser-01", "ser-02"}, ids(t, tbl, "serum", ""))
	assert.Len(t, tbl.Find("all", ""), 6)
	assert.Equal(t, []string{"spf-01"}, ids(t, tbl, "", "SPF"))
	// query matches tags too
	assert.Equal(t, []string{"mois-02"}, ids(t, tbl, "", "night"))
	assert.Equal(t, []string{"mois-01", "mois-02"}, ids(t, tbl, "moisturizer", "moisturizer"))
	assert.Empty(t, ids(t, tbl, "serum", "cleanser"))
}

func TestTableIsNotMutatedThroughCopies(t *testing.T) {
	tbl := catalog.Default()
	all := tbl.All()
	all[0].Name = "changed"
	all[0].Tags[0] = "changed"

	p, _ := tbl.Lookup(all[0].ID)
	assert.Equal(t, "Daily Gel Cleanser", p.Name)
	assert.Equal(t, []string{"cleanser", "daily", "moisturizer", "spf", "serum", "brightening", "night"}, tbl.Tags())
}
