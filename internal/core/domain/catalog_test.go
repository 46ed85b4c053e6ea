package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogFilterByCategory(t *testing.T) {
	combos := DefaultCatalog().Filter(CategoryCombo, SortNone)

	ids := make([]int, 0, len(combos))
	for _, it := range combos {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{1, 2, 6}, ids)
}

func TestCatalogFilterSortsWithoutMutating(t *testing.T) {
	c := DefaultCatalog()

	asc := c.Filter("", SortAsc)
	desc := c.Filter("", SortDesc)

	assert.Equal(t, 4, asc[0].ID)
	assert.Equal(t, 1, asc[len(asc)-1].ID)
	assert.Equal(t, 1, desc[0].ID)
	assert.Equal(t, 1, c.Items()[0].ID)
	assert.Equal(t, 6, c.Items()[5].ID)
}

func TestCatalogGetUnknown(t *testing.T) {
	_, ok := DefaultCatalog().Get(404)
	assert.False(t, ok)
}
