package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCombo      Category = "combo"
	CategoryIndividual Category = "individual"
	CategoryBeverage   Category = "beverage"
	CategoryAddon      Category = "addon"
)

// CatalogItem is immutable for the lifetime of a session.
type CatalogItem struct {
	ID          int
	Name        string
	UnitPrice   decimal.Decimal
	Category    Category
	Description string
	ImageRef    string
}

type PriceSort string

const (
	SortNone PriceSort = ""
	SortAsc  PriceSort = "asc"
	SortDesc PriceSort = "desc"
)

type Catalog struct {
	items []CatalogItem
}

func NewCatalog(items []CatalogItem) *Catalog {
	cp := make([]CatalogItem, len(items))
	copy(cp, items)
	return &Catalog{items: cp}
}

// DefaultCatalog returns the restaurant's menu.
func DefaultCatalog() *Catalog {
	return NewCatalog([]CatalogItem{
		{ID: 1, Name: "Combo Familiar", UnitPrice: decimal.NewFromInt(45000), Category: CategoryCombo,
			Description: "1 pollo entero + 2 porciones de papas + 4 gaseosas", ImageRef: "/images/combo-familiar.png"},
		{ID: 2, Name: "Combo Personal", UnitPrice: decimal.NewFromInt(18000), Category: CategoryCombo,
			Description: "2 presas + 1 porción de papas + 1 gaseosa", ImageRef: "/images/combo-personal.png"},
		{ID: 3, Name: "Presas Sueltas x2", UnitPrice: decimal.NewFromInt(12000), Category: CategoryIndividual,
			Description: "2 presas de pollo broaster", ImageRef: "/images/presas-individuales.png"},
		{ID: 4, Name: "Gaseosa Personal", UnitPrice: decimal.NewFromInt(3500), Category: CategoryBeverage,
			Description: "Gaseosa personal 350ml", ImageRef: "/images/gaseosa.png"},
		{ID: 5, Name: "Papas Grandes", UnitPrice: decimal.NewFromInt(8000), Category: CategoryAddon,
			Description: "Porción grande de papas fritas", ImageRef: "/images/papas-grandes.png"},
		{ID: 6, Name: "Combo Pareja", UnitPrice: decimal.NewFromInt(32000), Category: CategoryCombo,
			Description: "1/2 pollo + 2 porciones de papas + 2 gaseosas", ImageRef: "/images/combo-pareja.png"},
	})
}

// Items returns a copy of every item in catalog order.
func (c *Catalog) Items() []CatalogItem {
	cp := make([]CatalogItem, len(c.items))
	copy(cp, c.items)
	return cp
}

func (c *Catalog) Get(id int) (CatalogItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return CatalogItem{}, false
}

// Filter keeps items of the given category (all when empty) and optionally
// orders them by price. The catalog itself is never reordered.
func (c *Catalog) Filter(category Category, by PriceSort) []CatalogItem {
	out := make([]CatalogItem, 0, len(c.items))
	for _, it := range c.items {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}

	switch by {
	case SortAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice.LessThan(out[j].UnitPrice) })
	case SortDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UnitPrice.GreaterThan(out[j].UnitPrice) })
	}
	return out
}
