package domain

import "github.com/shopspring/decimal"

// CartLine is one catalog item's aggregated quantity. Quantity is always >= 1.
type CartLine struct {
	ItemID    int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	ImageRef  string
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartLedger holds at most one line per item id, kept in insertion order.
type CartLedger struct {
	lines []CartLine
}

func NewCartLedger() *CartLedger {
	return &CartLedger{}
}

func (c *CartLedger) Add(item CatalogItem) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  1,
		ImageRef:  item.ImageRef,
	})
}

func (c *CartLedger) Remove(itemID int) {
	if i := c.index(itemID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQuantity removes the line when quantity <= 0. Unknown ids are ignored.
func (c *CartLedger) SetQuantity(itemID, quantity int) {
	if quantity <= 0 {
		c.Remove(itemID)
		return
	}
	if i := c.index(itemID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
}

func (c *CartLedger) Clear() {
	c.lines = nil
}

func (c *CartLedger) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the current lines.
func (c *CartLedger) Lines() []CartLine {
	cp := make([]CartLine, len(c.lines))
	copy(cp, c.lines)
	return cp
}

func (c *CartLedger) Len() int { return len(c.lines) }

func (c *CartLedger) IsEmpty() bool { return len(c.lines) == 0 }

// ItemCount is the sum of quantities across lines.
func (c *CartLedger) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Restore replaces the ledger contents with a snapshot taken via Lines.
func (c *CartLedger) Restore(snapshot []CartLine) {
	c.lines = make([]CartLine, len(snapshot))
	copy(c.lines, snapshot)
}

func (c *CartLedger) index(itemID int) int {
	for i, l := range c.lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}
