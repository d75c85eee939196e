// Package storefront holds the consuming side of the catalog: the shopping
// cart and the catalog views the storefront renders.
package storefront

import "github.com/almadegranja/alma-backend/internal/modules/catalog"

// CartItem is a product snapshot taken when it was first added, plus the
// quantity wanted. It is never persisted.
type CartItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Subtotal is the line price.
func (i CartItem) Subtotal() float64 { return float64(i.Quantity) * i.Price }

// Cart keeps items in the order they were first added. Not safe for
// concurrent use; each session owns its own cart.
type Cart struct {
	items []CartItem
	index map[string]int
}

func NewCart() *Cart { return &Cart{index: map[string]int{}} }

// Add puts one more unit of p in the cart.
func (c *Cart) Add(p catalog.Product) {
	if i, ok := c.index[p.ID]; ok {
		c.items[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, CartItem{Product: p, Quantity: 1})
}

// UpdateQuantity adds delta to the quantity of id, clamping at zero. An
// item that reaches zero leaves the cart. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(id string, delta int) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	q := c.items[i].Quantity + delta
	if q <= 0 {
		c.Remove(id)
		return
	}
	c.items[i].Quantity = q
}

// Remove drops id from the cart regardless of its quantity.
func (c *Cart) Remove(id string) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
}

// Quantity returns the quantity of id, zero if absent.
func (c *Cart) Quantity(id string) int {
	if i, ok := c.index[id]; ok {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) QuantityByID() map[string]int {
	out := make(map[string]int, len(c.items))
	for _, it := range c.items {
		out[it.ID] = it.Quantity
	}
	return out
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}
