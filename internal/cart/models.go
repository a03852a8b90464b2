package cart

import "slices"

// DefaultCartID is the well-known key of the process-wide cart.
const DefaultCartID = "default"

type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID      string `json:"id"`
	Items   []Item `json:"items"`
	Version int64  `json:"-"`
}

func newCart(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}

// indexOf compares product ids by their string form; -1 when absent.
func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.Items, func(it Item) bool { return it.ProductID == productID })
}

// merge appends a new line or adds qty to the existing one.
func (c *Cart) merge(productID string, qty int) Item {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += qty
		return c.Items[i]
	}
	it := Item{ProductID: productID, Quantity: qty}
	c.Items = append(c.Items, it)
	return it
}

func (c *Cart) setQuantity(productID string, qty int) (Item, error) {
	i := c.indexOf(productID)
	if i < 0 {
		return Item{}, ErrItemNotFound
	}
	c.Items[i].Quantity = qty
	return c.Items[i], nil
}

func (c *Cart) remove(productID string) (Item, error) {
	i := c.indexOf(productID)
	if i < 0 {
		return Item{}, ErrItemNotFound
	}
	it := c.Items[i]
	c.Items = slices.Delete(c.Items, i, i+1)
	return it, nil
}

func (c *Cart) clone() *Cart {
	out := &Cart{ID: c.ID, Version: c.Version, Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
