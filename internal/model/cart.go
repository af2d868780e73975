package model

// MaxQuantity caps the units of a single line item.
const MaxQuantity = 999

type CartItem struct {
	MenuItemID int64  `json:"id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// Count is the total number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Clone returns a copy that shares no memory with c.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
