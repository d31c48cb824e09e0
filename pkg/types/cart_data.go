package types

// CartData is the wire and storage shape of a cart: quantities keyed by
// product id, then by size. Entries never carry a zero quantity; deleting the
// last size for a product removes the product bucket entirely.
type CartData map[string]map[string]int

// Quantity returns the stored quantity for the entry, zero when absent.
func (c CartData) Quantity(productID, size string) int {
	if sizes, ok := c[productID]; ok {
		return sizes[size]
	}
	return 0
}

// SetQuantity replaces the entry's quantity. A quantity of zero deletes the
// entry and, when it was the last size, the product bucket.
func (c CartData) SetQuantity(productID, size string, quantity int) {
	if quantity <= 0 {
		sizes, ok := c[productID]
		if !ok {
			return
		}
		delete(sizes, size)
		if len(sizes) == 0 {
			delete(c, productID)
		}
		return
	}
	sizes, ok := c[productID]
	if !ok {
		sizes = map[string]int{}
		c[productID] = sizes
	}
	sizes[size] = quantity
}

// Count sums every quantity in the cart.
func (c CartData) Count() int {
	total := 0
	for _, sizes := range c {
		for _, qty := range sizes {
			total += qty
		}
	}
	return total
}

// Clone returns a deep copy of the cart data.
func (c CartData) Clone() CartData {
	out := make(CartData, len(c))
	for productID, sizes := range c {
		bucket := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			bucket[size] = qty
		}
		out[productID] = bucket
	}
	return out
}
