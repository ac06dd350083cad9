package domain

// CartEntry is a product in the cart together with its quantity.
// Quantity is always >= 1; an entry whose quantity would drop below 1 is
// removed from the cart instead.
type CartEntry struct {
	Product
	Quantity int `json:"quantity"`
}

// CartTotal returns the sum of price*quantity over the given entries.
// Plain floating-point accumulation; display rounding is a presentation concern.
func CartTotal(entries []CartEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Price * float64(e.Quantity)
	}
	return total
}

// CartItemCount returns the total number of units across all entries.
func CartItemCount(entries []CartEntry) int {
	var count int
	for _, e := range entries {
		count += e.Quantity
	}
	return count
}

// FindCartIndex returns the index of the entry with the given product id,
// or -1 if no such entry exists.
func FindCartIndex(entries []CartEntry, productID int64) int {
	for i := range entries {
		if entries[i].ID == productID {
			return i
		}
	}
	return -1
}
