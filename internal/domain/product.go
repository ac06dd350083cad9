package domain

// Product represents a product in the remote catalog, annotated with the
// client-local wishlist flag. JSON field names match the catalog wire format;
// the catalog never sends isWishlisted.
type Product struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	IsWishlisted bool    `json:"isWishlisted"`
}

// MergeWishlist combines freshly fetched catalog products with persisted
// wishlist flags, keyed by product id. The catalog is the source of truth for
// every field except IsWishlisted, which is carried over from the persisted
// record when one exists and defaults to false otherwise.
func MergeWishlist(fresh, saved []Product) []Product {
	wishlisted := make(map[int64]bool, len(saved))
	for _, p := range saved {
		if p.IsWishlisted {
			wishlisted[p.ID] = true
		}
	}

	merged := make([]Product, len(fresh))
	for i, p := range fresh {
		p.IsWishlisted = wishlisted[p.ID]
		merged[i] = p
	}
	return merged
}

// Wishlisted returns the subset of products with the wishlist flag set.
func Wishlisted(products []Product) []Product {
	out := []Product{}
	for _, p := range products {
		if p.IsWishlisted {
			out = append(out, p)
		}
	}
	return out
}
