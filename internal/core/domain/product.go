package domain

// Product is a catalog entry. The SKU is the stable identity; it never
// changes once the product is registered.
type Product struct {
	SKU      string
	Name     string
	Category string
}
