package models

// OrderItem is a snapshot of a product line at the time the order was placed.
// It is stored inside the order row, so later catalog edits never change it.
type OrderItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	VariantName string  `json:"variantName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}
