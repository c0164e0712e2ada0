// Package catalog defines the product domain model, the upstream wire
// shapes, and the mapping between them.
package catalog

import "time"

// Product is the locally persisted catalog entry. Price, CompareAtPrice
// and SKU are derived from the first variant when a product is built
// from remote data; they are nil/empty for variant-less products.
type Product struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Handle         string    `json:"handle,omitempty"`
	Vendor         string    `json:"vendor,omitempty"`
	ProductType    string    `json:"product_type,omitempty"`
	Price          *float64  `json:"price,omitempty"`
	CompareAtPrice *float64  `json:"compare_at_price,omitempty"`
	SKU            string    `json:"sku,omitempty"`
	Available      bool      `json:"available"`
	Description    string    `json:"description,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Variants       []Variant `json:"variants"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Variant is a purchasable configuration embedded in its parent
// Product. Variants have no independent lifecycle; they live and die
// with the product row they are serialized into.
type Variant struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	SKU       string   `json:"sku,omitempty"`
	Available bool     `json:"available"`
	Option1   string   `json:"option1,omitempty"`
	Option2   string   `json:"option2,omitempty"`
	Option3   string   `json:"option3,omitempty"`
}

// Clock abstracts time.Now so stores and the scheduler can be tested
// with a fixed time.
type Clock interface {
	Now() time.Time
}
