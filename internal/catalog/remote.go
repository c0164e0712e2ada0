package catalog

// RemoteCatalog is the top-level upstream payload, shaped
// {"products": [...]}.
type RemoteCatalog struct {
	Products []RemoteProduct `json:"products"`
}

// RemoteProduct mirrors the upstream JSON schema for a product. It is
// transient; only the mapped Product is persisted.
type RemoteProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	BodyHTML    string          `json:"body_html"`
	PublishedAt string          `json:"published_at"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Tags        []string        `json:"tags"`
	Variants    []RemoteVariant `json:"variants"`
}

// RemoteVariant mirrors the upstream variant shape. Prices arrive as
// decimal strings.
type RemoteVariant struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Price          string       `json:"price"`
	SKU            string       `json:"sku"`
	Available      bool         `json:"available"`
	Option1        string       `json:"option1"`
	Option2        string       `json:"option2"`
	Option3        string       `json:"option3"`
	CompareAtPrice string       `json:"compare_at_price"`
	FeaturedImage  *RemoteImage `json:"featured_image"`
	Grams          int          `json:"grams"`
	Position       int          `json:"position"`
}

// RemoteImage mirrors the upstream featured-image shape.
type RemoteImage struct {
	ID       int64  `json:"id"`
	Src      string `json:"src"`
	Alt      string `json:"alt"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Position int    `json:"position"`
}
