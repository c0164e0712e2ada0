package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// FromRemote maps an upstream product record to the persisted Product
// shape. It is a pure function: price, compare-at price and SKU come
// from the first variant, the image from the first variant's featured
// image, and availability is true if any variant is available. A
// product with zero variants has no price, no SKU, no image, and is
// unavailable.
func FromRemote(rp RemoteProduct) Product {
	variants := make([]Variant, 0, len(rp.Variants))
	for _, rv := range rp.Variants {
		variants = append(variants, Variant{
			ID:        rv.ID,
			Title:     rv.Title,
			Price:     ParsePrice(rv.Price),
			SKU:       rv.SKU,
			Available: rv.Available,
			Option1:   rv.Option1,
			Option2:   rv.Option2,
			Option3:   rv.Option3,
		})
	}

	p := Product{
		Title:       rp.Title,
		Handle:      rp.Handle,
		Vendor:      rp.Vendor,
		ProductType: rp.ProductType,
		Description: StripHTML(rp.BodyHTML),
		Variants:    variants,
	}

	if len(rp.Variants) > 0 {
		first := rp.Variants[0]
		p.Price = ParsePrice(first.Price)
		p.CompareAtPrice = ParsePrice(first.CompareAtPrice)
		p.SKU = first.SKU
		if first.FeaturedImage != nil {
			p.ImageURL = first.FeaturedImage.Src
		}
	}

	for _, rv := range rp.Variants {
		if rv.Available {
			p.Available = true
			break
		}
	}

	return p
}

// ParsePrice converts an upstream decimal string into a price value.
// Absent or unparsable input yields nil rather than zero.
func ParsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// StripHTML removes every <...> tag sequence from the input and trims
// surrounding whitespace.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}
