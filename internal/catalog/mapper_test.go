package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRemoteDerivesHeaderFieldsFromFirstVariant(t *testing.T) {
	t.Parallel()

	rp := RemoteProduct{
		ID:          12345,
		Title:       "Seamless Tights",
		Handle:      "seamless-tights",
		Vendor:      "Famme",
		ProductType: "Tights",
		BodyHTML:    "<p>Soft <b>seamless</b> tights</p>",
		Variants: []RemoteVariant{
			{
				ID:             1,
				Title:          "S / Black",
				Price:          "49.90",
				CompareAtPrice: "59.90",
				SKU:            "ST-S-BLK",
				Available:      false,
				Option1:        "S",
				Option2:        "Black",
				FeaturedImage:  &RemoteImage{ID: 9, Src: "https://cdn.example.com/tights.jpg"},
			},
			{
				ID:        2,
				Title:     "M / Black",
				Price:     "49.90",
				SKU:       "ST-M-BLK",
				Available: true,
			},
		},
	}

	p := FromRemote(rp)

	require.NotNil(t, p.Price)
	assert.InDelta(t, 49.90, *p.Price, 0.0001)
	require.NotNil(t, p.CompareAtPrice)
	assert.InDelta(t, 59.90, *p.CompareAtPrice, 0.0001)
	assert.Equal(t, "ST-S-BLK", p.SKU)
	assert.Equal(t, "https://cdn.example.com/tights.jpg", p.ImageURL)
	assert.Equal(t, "Soft seamless tights", p.Description)
	assert.True(t, p.Available, "any available variant makes the product available")

	require.Len(t, p.Variants, 2)
	require.NotNil(t, p.Variants[0].Price)
	assert.InDelta(t, 49.90, *p.Variants[0].Price, 0.0001)
	assert.False(t, p.Variants[0].Available)
	assert.True(t, p.Variants[1].Available)
}

func TestFromRemoteWithoutVariants(t *testing.T) {
	t.Parallel()

	p := FromRemote(RemoteProduct{Title: "Gift Card", BodyHTML: "  <div></div>  "})

	assert.Nil(t, p.Price)
	assert.Nil(t, p.CompareAtPrice)
	assert.Empty(t, p.SKU)
	assert.Empty(t, p.ImageURL)
	assert.False(t, p.Available)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Variants)
}

func TestFromRemoteAvailabilityRequiresAtLeastOneAvailableVariant(t *testing.T) {
	t.Parallel()

	rp := RemoteProduct{
		Title: "Sold Out Hoodie",
		Variants: []RemoteVariant{
			{ID: 1, Price: "89.00"},
			{ID: 2, Price: "89.00"},
		},
	}
	assert.False(t, FromRemote(rp).Available)

	rp.Variants[1].Available = true
	assert.True(t, FromRemote(rp).Available)
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		want  *float64
		delta float64
	}{
		{name: "plain decimal", in: "19.99", want: ptr(19.99)},
		{name: "integer", in: "20", want: ptr(20.0)},
		{name: "surrounding space", in: " 9.50 ", want: ptr(9.5)},
		{name: "empty", in: "", want: nil},
		{name: "garbage", in: "abc", want: nil},
		{name: "currency prefix rejected", in: "$19.99", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParsePrice(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.0001)
		})
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"no markup", "no markup"},
		{"  <br/> trimmed <hr>  ", "trimmed"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTML(tt.in))
	}
}

func ptr(v float64) *float64 { return &v }
