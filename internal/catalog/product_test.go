package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchsync/internal/catalog"
)

func sampleProduct() catalog.Product {
	return catalog.Product{
		ID:          "p1",
		Name:        "Linear Rail 300mm",
		Description: "Hardened steel, MGN12",
		Price:       2499,
		Seller:      catalog.Seller{ID: "s7", Name: "Precision Parts Co"},
		CreatedAt:   time.Date(2024, 5, 20, 8, 15, 0, 0, time.UTC),
	}
}

func TestProduct_CarriesEveryBoundField(t *testing.T) {
	// Every field the binding nominates must exist on the record,
	// otherwise saves fail with a configuration error at runtime.
	p := sampleProduct()
	for _, field := range catalog.Binding.Fields {
		_, ok := p.Field(field)
		assert.True(t, ok, "binding nominates %q but Product doesn't expose it", field)
	}
}

func TestProduct_UnknownField(t *testing.T) {
	_, ok := sampleProduct().Field("warehouse")
	assert.False(t, ok)
}

func TestProduct_Document(t *testing.T) {
	doc, err := catalog.Binding.BuildDocument(sampleProduct())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id":          "p1",
		"name":        "Linear Rail 300mm",
		"description": "Hardened steel, MGN12",
		"price":       "2499",
		"seller":      "s7",
		"created_at":  "2024-05-20 08:15:00",
	}, doc)
}
