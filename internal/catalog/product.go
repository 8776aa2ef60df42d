package catalog

import (
	"time"

	"searchsync/internal/binder"
	"searchsync/internal/search"
)

// Seller is the related entity a product references. In documents it
// reduces to its primary key.
type Seller struct {
	ID   string
	Name string
}

func (s Seller) PrimaryKey() string { return s.ID }

// Product is the catalog record kept in sync with the search engine.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64 // minor units
	Seller      Seller
	CreatedAt   time.Time
}

func (p Product) PrimaryKey() string { return p.ID }

func (p Product) Field(name string) (any, bool) {
	switch name {
	case "name":
		return p.Name, true
	case "description":
		return p.Description, true
	case "price":
		return p.Price, true
	case "seller":
		return p.Seller, true
	case "created_at":
		return p.CreatedAt, true
	}
	return nil, false
}

// Binding projects products into the "products" collection family
// behind the products-read / products-write aliases.
var Binding = binder.Binding{
	BaseName: "products",
	Fields:   []string{"name", "description", "price", "seller", "created_at"},
}

// SearchSchema matches the document shape BuildDocument produces: the
// default conversion renders every value as a string.
var SearchSchema = &search.Schema{
	Fields: []search.Field{
		{Name: "name", Type: "string"},
		{Name: "description", Type: "string"},
		{Name: "price", Type: "string"},
		{Name: "seller", Type: "string", Facet: true},
		{Name: "created_at", Type: "string", Sort: true},
	},
}
