package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Product is one card in the storefront grid.
type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Price       pricing.Money `json:"price"`
	Image       string        `json:"image"`
	Description string        `json:"description"`
}

// Catalog is the read-only list of products shown on the page.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New builds a catalog. Later duplicates of an ID are dropped.
func New(products []Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		if _, dup := c.byID[id]; dup {
			continue
		}
		p.ID = id
		c.byID[id] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// List returns products in display order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Find looks a product up by id.
func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Default returns the seeded storefront catalog.
func Default() *Catalog {
	return New([]Product{
		{ID: "1", Name: "Classic Leather Bag", Price: decimal.NewFromInt(2499), Image: "/static/img/bag.jpg", Description: "Full-grain leather with brass hardware."},
		{ID: "2", Name: "Canvas Sneakers", Price: decimal.NewFromInt(1299), Image: "/static/img/sneakers.jpg", Description: "Everyday sneakers in washed canvas."},
		{ID: "3", Name: "Wool Beanie", Price: decimal.NewFromInt(450), Image: "/static/img/beanie.jpg", Description: "Soft merino knit."},
		{ID: "4", Name: "Analog Wristwatch", Price: decimal.NewFromInt(5999), Image: "/static/img/watch.jpg", Description: "Sapphire glass, 5 ATM."},
		{ID: "5", Name: "Linen Shirt", Price: decimal.RequireFromString("899.50"), Image: "/static/img/shirt.jpg", Description: "Breathable linen for warm days."},
		{ID: "6", Name: "Sunglasses", Price: decimal.NewFromInt(799), Image: "/static/img/sunglasses.jpg", Description: "Polarised lenses."},
	})
}
