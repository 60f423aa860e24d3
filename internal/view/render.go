package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/reviews"
	"github.com/noah-isme/toko-storefront/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// ProductCard is a catalog product ready for display.
type ProductCard struct {
	catalog.Product
	DisplayPrice string
	RawPrice     string
}

// Page is everything the storefront page shows.
type Page struct {
	Title       string
	Cart        cart.Snapshot
	Products    []ProductCard
	Reviews     []reviews.Entry
	FreshReview bool
	Notice      string
	NoticeTTLMS int64
	Dialog      *session.Dialog
	CSRFToken   string
	Ratings     []int
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl   *template.Template
	format pricing.Formatter
}

// NewRenderer parses the embedded templates.
func NewRenderer(format pricing.Formatter) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, format: format}, nil
}

// Cards formats catalog products with the configured money format.
func (r *Renderer) Cards(products []catalog.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, ProductCard{
			Product:      p,
			DisplayPrice: r.format.Format(p.Price),
			RawPrice:     p.Price.String(),
		})
	}
	return cards
}

// Page writes the full storefront page.
func (r *Renderer) Page(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Toko"
	}
	if len(p.Ratings) == 0 {
		p.Ratings = []int{5, 4, 3, 2, 1}
	}
	return r.tmpl.ExecuteTemplate(w, "page", p)
}
