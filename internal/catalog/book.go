package catalog

import (
	"fmt"
	"hash/fnv"

	"github.com/fjod/go_bookstore/internal/cart"
	"github.com/shopspring/decimal"
)

const coverURLFormat = "https://covers.openlibrary.org/b/isbn/%s-M.jpg"

// price bounds in cents
const (
	minPriceCents = 3000
	maxPriceCents = 25000
)

// Book is a catalog entry. ISBN is the first ISBN reported upstream and is
// used as the cart SKU.
type Book struct {
	ISBN             string          `json:"isbn"`
	Title            string          `json:"title"`
	Authors          []string        `json:"authors,omitempty"`
	CoverURL         string          `json:"cover_url"`
	FirstPublishYear int             `json:"first_publish_year,omitempty"`
	Price            decimal.Decimal `json:"price"`
}

// LineItem converts the book into a cart line with quantity 1.
func (b Book) LineItem() cart.LineItem {
	return cart.LineItem{
		SKU:       b.ISBN,
		Title:     b.Title,
		Authors:   append([]string(nil), b.Authors...),
		CoverURL:  b.CoverURL,
		UnitPrice: b.Price,
		Quantity:  1,
	}
}

// PriceFor derives a stable price in [30, 250] with two decimals from isbn.
func PriceFor(isbn string) decimal.Decimal {
	h := fnv.New32a()
	_, _ = h.Write([]byte(isbn))
	cents := minPriceCents + int64(h.Sum32()%uint32(maxPriceCents-minPriceCents+1))
	return decimal.New(cents, -2)
}

func coverURL(isbn string) string {
	return fmt.Sprintf(coverURLFormat, isbn)
}
