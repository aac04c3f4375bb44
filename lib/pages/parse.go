package pages

import (
	"context"
	"errors"
	"strings"

	"storefront-e2e/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type CartLine struct {
	Name  string
	Total string
}

// Cart is what the shopping cart page displays.
type Cart struct {
	Lines []CartLine
	// the grand total, shipping included
	Total string
	// number of remove links, one per product row
	Removable int
}

func (c Cart) Names() []string {
	names := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		names[i] = l.Name
	}
	return names
}

func (c Cart) LineTotals() []string {
	totals := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		totals[i] = l.Total
	}
	return totals
}

const (
	cartRows   = "#cart > div > div:nth-of-type(1) > table > tbody > tr"
	grandTotal = "span.bold.totalamout"
)

var errNoTotal = errors.New("grand total not found")

// ParseCart reads the product rows and totals from the cart page html. Rows
// without a product link (headers) are skipped.
func ParseCart(ctx context.Context, content string) (Cart, error) {
	doc, err := htmlutil.Parse(content)
	if err != nil {
		return Cart{}, err
	}

	cart := Cart{}
	doc.Find(cartRows).Each(func(_ int, row *goquery.Selection) {
		name := row.Find("td:nth-child(2) > a")
		total := row.Find("td:nth-child(6)")
		if name.Length() == 0 || total.Length() == 0 {
			return
		}
		cart.Lines = append(cart.Lines, CartLine{
			Name:  htmlutil.Clean(name.First().Text()),
			Total: htmlutil.Clean(total.First().Text()),
		})
	})

	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a[href]")) {
		if strings.Contains(a.Href, "cart&remove") {
			cart.Removable++
		}
	}

	total := doc.Find(grandTotal)
	if total.Length() == 0 {
		return cart, errNoTotal
	}
	cart.Total = htmlutil.Clean(total.First().Text())
	return cart, nil
}

type Checkout struct {
	LineTotals []string
	Total      string
}

// ParseCheckout reads the line totals and the grand total from the checkout
// confirmation page html.
func ParseCheckout(content string) (Checkout, error) {
	doc, err := htmlutil.Parse(content)
	if err != nil {
		return Checkout{}, err
	}
	checkout := Checkout{
		LineTotals: htmlutil.Texts(doc.Find("td.checkout_heading")),
	}
	total := doc.Find(grandTotal)
	if total.Length() == 0 {
		return checkout, errNoTotal
	}
	checkout.Total = htmlutil.Clean(total.First().Text())
	return checkout, nil
}
