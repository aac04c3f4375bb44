package htmlutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<ul id="menu">
	<li><a href="/index.php?rt=account/wishlist">  My   wish
		list </a></li>
	<li><a href="index.php?rt=checkout/cart&amp;remove=50">Remove</a></li>
	<li><a>No link</a></li>
</ul>
<span class="price">$<b>10</b>.00</span>
</body></html>`

func TestGetAnchors(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("#menu a"))
	require.Equal(t, []Anchor{
		{Name: "My wish list", Href: "/index.php?rt=account/wishlist"},
		{Name: "Remove", Href: "index.php?rt=checkout/cart&remove=50"},
		{Name: "No link", Href: ""},
	}, anchors)
}

func TestTexts(t *testing.T) {
	doc, err := Parse(page)
	require.NoError(t, err)
	require.Equal(t, []string{"$10.00"}, Texts(doc.Find("span.price")))
	require.Empty(t, Texts(doc.Find("table")))
}

func TestClean(t *testing.T) {
	require.Equal(t, "Total Moisture Facial Cream", Clean("\n\tTotal  Moisture\u00a0Facial Cream \u200b"))
}
