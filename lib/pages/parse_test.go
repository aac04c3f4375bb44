package pages

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"storefront-e2e/lib/money"
	"storefront-e2e/lib/pages/twin"

	"github.com/stretchr/testify/require"
)

func fetch(t *testing.T, client *http.Client, u string) string {
	t.Helper()
	res, err := client.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

// shop logs into a fresh twin and puts the given products in the cart.
func shop(t *testing.T, products ...string) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := httptest.NewServer(twin.New().Handler())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	res, err := client.PostForm(srv.URL+"/account/login", url.Values{
		"loginname": {twin.DefaultAccount.Username},
		"password":  {twin.DefaultAccount.Password},
	})
	require.NoError(t, err)
	res.Body.Close()

	for _, id := range products {
		res, err := client.PostForm(srv.URL+"/product/"+id+"/cart", nil)
		require.NoError(t, err)
		res.Body.Close()
	}
	return srv, client
}

func TestParseCart(t *testing.T) {
	srv, client := shop(t, "116", "121")

	cart, err := ParseCart(context.Background(), fetch(t, client, srv.URL+"/cart"))
	require.NoError(t, err)
	require.Equal(t, []string{"Ladies Wedge Sandals", "Casual 3/4 Sleeve Baseball T-Shirt"}, cart.Names())
	require.Equal(t, []string{"$10.00", "$15.50"}, cart.LineTotals())
	require.Equal(t, "$27.50", cart.Total)
	require.Equal(t, 2, cart.Removable)

	expected, err := money.ExpectTotal(cart.LineTotals(), cart.Total, money.FlatShipping)
	require.NoError(t, err)
	require.Equal(t, 27.50, expected)
}

func TestParseCheckout(t *testing.T) {
	srv, client := shop(t, "50", "50", "51")

	checkout, err := ParseCheckout(fetch(t, client, srv.URL+"/checkout"))
	require.NoError(t, err)
	require.Equal(t, []string{"$24.50", "$21.75"}, checkout.LineTotals)
	require.Equal(t, "$48.25", checkout.Total)

	_, err = money.ExpectTotal(checkout.LineTotals, checkout.Total, money.FlatShipping)
	require.NoError(t, err)
}

func TestParseMissingTotal(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "empty page", content: ""},
		{name: "no totals", content: `<form id="cart"><div><div><table><tr><td></td><td><a>A</a></td></tr></table></div></div></form>`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCart(context.Background(), tc.content)
			require.ErrorIs(t, err, errNoTotal)
			_, err = ParseCheckout(tc.content)
			require.ErrorIs(t, err, errNoTotal)
		})
	}
}

func TestXpathLiteral(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "Shoes", expected: "'Shoes'"},
		{in: "Men's Shoes", expected: `"Men's Shoes"`},
		{in: `Men's "Best"`, expected: `concat('Men', "'", 's "Best"')`},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, xpathLiteral(tc.in))
	}
}
