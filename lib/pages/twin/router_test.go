package twin

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*Twin, *httptest.Server, *http.Client) {
	t.Helper()
	tw := New()
	srv := httptest.NewServer(tw.Handler())
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return tw, srv, &http.Client{Jar: jar}
}

func get(t *testing.T, client *http.Client, u string) (*http.Response, string) {
	t.Helper()
	res, err := client.Get(u)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func login(t *testing.T, client *http.Client, base string, account Account) string {
	t.Helper()
	res, err := client.PostForm(base+"/account/login", url.Values{
		"loginname": {account.Username},
		"password":  {account.Password},
	})
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestLogin(t *testing.T) {
	_, srv, client := newClient(t)

	_, body := get(t, client, srv.URL)
	require.Contains(t, body, "Login or register")

	body = login(t, client, srv.URL, Account{Username: DefaultAccount.Username, Password: "wrong"})
	require.Contains(t, body, "Incorrect login or password")

	body = login(t, client, srv.URL, DefaultAccount)
	require.Contains(t, body, "<title>"+AccountTitle+"</title>")
	require.Contains(t, body, "Welcome back "+DefaultAccount.Username)

	_, body = get(t, client, srv.URL+"/account/logout")
	require.Contains(t, body, "Account Logout")
	require.Contains(t, body, "Login or register")
}

func TestRequiresLogin(t *testing.T) {
	_, srv, client := newClient(t)

	for _, path := range []string{"/cart", "/wishlist", "/checkout", "/product/116", "/account"} {
		res, body := get(t, client, srv.URL+path)
		require.Equal(t, "/account/login", res.Request.URL.Path, path)
		require.Contains(t, body, "loginFrm_loginname")
	}
}

func TestCartAndOrder(t *testing.T) {
	tw, srv, client := newClient(t)
	login(t, client, srv.URL, DefaultAccount)

	for _, id := range []string{"116", "121"} {
		res, err := client.PostForm(srv.URL+"/product/"+id+"/cart", nil)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, "/cart", res.Request.URL.Path)
	}

	_, body := get(t, client, srv.URL+"/cart")
	require.Contains(t, body, `<span class="bold totalamout">$27.50</span>`)
	require.Contains(t, body, "cart&amp;remove=116")

	get(t, client, srv.URL+"/cart/remove?cart&remove=116")
	lines, subtotal := tw.Store.Cart(DefaultAccount.Username)
	require.Len(t, lines, 1)
	require.Equal(t, 15.50, subtotal)

	_, body = get(t, client, srv.URL+"/checkout")
	require.Contains(t, body, `<td class="checkout_heading">$15.50</td>`)

	res, err := client.PostForm(srv.URL+"/checkout/confirm", nil)
	require.NoError(t, err)
	confirmation, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(confirmation), "Your Order Has Been Processed!")

	lines, _ = tw.Store.Cart(DefaultAccount.Username)
	require.Empty(t, lines)
}

func TestWishlist(t *testing.T) {
	_, srv, client := newClient(t)
	login(t, client, srv.URL, DefaultAccount)

	_, body := get(t, client, srv.URL+"/product/50")
	require.Contains(t, body, "wishlist_add")

	res, body := get(t, client, srv.URL+"/product/50/wishlist/add")
	require.Equal(t, "/product/50", res.Request.URL.Path)
	require.Contains(t, body, "wishlist_remove")
	require.NotContains(t, body, "wishlist_add")

	_, body = get(t, client, srv.URL+"/wishlist")
	require.Contains(t, body, "Waterproof Mascara")

	_, body = get(t, client, srv.URL+"/wishlist/remove?product=50")
	require.NotContains(t, body, "Waterproof Mascara")
}

func TestUnknownProduct(t *testing.T) {
	_, srv, client := newClient(t)
	login(t, client, srv.URL, DefaultAccount)

	res, _ := get(t, client, srv.URL+"/product/404")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err := client.PostForm(srv.URL+"/product/404/cart", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCategories(t *testing.T) {
	s := NewStore(DefaultCatalog)
	categories := s.Categories()
	require.Len(t, categories, 2)
	require.Equal(t, "Apparel & accessories", categories[0].Name)
	require.Equal(t, []SubCategory{{"Shoes", "shoes"}, {"T-shirts", "t-shirts"}}, categories[0].SubCategories)

	name, products := s.SubCategory("t-shirts")
	require.Equal(t, "T-shirts", name)
	require.Len(t, products, 2)

	_, srv, client := newClient(t)
	_, body := get(t, client, srv.URL+"/category/shoes")
	require.True(t, strings.Contains(body, "list-inline"))
	require.Contains(t, body, "Ladies Wedge Sandals")
}

func TestSlug(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"Shoes", "shoes"},
		{"Apparel & accessories", "apparel-accessories"},
		{"T-shirts", "t-shirts"},
		{"  Skin care ", "skin-care"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, Slug(tc.name))
	}
}
