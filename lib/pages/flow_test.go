package pages

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"storefront-e2e/lib/browser"
	"storefront-e2e/lib/money"
	"storefront-e2e/lib/pages/twin"
	"storefront-e2e/lib/session"
	"storefront-e2e/lib/telemetry"
	"storefront-e2e/lib/uiactions"

	"github.com/stretchr/testify/require"
)

type storefront struct {
	url     string
	twin    *twin.Twin
	browser *browser.Browser
	log     *telemetry.Log
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	log := telemetry.NewTestLog(&bytes.Buffer{})
	b := browser.ForTesting(t, log)
	tw := twin.New()
	srv := httptest.NewServer(tw.Handler())
	t.Cleanup(srv.Close)
	return &storefront{url: srv.URL, twin: tw, browser: b, log: log}
}

func (s *storefront) page(t *testing.T, storageState string) (*browser.Page, *uiactions.Actions) {
	t.Helper()
	page, err := s.browser.NewPage(context.Background(), storageState)
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	return page, uiactions.New(page.Page, s.log)
}

func (s *storefront) login(t *testing.T, password string) (*session.Manager, error) {
	t.Helper()
	page, a := s.page(t, "")
	flow := &LoginFlow{
		Page:         page,
		Actions:      a,
		BaseUrl:      s.url,
		Username:     twin.DefaultAccount.Username,
		Password:     password,
		AccountTitle: twin.AccountTitle,
	}
	m := session.NewManager(flow, filepath.Join(t.TempDir(), "state.json"), s.log)
	return m, m.Bootstrap(context.Background())
}

func TestLoginFlow(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	m, err := s.login(t, twin.DefaultAccount.Password)
	require.NoError(t, err)
	require.Equal(t, session.Authenticated, m.State())

	_, a := s.page(t, m.ArtifactPath())
	require.NoError(t, a.NavigateToURL(ctx, s.url, "Application URL"))
	require.NoError(t, NewMyAccountPage(a).VerifyLoggedIn(ctx))

	require.NoError(t, m.Teardown(ctx))
	require.Equal(t, session.Closed, m.State())
}

func TestLoginFlowWrongPassword(t *testing.T) {
	s := newStorefront(t)

	m, err := s.login(t, "wrong")
	require.ErrorIs(t, err, session.ErrBootstrap)
	require.ErrorIs(t, err, ErrLoginVerification)
	require.Equal(t, session.Closed, m.State())
}

func TestShopping(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	m, err := s.login(t, twin.DefaultAccount.Password)
	require.NoError(t, err)
	_, a := s.page(t, m.ArtifactPath())

	account := NewMyAccountPage(a)
	selection := NewProductSelectionPage(a)
	details := NewProductDetailsPage(a)
	cart := NewShoppingCartPage(a)

	for _, product := range []struct{ category, subCategory, name string }{
		{"Apparel & accessories", "Shoes", "Ladies Wedge Sandals"},
		{"Apparel & accessories", "T-shirts", "Casual 3/4 Sleeve Baseball T-Shirt"},
	} {
		require.NoError(t, a.NavigateToURL(ctx, s.url, "Application URL"))
		require.NoError(t, account.HoverOnProductCategory(ctx, product.category))
		require.NoError(t, account.SelectProductSubCategory(ctx, product.subCategory))
		require.NoError(t, selection.VerifySubCategoryHeading(ctx, product.subCategory))
		require.NoError(t, selection.SelectProduct(ctx, product.name))
		require.NoError(t, details.VerifyProductHeading(ctx, product.name))
		require.NoError(t, details.AddToCart(ctx))
		require.NoError(t, cart.VerifyHeading(ctx))
		require.True(t, cart.HasProduct(ctx, product.name))
	}
	require.NoError(t, cart.ContinueShopping(ctx))
	require.NoError(t, account.ViewCartItemsCountAndPrice(ctx))

	require.NoError(t, account.ClickShoppingCartLink(ctx))
	ok, err := cart.HasAtLeastProducts(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)

	lines, err := cart.LineItemTotals(ctx)
	require.NoError(t, err)
	displayed, err := cart.DisplayedTotal(ctx)
	require.NoError(t, err)
	expected, err := money.ExpectTotal(lines, displayed, money.FlatShipping)
	require.NoError(t, err)
	require.Equal(t, 27.50, expected)

	require.NoError(t, cart.DeleteProduct(ctx, "Ladies Wedge Sandals"))
	require.False(t, cart.HasProduct(ctx, "Ladies Wedge Sandals"))

	require.NoError(t, cart.ProceedToCheckout(ctx))
	checkout := NewCheckoutConfirmationPage(a)
	require.NoError(t, checkout.VerifyHeading(ctx))
	lines, err = checkout.LineItemTotals(ctx)
	require.NoError(t, err)
	displayed, err = checkout.DisplayedTotal(ctx)
	require.NoError(t, err)
	_, err = money.ExpectTotal(lines, displayed, money.FlatShipping)
	require.NoError(t, err)
	require.NoError(t, checkout.ConfirmOrder(ctx))
	require.True(t, account.VerifyOrderSuccessMessage(ctx))
}

func TestWishlistFlow(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	m, err := s.login(t, twin.DefaultAccount.Password)
	require.NoError(t, err)
	_, a := s.page(t, m.ArtifactPath())
	a.VisibilityTimeout = a.VisibilityTimeout / 5

	account := NewMyAccountPage(a)
	details := NewProductDetailsPage(a)
	wishlist := NewWishlistPage(a)

	require.NoError(t, a.NavigateToURL(ctx, s.url, "Application URL"))
	require.NoError(t, account.SelectProductSubCategory(ctx, "Eyes"))
	require.NoError(t, NewProductSelectionPage(a).SelectProduct(ctx, "Waterproof Mascara"))

	visible, err := details.IsRemoveFromWishlistVisible(ctx)
	require.NoError(t, err)
	require.False(t, visible)
	require.NoError(t, details.AddToWishlist(ctx))
	visible, err = details.IsRemoveFromWishlistVisible(ctx)
	require.NoError(t, err)
	require.True(t, visible)

	require.NoError(t, details.GoToWishlist(ctx))
	require.True(t, wishlist.VerifyHeading(ctx, "My Wish list"))
	require.True(t, wishlist.HasProduct(ctx, "Waterproof Mascara"))
	require.NoError(t, wishlist.DeleteProduct(ctx, "Waterproof Mascara"))
	require.False(t, wishlist.HasProduct(ctx, "Waterproof Mascara"))
	require.Empty(t, s.twin.Store.Wishlist(twin.DefaultAccount.Username))
}
