package pages

import (
	"context"
	"strings"

	"storefront-e2e/lib/config"
	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type WishlistPage struct {
	actions *uiactions.Actions
	heading playwright.Locator
}

func NewWishlistPage(a *uiactions.Actions) *WishlistPage {
	return &WishlistPage{
		actions: a,
		heading: a.Page.Locator("//span[@class='maintext']"),
	}
}

func (p *WishlistPage) product(name string) playwright.Locator {
	return p.actions.Page.Locator("//div[@id='maincontainer']//child::a[contains(text()," + xpathLiteral(name) + ")]")
}

func (p *WishlistPage) deleteButton(name string) playwright.Locator {
	return p.actions.Page.Locator("//tr[.//a[contains(text()," + xpathLiteral(name) + ")]]//following-sibling::td//a[contains(@class,'btn-remove')]")
}

// VerifyHeading reports whether the heading contains expected, ignoring case.
func (p *WishlistPage) VerifyHeading(ctx context.Context, expected string) bool {
	heading, err := p.actions.GetText(ctx, p.heading, "My Wishlist Page Heading")
	if err != nil {
		return false
	}
	p.actions.Log.Info("Page Heading Text: " + heading)
	return strings.Contains(strings.ToLower(heading), strings.ToLower(expected))
}

func (p *WishlistPage) HasProduct(ctx context.Context, name string) bool {
	present := p.actions.VerifyVisibility(ctx, p.product(name), "Product in Wishlist")
	screenshot(ctx, p.actions, "My Wishlist Page")
	return present
}

func (p *WishlistPage) DeleteProduct(ctx context.Context, name string) error {
	a := p.actions
	button := p.deleteButton(name)
	description := "Delete Button for Product: " + name
	err := a.ScrollTo(ctx, button, description)
	if err != nil {
		return err
	}
	err = a.Click(ctx, button, description)
	if err != nil {
		return err
	}
	err = a.WaitForInvisible(ctx, p.product(name), "Product in Wishlist after Deletion", config.SmallTimeout)
	if err != nil {
		return err
	}
	screenshot(ctx, a, "My Wishlist Page after Deletion")
	return nil
}
