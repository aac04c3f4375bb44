package pages

import (
	"context"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type MyAccountPage struct {
	actions        *uiactions.Actions
	categoryMenu   playwright.Locator
	itemsLink      playwright.Locator
	itemsCount     playwright.Locator
	homeLink       playwright.Locator
	accountLink    playwright.Locator
	logoutLink     playwright.Locator
	welcomeMessage playwright.Locator
	orderSuccess   playwright.Locator
	wishlist       *wishlistMenu
}

func NewMyAccountPage(a *uiactions.Actions) *MyAccountPage {
	page := a.Page
	return &MyAccountPage{
		actions:        a,
		categoryMenu:   page.Locator("#categorymenu"),
		itemsLink:      page.Locator("//span[@class='cart_total']"),
		itemsCount:     page.Locator("//span[@class='cart_total']//preceding-sibling::span"),
		homeLink:       page.Locator("//section[@id='categorymenu']//child::a[contains(text(),'Home')]"),
		accountLink:    page.Locator("//ul[@id='main_menu']//child::span[contains(text(),'Account')]"),
		logoutLink:     page.Locator("//ul[@id='main_menu']//following::span[contains(text(),'Logout')]"),
		welcomeMessage: page.Locator("//div[contains(text(),'Welcome')]"),
		orderSuccess:   page.Locator("//h1[@class='heading1']//child::span[contains(text(),'Your Order Has Been Processed')]"),
		wishlist:       newWishlistMenu(a),
	}
}

func (p *MyAccountPage) HoverOnProductCategory(ctx context.Context, category string) error {
	return p.actions.Hover(ctx, linkByName(p.categoryMenu, category), "Product Category Link")
}

func (p *MyAccountPage) SelectProductSubCategory(ctx context.Context, subCategory string) error {
	return p.actions.Click(ctx, linkByName(p.categoryMenu, subCategory), "Product Sub Category Link")
}

// ViewCartItemsCountAndPrice hovers the cart summary and checks that it is
// not empty.
func (p *MyAccountPage) ViewCartItemsCountAndPrice(ctx context.Context) error {
	a := p.actions
	err := a.Hover(ctx, p.itemsLink, "Items Link")
	if err != nil {
		return err
	}
	screenshot(ctx, a, "Cart Items Count and Price Details")

	count, err := a.GetText(ctx, p.itemsCount, "Items Count")
	if err != nil {
		return err
	}
	a.Log.Info("Items Count:" + count)
	if count == "0" {
		return postCondition("cart item count is 0")
	}

	total, err := a.GetText(ctx, p.itemsLink, "Items Total")
	if err != nil {
		return err
	}
	a.Log.Info("Items Total:" + total)
	if total == "$0.00" {
		return postCondition("cart total is $0.00")
	}
	return nil
}

func (p *MyAccountPage) LogOut(ctx context.Context) error {
	err := p.actions.Hover(ctx, p.homeLink, "Home Link")
	if err != nil {
		return err
	}
	err = p.actions.Hover(ctx, p.accountLink, "Account Link")
	if err != nil {
		return err
	}
	return p.actions.Click(ctx, p.logoutLink, "Logout Link")
}

func (p *MyAccountPage) VerifyLoggedIn(ctx context.Context) error {
	if !p.actions.VerifyVisibility(ctx, p.welcomeMessage, "Welcome Message") {
		p.actions.Log.Error("Login was not successful, cannot proceed with further Test")
		return postCondition("welcome message is not visible")
	}
	p.actions.Log.Info("Login is successful, proceeding with further Test")
	return nil
}

func (p *MyAccountPage) ClickShoppingCartLink(ctx context.Context) error {
	return p.actions.Click(ctx, p.itemsLink, "Items Link")
}

func (p *MyAccountPage) VerifyOrderSuccessMessage(ctx context.Context) bool {
	return p.actions.VerifyVisibility(ctx, p.orderSuccess, "Order Success Message")
}

func (p *MyAccountPage) GoToWishlist(ctx context.Context) error {
	return p.wishlist.open(ctx)
}

// wishlistMenu is the account dropdown shared by the account and product
// pages, the wishlist link only exists once the dropdown is open.
type wishlistMenu struct {
	actions        *uiactions.Actions
	welcomeMessage playwright.Locator
	wishlistLink   playwright.Locator
}

func newWishlistMenu(a *uiactions.Actions) *wishlistMenu {
	return &wishlistMenu{
		actions:        a,
		welcomeMessage: a.Page.Locator("//div[contains(text(),'Welcome')]"),
		wishlistLink:   a.Page.Locator("//li[@class='dropdown open']//child::a[contains(text(),'My wish list')]"),
	}
}

func (m *wishlistMenu) open(ctx context.Context) error {
	err := m.actions.ScrollTo(ctx, m.welcomeMessage, "Welcome Message")
	if err != nil {
		return err
	}
	err = m.actions.Hover(ctx, m.welcomeMessage, "Welcome Message")
	if err != nil {
		return err
	}
	return m.actions.Click(ctx, m.wishlistLink, "My Wishlist Link")
}
