package pages

import (
	"context"
	"fmt"
	"strings"

	"storefront-e2e/lib/config"
	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type ShoppingCartPage struct {
	actions          *uiactions.Actions
	heading          playwright.Locator
	continueShopping playwright.Locator
	removeLinks      playwright.Locator
	finalAmount      playwright.Locator
	checkoutButton   playwright.Locator
}

func NewShoppingCartPage(a *uiactions.Actions) *ShoppingCartPage {
	page := a.Page
	return &ShoppingCartPage{
		actions:          a,
		heading:          page.GetByText("Shopping Cart"),
		continueShopping: page.Locator("//table[@id='totals_table']//following::a[@title='']"),
		removeLinks:      page.Locator("//a[contains(@href,'cart&remove')]"),
		finalAmount:      page.Locator("//span[@class='bold totalamout']"),
		checkoutButton:   page.Locator("#cart_checkout2"),
	}
}

func (p *ShoppingCartPage) product(name string) playwright.Locator {
	return p.actions.Page.Locator("//form[@id='cart']//child::a[contains(text()," + xpathLiteral(name) + ")]")
}

func (p *ShoppingCartPage) deleteButton(name string) playwright.Locator {
	return p.actions.Page.Locator("//tr[.//a[contains(text()," + xpathLiteral(name) + ")]]//td//a[contains(@href,'cart&remove')]")
}

func (p *ShoppingCartPage) VerifyHeading(ctx context.Context) error {
	if !p.actions.VerifyVisibility(ctx, p.heading, "Shopping Cart Heading") {
		return postCondition("shopping cart heading is not visible")
	}
	return nil
}

func (p *ShoppingCartPage) HasProduct(ctx context.Context, name string) bool {
	present := p.actions.VerifyVisibility(ctx, p.product(name), "Product Name in Shopping Cart")
	if present {
		p.actions.Log.Info("Product " + name + " is available in Shopping Cart")
	} else {
		p.actions.Log.Error("Product " + name + " is not available in Shopping Cart")
	}
	return present
}

func (p *ShoppingCartPage) ContinueShopping(ctx context.Context) error {
	err := p.actions.ScrollTo(ctx, p.continueShopping, "Continue Shopping")
	if err != nil {
		return err
	}
	screenshot(ctx, p.actions, "Shopping Cart List View")
	return p.actions.Click(ctx, p.continueShopping, "Continue Shopping")
}

// DeleteProduct removes the product row and waits for it to disappear.
func (p *ShoppingCartPage) DeleteProduct(ctx context.Context, name string) error {
	a := p.actions
	a.VerifyVisibility(ctx, p.product(name), "Product Name in Shopping Cart before Deletion")

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
	err = a.WaitForInvisible(ctx, p.product(name), "Product Name in Shopping Cart after Deletion", config.SmallTimeout)
	if err != nil {
		return err
	}
	screenshot(ctx, a, "Shopping Cart After Deletion of Product: "+name)
	return nil
}

func (p *ShoppingCartPage) HasAtLeastProducts(ctx context.Context, n int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	count, err := p.removeLinks.Count()
	if err != nil {
		return false, fmt.Errorf("count cart rows: %w", err)
	}
	return count >= n, nil
}

// Snapshot parses the cart as currently rendered.
func (p *ShoppingCartPage) Snapshot(ctx context.Context) (Cart, error) {
	html, err := content(ctx, p.actions)
	if err != nil {
		return Cart{}, err
	}
	cart, err := ParseCart(ctx, html)
	if err != nil {
		return cart, fmt.Errorf("parse shopping cart: %w", err)
	}
	return cart, nil
}

func (p *ShoppingCartPage) ProductNames(ctx context.Context) ([]string, error) {
	cart, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	screenshot(ctx, p.actions, "Products In Shopping Cart")
	names := cart.Names()
	p.actions.Log.Info("Products in Shopping Cart: " + strings.Join(names, ", "))
	return names, nil
}

func (p *ShoppingCartPage) LineItemTotals(ctx context.Context) ([]string, error) {
	cart, err := p.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return cart.LineTotals(), nil
}

func (p *ShoppingCartPage) DisplayedTotal(ctx context.Context) (string, error) {
	err := p.actions.ScrollTo(ctx, p.finalAmount, "Final Amount in Shopping Cart")
	if err != nil {
		return "", err
	}
	screenshot(ctx, p.actions, "Shopping Cart Total Amount")
	cart, err := p.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return cart.Total, nil
}

func (p *ShoppingCartPage) ProceedToCheckout(ctx context.Context) error {
	err := p.actions.ScrollTo(ctx, p.checkoutButton, "Checkout Button in Shopping Cart")
	if err != nil {
		return err
	}
	screenshot(ctx, p.actions, "Shopping Cart Before Proceeding to Checkout")
	return p.actions.Click(ctx, p.checkoutButton, "Checkout Button in Shopping Cart")
}
