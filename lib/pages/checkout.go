package pages

import (
	"context"
	"fmt"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type CheckoutConfirmationPage struct {
	actions       *uiactions.Actions
	confirmButton playwright.Locator
	heading       playwright.Locator
}

func NewCheckoutConfirmationPage(a *uiactions.Actions) *CheckoutConfirmationPage {
	return &CheckoutConfirmationPage{
		actions:       a,
		confirmButton: a.Page.GetByTitle("Confirm Order"),
		heading:       a.Page.Locator("//span[contains(text(),'Checkout Confirmation')]"),
	}
}

func (p *CheckoutConfirmationPage) VerifyHeading(ctx context.Context) error {
	if !p.actions.VerifyVisibility(ctx, p.heading, "Checkout Confirmation Page Heading") {
		return postCondition("checkout confirmation heading is not visible")
	}
	return nil
}

func (p *CheckoutConfirmationPage) ConfirmOrder(ctx context.Context) error {
	err := p.actions.ScrollTo(ctx, p.confirmButton, "Confirm Order Button")
	if err != nil {
		return err
	}
	screenshot(ctx, p.actions, "Checkout Confirmation Page")
	return p.actions.Click(ctx, p.confirmButton, "Confirm Order Button")
}

func (p *CheckoutConfirmationPage) snapshot(ctx context.Context) (Checkout, error) {
	html, err := content(ctx, p.actions)
	if err != nil {
		return Checkout{}, err
	}
	checkout, err := ParseCheckout(html)
	if err != nil {
		return checkout, fmt.Errorf("parse checkout confirmation: %w", err)
	}
	return checkout, nil
}

func (p *CheckoutConfirmationPage) LineItemTotals(ctx context.Context) ([]string, error) {
	checkout, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return checkout.LineTotals, nil
}

func (p *CheckoutConfirmationPage) DisplayedTotal(ctx context.Context) (string, error) {
	checkout, err := p.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return checkout.Total, nil
}
