package pages

import (
	"context"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type HomePage struct {
	actions   *uiactions.Actions
	loginLink playwright.Locator
}

func NewHomePage(a *uiactions.Actions) *HomePage {
	return &HomePage{
		actions: a,
		loginLink: a.Page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{
			Name: "Login or register",
		}),
	}
}

func (p *HomePage) ClickLoginLink(ctx context.Context) error {
	return p.actions.Click(ctx, p.loginLink, "Login Link")
}
