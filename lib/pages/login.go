package pages

import (
	"context"
	"fmt"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

type LoginPage struct {
	actions      *uiactions.Actions
	userName     playwright.Locator
	password     playwright.Locator
	loginButton  playwright.Locator
	errorMessage playwright.Locator
	logoutLabel  playwright.Locator
}

func NewLoginPage(a *uiactions.Actions) *LoginPage {
	page := a.Page
	return &LoginPage{
		actions:      a,
		userName:     page.Locator("#loginFrm_loginname"),
		password:     page.Locator("input[type=password]"),
		loginButton:  page.GetByTitle("Login"),
		errorMessage: page.GetByText("Incorrect login or password"),
		logoutLabel:  page.Locator("//div[@id='maincontainer']//child::span[contains(text(),'Account Logout')]"),
	}
}

func (p *LoginPage) PerformLogin(ctx context.Context, username, password string) error {
	err := p.actions.Fill(ctx, p.userName, username, "User Name Text Box")
	if err != nil {
		return err
	}
	err = p.actions.FillSensitive(ctx, p.password, password, "Password Text Box")
	if err != nil {
		return err
	}
	screenshot(ctx, p.actions, "Login Details Capture")
	return p.actions.Click(ctx, p.loginButton, "Login Button")
}

// VerifyLoginSuccess checks that the page title is the account page title,
// the storefront error message is logged otherwise.
func (p *LoginPage) VerifyLoginSuccess(ctx context.Context, pageTitle string) error {
	log := p.actions.Log
	err := p.actions.Page.WaitForLoadState()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginVerification, err)
	}
	if !p.actions.VerifyPageTitle(ctx, pageTitle, "My Account Page") {
		log.Error("Login Failed - Page title does not match")
		if p.actions.ElementExists(ctx, p.errorMessage, "Login Error Message") {
			message, err := p.actions.GetText(ctx, p.errorMessage, "Login Error Message")
			if err == nil {
				log.Error("Received error on Login " + message)
			}
		}
		return fmt.Errorf("%w: page title is not %q", ErrLoginVerification, pageTitle)
	}
	log.Info("Login Successful - Page title matches")
	return nil
}

func (p *LoginPage) VerifyLogoutSuccess(ctx context.Context) error {
	if !p.actions.VerifyVisibility(ctx, p.logoutLabel, "Account Logout Label") {
		p.actions.Log.Error("Unable to perform Logout")
		return postCondition("account logout label is not visible")
	}
	p.actions.Log.Info("Logout Successful")
	return nil
}
