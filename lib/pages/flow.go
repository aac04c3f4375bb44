package pages

import (
	"context"
	"fmt"

	"storefront-e2e/lib/browser"
	"storefront-e2e/lib/uiactions"
)

// LoginFlow logs into the storefront once for the whole run and logs out
// at the end of it.
type LoginFlow struct {
	Page         *browser.Page
	Actions      *uiactions.Actions
	BaseUrl      string
	Username     string
	Password     string
	AccountTitle string
}

func (f *LoginFlow) Login(ctx context.Context) error {
	a := f.Actions
	a.Log.Info("Step 0: Navigate to Application URL")
	err := a.NavigateToURL(ctx, f.BaseUrl, "Application URL")
	if err != nil {
		return err
	}

	a.Log.Info("Step 1: Click on Login Link")
	err = NewHomePage(a).ClickLoginLink(ctx)
	if err != nil {
		return err
	}

	a.Log.Info("Step 2: Login to Application and verify login")
	return NewLoginPage(a).PerformLogin(ctx, f.Username, f.Password)
}

func (f *LoginFlow) VerifyLogin(ctx context.Context) error {
	return NewLoginPage(f.Actions).VerifyLoginSuccess(ctx, f.AccountTitle)
}

func (f *LoginFlow) SaveState(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := f.Page.SaveStorageState(path)
	if err != nil {
		return fmt.Errorf("save storage state: %w", err)
	}
	return nil
}

func (f *LoginFlow) Logout(ctx context.Context) error {
	a := f.Actions
	err := a.NavigateToURL(ctx, f.BaseUrl, "Application URL")
	if err != nil {
		return err
	}
	a.Log.Info("Performing Logout Action")
	return NewMyAccountPage(a).LogOut(ctx)
}

func (f *LoginFlow) VerifyLogout(ctx context.Context) error {
	f.Actions.Log.Info("Verify Logout Success")
	return NewLoginPage(f.Actions).VerifyLogoutSuccess(ctx)
}
