// Package storefront is the UI suite: one login for the whole run, then the
// cart, wishlist and checkout scenarios driven by the storefront workbook.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront-e2e/lib/browser"
	"storefront-e2e/lib/config"
	"storefront-e2e/lib/pages"
	"storefront-e2e/lib/report"
	"storefront-e2e/lib/scenario"
	"storefront-e2e/lib/session"
	"storefront-e2e/lib/telemetry"
	"storefront-e2e/lib/uiactions"
)

const (
	Name     = "storefront"
	DataFile = "test-data-automation-test-store.xlsx"
)

// Suite owns the browser and the session for a run. Setup must succeed
// before any scenario runs, Teardown runs once after the last one.
type Suite struct {
	Config config.Config
	Log    *telemetry.Log
	Report *report.Report

	// scenarios run under the context Setup was called with
	ctx     context.Context
	sheets  map[string][]scenario.Descriptor
	browser *browser.Browser
	flow    *pages.LoginFlow
	session *session.Manager
}

func New(cfg config.Config, log *telemetry.Log, rep *report.Report) *Suite {
	return &Suite{Config: cfg, Log: log, Report: rep}
}

func (s *Suite) actions(page *browser.Page) *uiactions.Actions {
	a := uiactions.New(page.Page, s.Log)
	a.VisibilityTimeout = s.Config.Run.VisibilityTimeout.Std()
	a.Screenshots = s.Config.Browser.ScreenshotsEnabled()
	return a
}

// Sheets lists the workbook sheets the suite reads, all of them must exist.
var Sheets = []string{SheetAddToCart, SheetAddToWishlist, SheetDeleteFromCart, SheetDeleteFromWishlist}

// Setup reads every sheet, then launches the browser, logs in and stores the
// session artifact. A missing sheet fails before the browser starts.
func (s *Suite) Setup(ctx context.Context) error {
	s.ctx = ctx
	err := s.Config.Validate(Name)
	if err != nil {
		return err
	}
	password, err := s.Config.StorefrontPassword()
	if err != nil {
		return fmt.Errorf("decrypt storefront password: %w", err)
	}
	err = s.loadSheets()
	if err != nil {
		return err
	}

	s.browser, err = browser.Launch(browser.OptionsFromConfig(s.Config), s.Log)
	if err != nil {
		return err
	}
	page, err := s.browser.NewPage(ctx, "")
	if err != nil {
		return err
	}
	defer page.Close()

	s.flow = &pages.LoginFlow{
		Page:         page,
		Actions:      s.actions(page),
		BaseUrl:      s.Config.Storefront.BaseUrl,
		Username:     s.Config.Storefront.Username,
		Password:     password,
		AccountTitle: s.Config.Storefront.MyAccountTitle,
	}
	s.session = session.NewManager(s.flow, s.Config.Resolve(s.Config.Browser.StorageState), s.Log)
	return s.session.Bootstrap(ctx)
}

// Teardown logs out from a page restored from the session artifact and
// closes the browser. Scenario results are never changed by it.
func (s *Suite) Teardown(ctx context.Context) error {
	if s.browser == nil {
		return nil
	}
	defer func() {
		err := s.browser.Close()
		if err != nil {
			s.Log.Warn("close browser", "err", err)
		}
		s.browser = nil
	}()
	if s.session == nil || s.session.State() != session.Authenticated {
		return nil
	}

	page, err := s.browser.NewPage(ctx, s.session.ArtifactPath())
	if err != nil {
		return err
	}
	defer page.Close()
	s.flow.Page = page
	s.flow.Actions = s.actions(page)
	return s.session.Teardown(ctx)
}

func (s *Suite) runner() scenario.Runner {
	return scenario.Runner{
		Suite:   Name,
		Log:     s.Log,
		Retries: s.Config.Run.RetryCount(),
		Workers: s.Config.Run.UIWorkers,
		Timeout: s.Config.Run.Timeout.Std(),
		Report:  s.Report,
		Context: s.ctx,
	}
}

type pageBody func(ctx context.Context, sc *scenario.Context, a *uiactions.Actions) error

// withPage gives every attempt a fresh page restored from the session,
// opened on the base url. A failed attempt attaches a screenshot of the page
// it failed on.
func (s *Suite) withPage(body pageBody) scenario.Body {
	return func(ctx context.Context, sc *scenario.Context) (err error) {
		page, err := s.browser.NewPage(ctx, s.session.ArtifactPath())
		if err != nil {
			return err
		}
		defer page.Close()

		a := s.actions(page).WithAttacher(sc)
		defer func() {
			if err != nil && !errors.Is(err, scenario.ErrSkip) {
				_ = a.AttachScreenshot(context.WithoutCancel(ctx), "Failure")
			}
		}()

		err = a.NavigateToURL(ctx, s.Config.Storefront.BaseUrl, "Application URL")
		if err != nil {
			return err
		}
		return body(ctx, sc, a)
	}
}

func (s *Suite) loadSheets() error {
	s.sheets = map[string][]scenario.Descriptor{}
	for _, sheet := range Sheets {
		descriptors, err := scenario.Load(s.Config.Resolve(s.Config.DataDir), DataFile, sheet)
		if err != nil {
			return fmt.Errorf("load %s: %w", sheet, err)
		}
		s.sheets[sheet] = descriptors
	}
	return nil
}

func (s *Suite) load(t *testing.T, sheet string) []scenario.Descriptor {
	t.Helper()
	descriptors, ok := s.sheets[sheet]
	if !ok {
		t.Fatalf("sheet %s was not loaded by Setup", sheet)
	}
	return descriptors
}

// single is a scenario that is not driven by a sheet.
func single(title string) []scenario.Descriptor {
	return []scenario.Descriptor{{Section: Name, Title: title}}
}

func (s *Suite) TestAddProductToCart(t *testing.T) {
	s.runner().Run(t, s.load(t, SheetAddToCart), s.withPage(AddProductToCart))
}

func (s *Suite) TestVerifyShoppingCartTotal(t *testing.T) {
	s.runner().Run(t, single("Verify Shopping Cart Total Amount"), s.withPage(VerifyShoppingCartTotal))
}

func (s *Suite) TestAddProductToWishlist(t *testing.T) {
	s.runner().Run(t, s.load(t, SheetAddToWishlist), s.withPage(AddProductToWishlist))
}

func (s *Suite) TestDeleteProductFromCart(t *testing.T) {
	s.runner().Run(t, s.load(t, SheetDeleteFromCart), s.withPage(DeleteProductFromCart))
}

func (s *Suite) TestDeleteProductFromWishlist(t *testing.T) {
	s.runner().Run(t, s.load(t, SheetDeleteFromWishlist), s.withPage(DeleteProductFromWishlist))
}

func (s *Suite) TestShoppingCartCheckout(t *testing.T) {
	s.runner().Run(t, single("Verify Shopping Cart Checkout Functionality"), s.withPage(ShoppingCartCheckout))
}

// Tests lists the scenarios in the order they run.
func (s *Suite) Tests() []testing.InternalTest {
	return []testing.InternalTest{
		{Name: "AddProductToCart", F: s.TestAddProductToCart},
		{Name: "VerifyShoppingCartTotal", F: s.TestVerifyShoppingCartTotal},
		{Name: "AddProductToWishlist", F: s.TestAddProductToWishlist},
		{Name: "DeleteProductFromCart", F: s.TestDeleteProductFromCart},
		{Name: "DeleteProductFromWishlist", F: s.TestDeleteProductFromWishlist},
		{Name: "ShoppingCartCheckout", F: s.TestShoppingCartCheckout},
	}
}
