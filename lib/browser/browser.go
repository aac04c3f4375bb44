// Package browser starts playwright and hands out pages that reuse the
// stored session.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"storefront-e2e/lib/config"
	"storefront-e2e/lib/telemetry"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	// chromium, firefox or webkit
	Name        string
	Headless    bool
	Screenshots bool
	// default timeout of every page operation
	Timeout time.Duration
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Name:        cfg.Browser.Name,
		Headless:    cfg.Browser.IsHeadless(),
		Screenshots: cfg.Browser.ScreenshotsEnabled(),
		Timeout:     config.BigTimeout,
	}
}

type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     *telemetry.Log
}

func Launch(opts Options, log *telemetry.Log) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Name {
	case "", "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", opts.Name)
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", opts.Name, err)
	}
	log.Info("browser launched", "name", opts.Name, "headless", opts.Headless, "version", b.Version())
	return &Browser{pw: pw, browser: b, opts: opts, log: log}, nil
}

func (b *Browser) Options() Options {
	return b.opts
}

// Page is a page in its own browser context.
type Page struct {
	playwright.Page
	Context playwright.BrowserContext
}

func (p *Page) Close() error {
	return p.Context.Close()
}

// NewPage opens a page in a fresh context. When storageState is not empty
// the context starts with the cookies and local storage saved there.
func (b *Browser) NewPage(ctx context.Context, storageState string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := playwright.BrowserNewContextOptions{}
	if storageState != "" {
		_, err := os.Stat(storageState)
		if err != nil {
			return nil, fmt.Errorf("session storage state: %w", err)
		}
		opts.StorageStatePath = playwright.String(storageState)
	}
	bctx, err := b.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if b.opts.Timeout > 0 {
		bctx.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))
	}

	page, err := bctx.NewPage()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("new page: %w", err), bctx.Close())
	}
	return &Page{Page: page, Context: bctx}, nil
}

// SaveStorageState writes the cookies and local storage of a page's
// context to path.
func (p *Page) SaveStorageState(path string) error {
	_, err := p.Context.StorageState(path)
	return err
}

func (b *Browser) Close() error {
	return errors.Join(b.browser.Close(), b.pw.Stop())
}

// ForTesting launches a headless chromium or skips the test when the
// playwright driver or browsers are not installed.
func ForTesting(t testing.TB, log *telemetry.Log) *Browser {
	t.Helper()
	if os.Getenv("E2E_SKIP_BROWSER") != "" {
		t.Skip("E2E_SKIP_BROWSER is set")
	}
	b, err := Launch(Options{Name: "chromium", Headless: true, Screenshots: true, Timeout: config.SmallTimeout}, log)
	if err != nil {
		t.Skipf("playwright is not available: %v", err)
	}
	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Logf("close browser: %v", err)
		}
	})
	return b
}
