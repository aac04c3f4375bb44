// Package pages holds one page object per storefront screen. Locators
// follow the storefront markup, every interaction goes through uiactions.
package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront-e2e/lib/uiactions"

	"github.com/playwright-community/playwright-go"
)

var (
	// the storefront did not show the account page after login
	ErrLoginVerification = errors.New("login verification failed")
	// an expected outcome of a page interaction did not hold
	ErrPostCondition = errors.New("post-condition not met")
)

func postCondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPostCondition, fmt.Sprintf(format, args...))
}

// xpathLiteral quotes s for use inside an xpath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

func linkByName(scope playwright.Locator, name string) playwright.Locator {
	return scope.GetByRole(*playwright.AriaRoleLink, playwright.LocatorGetByRoleOptions{
		Name: name,
	})
}

// screenshot attaches a screenshot, a failed capture never fails the
// scenario, it is logged by the action.
func screenshot(ctx context.Context, a *uiactions.Actions, name string) {
	_ = a.AttachScreenshot(ctx, name)
}

// content returns the current page html.
func content(ctx context.Context, a *uiactions.Actions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := a.Page.Content()
	if err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}
	return html, nil
}
