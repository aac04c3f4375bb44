// Package uiactions wraps playwright primitives so every interaction is
// logged and traced the same way. Primitives are never retried here, the
// first error is returned to the caller.
package uiactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"storefront-e2e/lib/config"
	"storefront-e2e/lib/telemetry"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("e2e.lib.uiactions")

var ErrNotFound = errors.New("element not found")

// Attacher receives report attachments, usually the running scenario.
type Attacher interface {
	Attach(name string, body []byte, contentType string)
}

type Actions struct {
	Page playwright.Page
	Log  *telemetry.Log
	// optional
	Attacher Attacher
	// used by VerifyVisibility and IsVisible
	VisibilityTimeout time.Duration
	// how long the alert helpers listen for a dialog
	AlertWindow time.Duration
	Screenshots bool
}

func New(page playwright.Page, log *telemetry.Log) *Actions {
	return &Actions{
		Page:              page,
		Log:               log,
		VisibilityTimeout: config.SmallTimeout,
		AlertWindow:       config.SmallTimeout,
		Screenshots:       true,
	}
}

// WithAttacher returns a copy of the actions reporting to att.
func (a *Actions) WithAttacher(att Attacher) *Actions {
	next := *a
	next.Attacher = att
	return &next
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (a *Actions) run(ctx context.Context, name, description string, fn func() error) error {
	_, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("description", description),
	))
	defer span.End()

	err := ctx.Err()
	if err == nil {
		err = fn()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
	}
	return err
}

func (a *Actions) NavigateToURL(ctx context.Context, url, description string) error {
	err := a.run(ctx, "NavigateToURL", description, func() error {
		_, err := a.Page.Goto(url)
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error navigating to URL %s", url), "err", err)
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	a.Log.Info(fmt.Sprintf("Navigated to URL: %s successfully.", url))
	return nil
}

func (a *Actions) Click(ctx context.Context, l playwright.Locator, description string) error {
	err := a.run(ctx, "Click", description, func() error {
		return l.Click()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error clicking on %s", description), "err", err)
		return fmt.Errorf("click %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Clicked on %s successfully.", description))
	return nil
}

func (a *Actions) Fill(ctx context.Context, l playwright.Locator, value, description string) error {
	err := a.run(ctx, "Fill", description, func() error {
		return l.Fill(value)
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error filling %s with value %s", description, value), "err", err)
		return fmt.Errorf("fill %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Filled %s with value: %s successfully.", description, value))
	return nil
}

// FillSensitive fills the value but only ever logs and attaches it masked.
func (a *Actions) FillSensitive(ctx context.Context, l playwright.Locator, value, description string) error {
	err := a.run(ctx, "FillSensitive", description, func() error {
		return l.Fill(value)
	})
	if err != nil {
		// the error may echo the value back, so only its type is logged
		a.Log.Error(fmt.Sprintf("Error filling %s with value", description), "err_type", fmt.Sprintf("%T", err))
		return fmt.Errorf("fill %s failed", description)
	}
	masked := MaskSensitiveData(value, '*')
	message := fmt.Sprintf("Filled %s with value: %s", description, masked)
	if a.Attacher != nil {
		a.Attacher.Attach(message, []byte(message), "text/plain")
	}
	a.Log.Info(message + " successfully.")
	return nil
}

// MaskSensitiveData replaces every character with mask.
func MaskSensitiveData(value string, mask rune) string {
	return strings.Repeat(string(mask), len([]rune(value)))
}

// VerifyPageTitle reports whether the current title equals expected.
func (a *Actions) VerifyPageTitle(ctx context.Context, expected, description string) bool {
	var title string
	err := a.run(ctx, "VerifyPageTitle", description, func() error {
		var err error
		title, err = a.Page.Title()
		return err
	})
	a.Log.Info("Checking page title")
	if err != nil {
		a.Log.Error("Error reading page title", "err", err)
		return false
	}
	a.Log.Info("Page title is " + title)
	if title != expected {
		a.Log.Error(fmt.Sprintf("Page Title Verification Failed. Expected: %s, Actual: %s", expected, title))
		return false
	}
	a.Log.Info("Page Title Verification Passed")
	return true
}

func (a *Actions) Hover(ctx context.Context, l playwright.Locator, description string) error {
	err := a.run(ctx, "Hover", description, func() error {
		return l.Hover()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error hovering on %s", description), "err", err)
		return fmt.Errorf("hover %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Hovered on %s successfully.", description))
	return nil
}

func (a *Actions) ScrollTo(ctx context.Context, l playwright.Locator, description string) error {
	err := a.run(ctx, "ScrollTo", description, func() error {
		return l.ScrollIntoViewIfNeeded()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error scrolling to %s", description), "err", err)
		return fmt.Errorf("scroll to %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Scrolled to %s successfully.", description))
	return nil
}

const scrollToBottomScript = `() => window.scrollTo(0, document.body.scrollHeight || document.documentElement.scrollHeight)`

func (a *Actions) ScrollToPageBottom(ctx context.Context, description string) error {
	err := a.run(ctx, "ScrollToPageBottom", description, func() error {
		_, err := a.Page.Evaluate(scrollToBottomScript)
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error scrolling to bottom for %s", description), "err", err)
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	a.Log.Info("Scrolled to bottom: " + description)
	return nil
}

// VerifyVisibility waits up to VisibilityTimeout for the element and reports
// whether it became visible. It never errors.
func (a *Actions) VerifyVisibility(ctx context.Context, l playwright.Locator, description string) bool {
	err := a.run(ctx, "VerifyVisibility", description, func() error {
		return playwright.NewPlaywrightAssertions(float64(a.VisibilityTimeout.Milliseconds())).
			Locator(l).
			ToBeVisible()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error verifying visibility of %s", description), "err", err)
		return false
	}
	a.Log.Info(fmt.Sprintf("%s is visible on the page.", description))
	return true
}

// GetText returns the text content, "" when the element has none.
func (a *Actions) GetText(ctx context.Context, l playwright.Locator, description string) (string, error) {
	var text string
	err := a.run(ctx, "GetText", description, func() error {
		var err error
		text, err = l.TextContent()
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error retrieving text from %s", description), "err", err)
		return "", fmt.Errorf("get text of %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Retrieved text from %s successfully.", description))
	return text, nil
}

func (a *Actions) waitFor(ctx context.Context, l playwright.Locator, description string, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = config.SmallTimeout
	}
	return a.run(ctx, "WaitFor", description, func() error {
		return l.WaitFor(playwright.LocatorWaitForOptions{
			State:   state,
			Timeout: millis(timeout),
		})
	})
}

// WaitForInvisible waits for the element to be hidden, a zero timeout means
// the 5 second default.
func (a *Actions) WaitForInvisible(ctx context.Context, l playwright.Locator, description string, timeout time.Duration) error {
	err := a.waitFor(ctx, l, description, playwright.WaitForSelectorStateHidden, timeout)
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error waiting for %s to be invisible", description), "err", err)
		return fmt.Errorf("wait for %s to be invisible: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("%s is now invisible on the page.", description))
	return nil
}

func (a *Actions) WaitForVisible(ctx context.Context, l playwright.Locator, description string, timeout time.Duration) error {
	err := a.waitFor(ctx, l, description, playwright.WaitForSelectorStateVisible, timeout)
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error waiting for %s to be visible", description), "err", err)
		return fmt.Errorf("wait for %s to be visible: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("%s is now visible on the page.", description))
	return nil
}

func (a *Actions) count(ctx context.Context, l playwright.Locator, description string) (int, error) {
	var n int
	err := a.run(ctx, "Count", description, func() error {
		var err error
		n, err = l.Count()
		return err
	})
	return n, err
}

// ElementExists reports whether at least one element matches.
func (a *Actions) ElementExists(ctx context.Context, l playwright.Locator, description string) bool {
	n, err := a.count(ctx, l, description)
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error checking if %s exists", description), "err", err)
		return false
	}
	if n == 0 {
		a.Log.Info(fmt.Sprintf("%s does not exist on the page.", description))
		return false
	}
	a.Log.Info(fmt.Sprintf("%s exists on the page.", description))
	return true
}

func (a *Actions) predicate(ctx context.Context, name, description, yes, no string, fn func() (bool, error)) bool {
	var ok bool
	err := a.run(ctx, name, description, func() error {
		var err error
		ok, err = fn()
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error checking if %s is %s", description, yes), "err", err)
		return false
	}
	if ok {
		a.Log.Info(fmt.Sprintf("%s is %s.", description, yes))
	} else {
		a.Log.Info(fmt.Sprintf("%s is %s.", description, no))
	}
	return ok
}

func (a *Actions) IsEnabled(ctx context.Context, l playwright.Locator, description string) bool {
	return a.predicate(ctx, "IsEnabled", description, "enabled", "disabled", func() (bool, error) {
		return l.IsEnabled()
	})
}

func (a *Actions) IsEditable(ctx context.Context, l playwright.Locator, description string) bool {
	return a.predicate(ctx, "IsEditable", description, "editable", "not editable", func() (bool, error) {
		return l.IsEditable()
	})
}

func (a *Actions) IsVisible(ctx context.Context, l playwright.Locator, description string) bool {
	return a.predicate(ctx, "IsVisible", description, "visible", "not visible", func() (bool, error) {
		return l.IsVisible()
	})
}

func (a *Actions) IsChecked(ctx context.Context, l playwright.Locator, description string) bool {
	n, err := a.count(ctx, l, description)
	if err != nil || n == 0 {
		a.Log.Error(fmt.Sprintf("%s not found on the page.", description))
		return false
	}
	return a.predicate(ctx, "IsChecked", description, "checked", "not checked", func() (bool, error) {
		return l.IsChecked()
	})
}

func (a *Actions) requirePresent(ctx context.Context, l playwright.Locator, description string) error {
	n, err := a.count(ctx, l, description)
	if err != nil {
		return err
	}
	if n == 0 {
		a.Log.Error(fmt.Sprintf("%s not found on the page.", description))
		return fmt.Errorf("%w: %s", ErrNotFound, description)
	}
	return nil
}

func inputType(l playwright.Locator) string {
	t, err := l.GetAttribute("type")
	if err != nil {
		return ""
	}
	return strings.ToLower(t)
}

// CheckCheckboxOrRadio checks a checkbox or selects a radio button, with
// checked false it unchecks a checkbox. Radio buttons cannot be unselected.
func (a *Actions) CheckCheckboxOrRadio(ctx context.Context, l playwright.Locator, description string, checked bool) error {
	err := a.requirePresent(ctx, l, description)
	if err != nil {
		return err
	}

	radio := inputType(l) == "radio"
	if radio && !checked {
		a.Log.Info(fmt.Sprintf("Cannot unselect a radio button: %s. Skipping.", description))
		return fmt.Errorf("cannot unselect radio button %s", description)
	}

	err = a.run(ctx, "Check", description, func() error {
		if checked {
			return l.Check()
		}
		return l.Uncheck()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error checking/unchecking %s", description), "err", err)
		return fmt.Errorf("check %s: %w", description, err)
	}
	switch {
	case radio:
		a.Log.Info("Selected radio button: " + description)
	case checked:
		a.Log.Info("Checked checkbox: " + description)
	default:
		a.Log.Info("Unchecked checkbox: " + description)
	}
	return nil
}

// Uncheck unchecks a checkbox if it is checked, it is a no-op otherwise.
func (a *Actions) Uncheck(ctx context.Context, l playwright.Locator, description string) error {
	err := a.requirePresent(ctx, l, description)
	if err != nil {
		return err
	}
	if inputType(l) == "radio" {
		a.Log.Info(fmt.Sprintf("%s is a radio button and cannot be unchecked directly.", description))
		return fmt.Errorf("cannot uncheck radio button %s", description)
	}

	var wasChecked bool
	err = a.run(ctx, "Uncheck", description, func() error {
		var err error
		wasChecked, err = l.IsChecked()
		if err != nil || !wasChecked {
			return err
		}
		return l.Uncheck()
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error unchecking %s", description), "err", err)
		return fmt.Errorf("uncheck %s: %w", description, err)
	}
	if wasChecked {
		a.Log.Info("Unchecked checkbox: " + description)
	} else {
		a.Log.Info(fmt.Sprintf("%s was already unchecked.", description))
	}
	return nil
}

func (a *Actions) selectOption(ctx context.Context, l playwright.Locator, description, what string, values playwright.SelectOptionValues) error {
	err := a.requirePresent(ctx, l, description)
	if err != nil {
		return err
	}
	err = a.run(ctx, "SelectOption", description, func() error {
		_, err := l.SelectOption(values)
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error selecting %s in %s", what, description), "err", err)
		return fmt.Errorf("select %s in %s: %w", what, description, err)
	}
	a.Log.Info(fmt.Sprintf("Selected option with %s in %s.", what, description))
	return nil
}

func (a *Actions) SelectByValue(ctx context.Context, l playwright.Locator, value, description string) error {
	return a.selectOption(ctx, l, description, fmt.Sprintf("value '%s'", value), playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
}

func (a *Actions) SelectByVisibleText(ctx context.Context, l playwright.Locator, text, description string) error {
	return a.selectOption(ctx, l, description, fmt.Sprintf("visible text '%s'", text), playwright.SelectOptionValues{
		Labels: playwright.StringSlice(text),
	})
}

func (a *Actions) SelectByIndex(ctx context.Context, l playwright.Locator, index int, description string) error {
	return a.selectOption(ctx, l, description, fmt.Sprintf("index %d", index), playwright.SelectOptionValues{
		Indexes: &[]int{index},
	})
}

// GetAllOptions waits for the dropdown and returns the text of every option.
func (a *Actions) GetAllOptions(ctx context.Context, l playwright.Locator, description string) ([]string, error) {
	err := a.WaitForVisible(ctx, l, description, 0)
	if err != nil {
		return nil, err
	}
	var options []string
	err = a.run(ctx, "GetAllOptions", description, func() error {
		var err error
		options, err = l.Locator("option").AllTextContents()
		return err
	})
	if err != nil {
		a.Log.Error(fmt.Sprintf("Error retrieving options from %s", description), "err", err)
		return nil, fmt.Errorf("options of %s: %w", description, err)
	}
	a.Log.Info(fmt.Sprintf("Retrieved all options from %s: %s", description, strings.Join(options, ", ")))
	return options, nil
}

// listenForDialog handles at most one dialog appearing within AlertWindow.
// The absence of a dialog is only logged.
func (a *Actions) listenForDialog(ctx context.Context, description string, handle func(playwright.Dialog) error) (string, bool) {
	_, span := tracer.Start(ctx, "Dialog", trace.WithAttributes(
		attribute.String("description", description),
	))
	defer span.End()

	var handled atomic.Bool
	messages := make(chan string, 1)
	handler := func(d playwright.Dialog) {
		if !handled.CompareAndSwap(false, true) {
			return
		}
		message := d.Message()
		err := handle(d)
		if err != nil {
			span.RecordError(err)
			a.Log.Error(fmt.Sprintf("Error handling alert for %s", description), "err", err)
		}
		messages <- message
	}

	a.Page.On("dialog", handler)
	defer a.Page.RemoveListener("dialog", handler)

	window := a.AlertWindow
	if window <= 0 {
		window = config.SmallTimeout
	}
	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case message := <-messages:
		return message, true
	case <-timer.C:
	case <-ctx.Done():
	}
	a.Log.Info("No alert appeared for: " + description)
	return "", false
}

func (a *Actions) AcceptAlert(ctx context.Context, description string) {
	_, ok := a.listenForDialog(ctx, description, func(d playwright.Dialog) error {
		return d.Accept()
	})
	if ok {
		a.Log.Info("Alert accepted: " + description)
	}
}

// AcceptAlertAndGetText returns "" when no alert appeared.
func (a *Actions) AcceptAlertAndGetText(ctx context.Context, description string) string {
	message, ok := a.listenForDialog(ctx, description, func(d playwright.Dialog) error {
		return d.Accept()
	})
	if ok {
		a.Log.Info("Alert message: " + message)
		a.Log.Info("Alert accepted: " + description)
	}
	return message
}

func (a *Actions) DismissAlert(ctx context.Context, description string) {
	_, ok := a.listenForDialog(ctx, description, func(d playwright.Dialog) error {
		return d.Dismiss()
	})
	if ok {
		a.Log.Info("Alert dismissed: " + description)
	}
}

// AttachScreenshot attaches a full page screenshot when screenshots are
// enabled and an attacher is set.
func (a *Actions) AttachScreenshot(ctx context.Context, name string) error {
	if !a.Screenshots || a.Attacher == nil {
		return nil
	}
	var shot []byte
	err := a.run(ctx, "AttachScreenshot", name, func() error {
		var err error
		shot, err = a.Page.Screenshot(playwright.PageScreenshotOptions{
			FullPage: playwright.Bool(true),
		})
		return err
	})
	if err != nil {
		a.Log.Error("Error taking screenshot "+name, "err", err)
		return fmt.Errorf("screenshot %s: %w", name, err)
	}
	a.Attacher.Attach(name, shot, "image/png")
	return nil
}
