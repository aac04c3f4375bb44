package scenario

import (
	"errors"
	"fmt"
	"time"

	"storefront-e2e/lib/datasource"
	"storefront-e2e/lib/report"
	"storefront-e2e/lib/telemetry"
)

// ErrSkip marks a scenario whose precondition does not hold, it is reported
// as skipped and never retried.
var ErrSkip = errors.New("scenario skipped")

// Context is handed to every scenario body, it is recreated for each attempt.
type Context struct {
	Descriptor Descriptor
	Row        datasource.Row
	Log        *telemetry.Log
	// starts at 1
	Attempt int

	steps       []report.Step
	attachments []report.Attachment
}

func newContext(d Descriptor, log *telemetry.Log, attempt int) *Context {
	return &Context{
		Descriptor: d,
		Row:        d.Row,
		Log:        log,
		Attempt:    attempt,
	}
}

// Step runs fn as a numbered step, logging and recording its outcome. The
// error of fn is returned unchanged.
func (c *Context) Step(name string, fn func() error) error {
	n := len(c.steps) + 1
	c.Log.Info(fmt.Sprintf("Step %d: %s", n, name))

	start := time.Now()
	err := fn()
	step := report.Step{
		Name:     name,
		Status:   report.Passed,
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(err, ErrSkip):
		step.Status = report.Skipped
		step.Err = err.Error()
	case err != nil:
		step.Status = report.Failed
		step.Err = err.Error()
		c.Log.Error(fmt.Sprintf("Step %d failed: %s", n, name), "err", err)
	}
	c.steps = append(c.steps, step)
	return err
}

// Attach adds a named blob (a screenshot, a masked value) to the result.
func (c *Context) Attach(name string, body []byte, contentType string) {
	c.attachments = append(c.attachments, report.Attachment{
		Name:        name,
		ContentType: contentType,
		Body:        body,
	})
}

// Skip returns an error that marks the scenario as skipped.
func (c *Context) Skip(reason string) error {
	c.Log.Info("skipping scenario", "title", c.Descriptor.Title, "reason", reason)
	return fmt.Errorf("%w: %s", ErrSkip, reason)
}

func (c *Context) Steps() []report.Step {
	return c.steps
}
