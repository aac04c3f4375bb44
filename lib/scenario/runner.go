package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront-e2e/lib/report"
	"storefront-e2e/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("e2e.lib.scenario")

type Body func(ctx context.Context, sc *Context) error

type Runner struct {
	Suite string
	Log   *telemetry.Log
	// extra attempts after a failure
	Retries int
	// maximum number of lanes running at once in RunLanes
	Workers int
	// per attempt, zero means no timeout
	Timeout time.Duration
	Report  *report.Report
	// attachments on failure, usually a screenshot of the current page
	OnFailure func(ctx context.Context, sc *Context)
	// parent of every scenario, nil means context.Background()
	Context context.Context
}

// Run creates one subtest per descriptor, in order.
func (r Runner) Run(t *testing.T, descriptors []Descriptor, body Body) {
	t.Helper()
	for _, d := range descriptors {
		d := d
		t.Run(d.Title, func(t *testing.T) {
			res := r.Execute(r.parent(), d, body)
			switch res.Status {
			case report.Skipped:
				t.Skip(res.Err)
			case report.Failed:
				t.Fatalf("%s failed after %d attempt(s): %s", d.Title, res.Attempts, res.Err)
			}
		})
	}
}

func (r Runner) parent() context.Context {
	if r.Context == nil {
		return context.Background()
	}
	return r.Context
}

// Execute runs a single scenario with retries and records its result.
func (r Runner) Execute(ctx context.Context, d Descriptor, body Body) report.Result {
	ctx, span := tracer.Start(ctx, "scenario")
	defer span.End()
	span.SetAttributes(
		attribute.String("suite", r.Suite),
		attribute.String("title", d.Title),
	)

	r.Log.TestBegin(d.Title)
	defer r.Log.TestEnd(d.Title)

	res := report.Result{
		Suite:   r.Suite,
		ID:      d.ID,
		Title:   d.Title,
		Started: time.Now(),
	}

	var sc *Context
	var err error
	for attempt := 1; attempt <= r.Retries+1; attempt++ {
		sc = newContext(d, r.Log, attempt)
		res.Attempts = attempt
		err = r.attempt(ctx, sc, body)
		if err == nil || errors.Is(err, ErrSkip) {
			break
		}

		r.Log.Error("scenario attempt failed", "title", d.Title, "attempt", attempt, "err", err)
		if r.OnFailure != nil {
			r.OnFailure(ctx, sc)
		}
		if attempt <= r.Retries {
			r.Log.Info("retrying scenario", "title", d.Title, "attempt", attempt+1)
		}
	}

	res.Duration = time.Since(res.Started)
	res.Steps = sc.steps
	res.Attachments = sc.attachments
	switch {
	case err == nil:
		res.Status = report.Passed
	case errors.Is(err, ErrSkip):
		res.Status = report.Skipped
		res.Err = err.Error()
	default:
		res.Status = report.Failed
		res.Err = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "scenario failed")
	}
	r.Report.Add(res)
	return res
}

func (r Runner) attempt(ctx context.Context, sc *Context, body Body) (err error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario panicked: %v", p)
		}
	}()
	return body(ctx, sc)
}

// Lane is a sequence of scenarios that must run in order, usually one sheet.
type Lane struct {
	Name        string
	Descriptors []Descriptor
	Body        Body
}

// RunLanes runs lanes concurrently, at most Workers at a time. Scenarios
// within a lane run sequentially in source order.
func (r Runner) RunLanes(t *testing.T, lanes []Lane) {
	t.Helper()
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	slots := make(chan struct{}, workers)

	t.Run("lanes", func(t *testing.T) {
		for _, lane := range lanes {
			lane := lane
			t.Run(laneName(lane), func(t *testing.T) {
				t.Parallel()
				slots <- struct{}{}
				defer func() { <-slots }()

				r.Run(t, lane.Descriptors, lane.Body)
			})
		}
	})
}

func laneName(l Lane) string {
	if l.Name != "" {
		return l.Name
	}
	if len(l.Descriptors) > 0 {
		return l.Descriptors[0].Section
	}
	return "lane"
}
