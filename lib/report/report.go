// Package report collects scenario results and renders, stores and mails
// them after a run.
package report

import (
	"sort"
	"sync"
	"time"
)

type Status string

const (
	Passed  Status = "passed"
	Failed  Status = "failed"
	Skipped Status = "skipped"
)

type Step struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"error,omitempty"`
}

// Attachment bodies are only rendered into the html report.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"-"`
}

type Result struct {
	Suite       string        `json:"suite"`
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Status      Status        `json:"status"`
	Attempts    int           `json:"attempts"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
	Err         string        `json:"error,omitempty"`
	Steps       []Step        `json:"steps,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
}

type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Ok reports whether no scenario failed.
func (s Summary) Ok() bool {
	return s.Failed == 0
}

// Report is safe for concurrent use, a nil *Report drops every result.
type Report struct {
	Name    string
	Started time.Time

	mu      sync.Mutex
	results []Result
}

func New() *Report {
	return &Report{Name: "storefront-e2e", Started: time.Now()}
}

func (r *Report) Add(res Result) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns the results ordered by suite, keeping insertion order
// within a suite.
func (r *Report) Results() []Result {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Suite < out[j].Suite
	})
	return out
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case Passed:
			s.Passed++
		case Failed:
			s.Failed++
		case Skipped:
			s.Skipped++
		}
		s.Duration += res.Duration
	}
	return s
}

func (r *Report) Summary() Summary {
	return Summarize(r.Results())
}
