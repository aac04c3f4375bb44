package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sample() []Result {
	return []Result{
		{
			Suite: "storefront", ID: "TC01", Title: "TC01: Add product to cart",
			Status: Passed, Attempts: 1, Duration: 1500 * time.Millisecond,
			Steps: []Step{
				{Name: "Verify if application is logged in", Status: Passed, Duration: time.Second},
				{Name: "Add product", Status: Passed, Duration: 500 * time.Millisecond},
			},
			Attachments: []Attachment{
				{Name: "Login <Details>", ContentType: "image/png", Body: []byte{0x89, 'P', 'N', 'G'}},
				{Name: "Filled password", ContentType: "text/plain", Body: []byte("value: ****")},
			},
		},
		{
			Suite: "bookstore", ID: "TC02", Title: "TC02: Delete book",
			Status: Failed, Attempts: 3, Duration: 2 * time.Second,
			Err: "delete book: expected status 204, got 400",
			Steps: []Step{
				{Name: "Delete", Status: Failed, Err: "expected status 204, got 400"},
			},
		},
		{Suite: "storefront", ID: "TC03", Title: "TC03: Delete from wishlist", Status: Skipped, Attempts: 1},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	expected := Summary{Total: 3, Passed: 1, Failed: 1, Skipped: 1, Duration: 3500 * time.Millisecond}
	if diff := cmp.Diff(expected, s); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	require.False(t, s.Ok())
	require.True(t, Summarize(nil).Ok())
}

func TestResultsOrder(t *testing.T) {
	r := New()
	for _, res := range sample() {
		r.Add(res)
	}
	var titles []string
	for _, res := range r.Results() {
		titles = append(titles, res.ID)
	}
	require.Equal(t, []string{"TC02", "TC01", "TC03"}, titles)
}

func TestConcurrentAdd(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Add(Result{Suite: "bookstore", Status: Passed})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, r.Summary().Passed)
}

func TestNilReport(t *testing.T) {
	var r *Report
	r.Add(Result{Status: Passed})
	require.Empty(t, r.Results())
}

func TestWriteJSON(t *testing.T) {
	r := New()
	for _, res := range sample() {
		r.Add(res)
	}
	path, err := r.WriteJSON(t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Name    string `json:"name"`
		Summary struct {
			Total  int `json:"total"`
			Failed int `json:"failed"`
		} `json:"summary"`
		Results []struct {
			Title       string `json:"title"`
			Attachments []map[string]any
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "storefront-e2e", doc.Name)
	require.Equal(t, 3, doc.Summary.Total)
	require.Equal(t, 1, doc.Summary.Failed)
	require.Len(t, doc.Results, 3)
	// attachment bodies stay out of the json
	require.NotContains(t, string(data), "value: ****")
}

func TestWriteHTML(t *testing.T) {
	r := New()
	for _, res := range sample() {
		r.Add(res)
	}
	dir := t.TempDir()
	path, err := r.WriteHTML(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "report", "index.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	require.Contains(t, page, `<a href="#scenario-1">TC01: Add product to cart</a>`)
	require.Contains(t, page, `<span class="failed">FAIL</span>`)
	require.Contains(t, page, "src=\"data:image/png;base64,iVBORw==\"")
	require.Contains(t, page, "Login &lt;Details&gt;")
	require.Contains(t, page, "<pre>value: ****</pre>")
	require.Contains(t, page, "delete book: expected status 204, got 400")
	require.Equal(t, 3, strings.Count(page, "<h2 id=\"scenario-"))
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sample(), false)
	out := buf.String()
	require.Contains(t, out, "TEST RESULTS SUMMARY")
	require.Contains(t, out, "TC02: Delete book")
	require.Contains(t, out, "└─ delete book: expected status 204, got 400")
	require.Contains(t, out, "3 total, 1 passed, 1 failed, 1 skipped")
	require.Contains(t, out, "FAIL")
	require.NotContains(t, out, "\x1b[")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
