package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	htmlDir  = "report"
	htmlFile = "index.html"
	jsonFile = "results.json"
)

func statusLabel(s Status) string {
	switch s {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	default:
		return strings.ToUpper(string(s))
	}
}

func statusColor(s Status) text.Colors {
	switch s {
	case Passed:
		return text.Colors{text.FgGreen}
	case Failed:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgYellow}
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// WriteSummary renders one row per result and the totals to w.
func WriteSummary(w io.Writer, results []Result, colors bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	if !colors {
		t.Style().Color = table.ColorOptions{}
	}
	t.SetTitle("TEST RESULTS SUMMARY")
	t.AppendHeader(table.Row{"Suite", "Scenario", "Status", "Attempts", "Duration"})
	for _, res := range results {
		status := statusLabel(res.Status)
		if colors {
			status = statusColor(res.Status).Sprint(status)
		}
		t.AppendRow(table.Row{res.Suite, truncate(res.Title, 60), status, res.Attempts, res.Duration.Round(time.Millisecond)})
		if res.Status == Failed && res.Err != "" {
			t.AppendRow(table.Row{"", "└─ " + truncate(res.Err, 60), "", "", ""})
		}
	}

	s := Summarize(results)
	result := "PASS"
	if !s.Ok() {
		result = "FAIL"
	}
	t.AppendFooter(table.Row{
		result,
		fmt.Sprintf("%d total, %d passed, %d failed, %d skipped", s.Total, s.Passed, s.Failed, s.Skipped),
		"", "",
		s.Duration.Round(time.Millisecond),
	})
	t.Render()
}

type environment struct {
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

type document struct {
	Name        string      `json:"name"`
	Timestamp   time.Time   `json:"timestamp"`
	Duration    string      `json:"duration"`
	Summary     Summary     `json:"summary"`
	Results     []Result    `json:"results"`
	Environment environment `json:"environment"`
}

// WriteJSON writes results.json into dir and returns its path.
func (r *Report) WriteJSON(dir string) (string, error) {
	results := r.Results()
	doc := document{
		Name:      r.Name,
		Timestamp: r.Started,
		Duration:  time.Since(r.Started).Round(time.Millisecond).String(),
		Summary:   Summarize(results),
		Results:   results,
		Environment: environment{
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, jsonFile)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return "", fmt.Errorf("write json report: %w", err)
	}
	return path, nil
}

const htmlHead = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.passed { color: #1a7f37; } .failed { color: #cf222e; } .skipped { color: #9a6700; }
img { max-width: 100%%; border: 1px solid #ccc; }
pre { background: #f6f8fa; padding: 8px; }
</style>
</head>
<body>
`

func htmlTable(header table.Row, rows []table.Row, class string) string {
	t := table.NewWriter()
	t.Style().HTML = table.HTMLOptions{
		CSSClass:    class,
		EmptyColumn: "&nbsp;",
		EscapeText:  false,
		Newline:     "<br/>",
	}
	t.AppendHeader(header)
	t.AppendRows(rows)
	return t.RenderHTML()
}

func statusSpan(s Status) string {
	return fmt.Sprintf(`<span class="%s">%s</span>`, s, statusLabel(s))
}

func renderAttachment(b *strings.Builder, a Attachment) {
	fmt.Fprintf(b, "<h4>%s</h4>\n", html.EscapeString(a.Name))
	switch {
	case strings.HasPrefix(a.ContentType, "image/"):
		fmt.Fprintf(b, `<img alt="%s" src="data:%s;base64,%s">`+"\n",
			html.EscapeString(a.Name), a.ContentType, base64.StdEncoding.EncodeToString(a.Body))
	default:
		fmt.Fprintf(b, "<pre>%s</pre>\n", html.EscapeString(string(a.Body)))
	}
}

// RenderHTML renders the summary and every scenario with its steps and
// attachments as a single page.
func RenderHTML(name string, results []Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, htmlHead, html.EscapeString(name))
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(name))

	s := Summarize(results)
	b.WriteString(htmlTable(
		table.Row{"Total", "Passed", "Failed", "Skipped", "Duration"},
		[]table.Row{{s.Total, s.Passed, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond)}},
		"summary",
	))

	rows := make([]table.Row, 0, len(results))
	for i, res := range results {
		rows = append(rows, table.Row{
			html.EscapeString(res.Suite),
			fmt.Sprintf(`<a href="#scenario-%d">%s</a>`, i, html.EscapeString(res.Title)),
			statusSpan(res.Status),
			res.Attempts,
			res.Duration.Round(time.Millisecond),
		})
	}
	b.WriteString(htmlTable(table.Row{"Suite", "Scenario", "Status", "Attempts", "Duration"}, rows, "results"))

	for i, res := range results {
		fmt.Fprintf(&b, `<h2 id="scenario-%d">%s %s</h2>`+"\n", i, statusSpan(res.Status), html.EscapeString(res.Title))
		if res.Err != "" {
			fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(res.Err))
		}
		if len(res.Steps) > 0 {
			steps := make([]table.Row, 0, len(res.Steps))
			for n, step := range res.Steps {
				steps = append(steps, table.Row{
					n + 1,
					html.EscapeString(step.Name),
					statusSpan(step.Status),
					step.Duration.Round(time.Millisecond),
					html.EscapeString(step.Err),
				})
			}
			b.WriteString(htmlTable(table.Row{"#", "Step", "Status", "Duration", "Error"}, steps, "steps"))
		}
		for _, a := range res.Attachments {
			renderAttachment(&b, a)
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// WriteHTML writes <resultsDir>/report/index.html and returns its path.
func (r *Report) WriteHTML(resultsDir string) (string, error) {
	dir := filepath.Join(resultsDir, htmlDir)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, htmlFile)
	err = os.WriteFile(path, []byte(RenderHTML(r.Name, r.Results())), 0644)
	if err != nil {
		return "", fmt.Errorf("write html report: %w", err)
	}
	return path, nil
}
