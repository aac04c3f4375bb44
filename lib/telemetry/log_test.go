package telemetry

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var linePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(debug|info|warn|error)\]: `)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewTestLog(&buf)
	log.Info("clicked element", "description", "login link", "attempt", 2)
	log.Error("request failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		require.Regexp(t, linePattern, l)
	}
	require.True(t, strings.HasSuffix(lines[0], `[info]: clicked element description="login link" attempt=2`), lines[0])
	require.Contains(t, lines[1], "[error]: request failed")
}

func TestScopedAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := NewTestLog(&buf).Scoped("suite", "bookstore")
	log.WithGroup("req").Info("sent", "status", 201)

	require.Contains(t, buf.String(), "sent suite=bookstore req.status=201")
}

func TestTestBeginEnd(t *testing.T) {
	var buf bytes.Buffer
	log := NewTestLog(&buf)
	log.TestBegin("TC01: Add product")
	log.TestEnd("TC01: Add product")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasSuffix(lines[0], testSeparator))
	require.Len(t, testSeparator, 81)
	require.True(t, strings.HasSuffix(lines[1], "TC01: Add product - Started"))
	require.True(t, strings.HasSuffix(lines[2], "TC01: Add product - Ended"))
	require.True(t, strings.HasSuffix(lines[3], testSeparator))
}

func TestOpenLogWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Logs")
	log, err := OpenLog(LogOptions{Dir: dir, Console: io.Discard})
	require.NoError(t, err)

	log.Info("hello")
	log.Debug("hidden")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	contents, err := os.ReadFile(filepath.Join(dir, "logs.log"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "[info]: hello")
	require.NotContains(t, string(contents), "hidden")
}

func TestSlogAPI(t *testing.T) {
	var buf bytes.Buffer
	api := NewScopedAPI("bookstore", SlogAPI{Logger: NewTestLog(&buf).Logger})
	api.ReportWarning("missing-isbn", "Git Pocket Guide")
	api.ReportCount("users", 3)

	out := buf.String()
	require.Contains(t, out, `[warn]: warning id=bookstore:missing-isbn params.0="Git Pocket Guide"`)
	require.Contains(t, out, "id=bookstore:users n=3")
}

func TestSetupWithoutEndpoints(t *testing.T) {
	tel, err := Setup(context.Background(), "test", Config{})
	require.NoError(t, err)
	require.Nil(t, tel.TracerProvider)
	require.Nil(t, tel.MeterProvider)
	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestSamplePerf(t *testing.T) {
	sample, err := SamplePerf(10 * time.Millisecond)
	if err != nil {
		t.Skipf("cpu usage unavailable: %v", err)
	}
	require.Positive(t, sample.Goroutines)
}
