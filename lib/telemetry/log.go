package telemetry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

const testSeparator = "#################################################################################"

type LogOptions struct {
	// directory the log file is written to, defaults to test-results/Logs
	Dir string
	// defaults to logs.log
	File  string
	Level slog.Level
	// defaults to os.Stdout, set to io.Discard to only write the file
	Console io.Writer
}

// Log is the run-scoped logger, it writes every line to the console and
// to a log file using the format `2006-01-02 15:04:05 [info]: message`.
type Log struct {
	*slog.Logger
	file *os.File
	path string
}

func OpenLog(opts LogOptions) (*Log, error) {
	if opts.Dir == "" {
		opts.Dir = filepath.Join("test-results", "Logs")
	}
	if opts.File == "" {
		opts.File = "logs.log"
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}

	err := os.MkdirAll(opts.Dir, 0777)
	if err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(opts.Dir, opts.File)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	handler := NewLineHandler(io.MultiWriter(opts.Console, f), opts.Level)
	return &Log{
		Logger: slog.New(handler),
		file:   f,
		path:   path,
	}, nil
}

// NewTestLog creates a log that only writes to w, mostly for tests.
func NewTestLog(w io.Writer) *Log {
	return &Log{Logger: slog.New(NewLineHandler(w, slog.LevelDebug))}
}

func (l *Log) Path() string {
	return l.path
}

func (l *Log) TestBegin(name string) {
	l.Info(testSeparator)
	l.Info(name + " - Started")
}

func (l *Log) TestEnd(name string) {
	l.Info(name + " - Ended")
	l.Info(testSeparator)
}

// Scoped returns a log that attaches the given attributes to every line
// while sharing the same outputs.
func (l *Log) Scoped(args ...any) *Log {
	return &Log{Logger: l.With(args...), path: l.path}
}

func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Sync()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// LineHandler is a slog.Handler that renders a single human readable line
// per record.
type LineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
}

func NewLineHandler(w io.Writer, level slog.Leveler) *LineHandler {
	return &LineHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	buf.WriteString(" [")
	buf.WriteString(strings.ToLower(r.Level.String()))
	buf.WriteString("]: ")
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}
		for _, inner := range a.Value.Group() {
			writeAttr(buf, group, inner)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	value := a.Value.String()
	if needsQuote(value) {
		value = strconv.Quote(value)
	}
	buf.WriteString(value)
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}
