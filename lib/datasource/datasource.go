// Package datasource reads tabular test data (excel workbooks and csv files)
// into ordered rows keyed by the header row.
package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/xuri/excelize/v2"
)

// Row is a single record, field order follows the header row.
type Row struct {
	fields []string
	values map[string]string
}

// NewRow pairs header names with values. Header names are trimmed, values are
// kept verbatim so an "ExecutionFlag" of " Yes " does not enable a row.
func NewRow(fields []string, values []string) Row {
	r := Row{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v := ""
		if i < len(values) {
			v = values[i]
		}
		if _, dup := r.values[f]; !dup {
			r.fields = append(r.fields, f)
		}
		r.values[f] = v
	}
	return r
}

// Get returns the value of a field, or "" when the field is absent.
func (r Row) Get(field string) string {
	return r.values[field]
}

func (r Row) Lookup(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

func (r Row) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Map returns a copy of the row values.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// NotFoundError is returned when a data file or a section within it (a
// sheet) does not exist.
type NotFoundError struct {
	Source  string
	Section string
	// closest existing section name, empty when nothing is similar
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("data source %s not found", e.Source)
	}
	msg := fmt.Sprintf("section %q not found in %s", e.Section, e.Source)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", e.Suggestion)
	}
	return msg
}

// minimum jaro-winkler similarity for a sheet name to be suggested
const suggestionThreshold = 0.8

func suggest(name string, candidates []string) string {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(c), false)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}

func toRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := records[0]
	rows := []Row{}
	for _, record := range records[1:] {
		if isEmpty(record) {
			continue
		}
		rows = append(rows, NewRow(header, record))
	}
	return rows
}

func isEmpty(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadExcel reads a sheet of an xlsx workbook, the first row is the header.
func ReadExcel(path, sheet string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{Source: path}
	}
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	found := false
	for _, s := range sheets {
		if s == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, &NotFoundError{
			Source:     path,
			Section:    sheet,
			Suggestion: suggest(sheet, sheets),
		}
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, path, err)
	}
	return toRows(records), nil
}

// ReadCSV reads a csv file, the first record is the header.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{Source: path}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, path)
}

func parseCSV(r io.Reader, name string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return toRows(records), nil
}

// Open reads `file` from `dataDir`, choosing the reader by extension.
// `section` names the sheet for workbooks and is ignored for csv files.
func Open(dataDir, file, section string) ([]Row, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, file)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadExcel(path, section)
	case ".csv":
		return ReadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported data source %s", path)
	}
}

// Each calls fn for every row in source order until fn returns false.
func Each(rows []Row, fn func(Row) bool) {
	for _, r := range rows {
		if !fn(r) {
			return
		}
	}
}

// Sections lists the sheet names of a workbook.
func Sections(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &NotFoundError{Source: path}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
