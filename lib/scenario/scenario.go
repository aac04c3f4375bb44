// Package scenario turns rows of test data into named test scenarios and runs
// them with retries, step logging and result reporting.
package scenario

import (
	"storefront-e2e/lib/datasource"
)

const (
	FieldID   = "TestCaseId"
	FieldName = "TestCaseName"
	FieldFlag = "ExecutionFlag"

	// the only flag value that enables a row, compared exactly
	Enabled = "Yes"
)

type Descriptor struct {
	// sheet (or file) the row came from
	Section string
	ID      string
	Name    string
	Title   string
	Row     datasource.Row
}

type options struct {
	suffix func(datasource.Row) string
}

type Option func(*options)

// WithTitleSuffix appends a row dependent suffix to every title, for
// example " for book <BookName>".
func WithTitleSuffix(fn func(datasource.Row) string) Option {
	return func(o *options) {
		o.suffix = fn
	}
}

// Build creates one descriptor per enabled row in source order.
func Build(rows []datasource.Row, section string, opts ...Option) []Descriptor {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	descriptors := []Descriptor{}
	for _, row := range rows {
		if row.Get(FieldFlag) != Enabled {
			continue
		}
		d := Descriptor{
			Section: section,
			ID:      row.Get(FieldID),
			Name:    row.Get(FieldName),
			Row:     row,
		}
		d.Title = d.ID + ": " + d.Name
		if o.suffix != nil {
			d.Title += o.suffix(row)
		}
		descriptors = append(descriptors, d)
	}
	return descriptors
}

// Load reads a section of a data file and builds its descriptors, a missing
// file or section fails before anything runs.
func Load(dataDir, file, section string, opts ...Option) ([]Descriptor, error) {
	rows, err := datasource.Open(dataDir, file, section)
	if err != nil {
		return nil, err
	}
	return Build(rows, section, opts...), nil
}
