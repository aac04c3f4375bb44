// Package bookstore is the API suite: every case registers its own user, adds
// a book to the user's collection and then edits or deletes it.
package bookstore

import (
	"context"
	"fmt"
	"testing"

	"storefront-e2e/lib/bookstore"
	"storefront-e2e/lib/config"
	"storefront-e2e/lib/datasource"
	"storefront-e2e/lib/report"
	"storefront-e2e/lib/restutil"
	"storefront-e2e/lib/scenario"
	"storefront-e2e/lib/telemetry"
)

const (
	Name     = "bookstore"
	DataFile = "test-data-bookstore-api.xlsx"
)

const (
	SheetAddBook    = "AddBook"
	SheetEditBook   = "EditBook"
	SheetDeleteBook = "DeleteBook"

	FieldBookName    = "BookName"
	FieldNewBookName = "NewBookName"
)

type Suite struct {
	Config config.Config
	Log    *telemetry.Log
	Report *report.Report

	ctx    context.Context
	client *bookstore.Client
}

func New(cfg config.Config, log *telemetry.Log, rep *report.Report) *Suite {
	return &Suite{Config: cfg, Log: log, Report: rep}
}

// Setup builds the shared api client, there is no session to bootstrap.
func (s *Suite) Setup(ctx context.Context) error {
	s.ctx = ctx
	err := s.Config.Validate(Name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := s.Config.Bookstore
	http, err := restutil.NewClient(s.Log, restutil.Options{
		BaseUrl:          cfg.BaseUrl,
		Timeout:          config.BigTimeout,
		CloudflareBypass: cfg.CloudflareBypass,
	})
	if err != nil {
		return err
	}
	s.client, err = bookstore.NewClient(http, s.Log, bookstore.Paths{
		CreateUser:    cfg.CreateUserPath,
		GenerateToken: cfg.GenerateTokenPath,
		Books:         cfg.BooksPath,
		Book:          cfg.BookPath,
	}, cfg.Password, s.Config.EncryptionKey)
	return err
}

func (s *Suite) Teardown(context.Context) error {
	return nil
}

func (s *Suite) runner() scenario.Runner {
	return scenario.Runner{
		Suite:   Name,
		Log:     s.Log,
		Retries: s.Config.Run.RetryCount(),
		Workers: s.Config.Run.APIWorkers,
		Timeout: s.Config.Run.Timeout.Std(),
		Report:  s.Report,
		Context: s.ctx,
		OnFailure: func(ctx context.Context, sc *scenario.Context) {
			sc.Attach("Test Data", []byte(fmt.Sprint(sc.Row.Map())), "text/plain")
		},
	}
}

func forBook(row datasource.Row) string {
	return " for book " + row.Get(FieldBookName)
}

type apiBody func(ctx context.Context, sc *scenario.Context, ops *bookstore.Operations) error

// withUser hands every attempt a fresh api session with a newly created
// user and its token.
func (s *Suite) withUser(body apiBody) scenario.Body {
	return func(ctx context.Context, sc *scenario.Context) error {
		ops := s.client.NewOperations()
		err := sc.Step("Create user and generate token", func() error {
			return ops.Register(ctx)
		})
		if err != nil {
			return err
		}
		return body(ctx, sc, ops)
	}
}

func AddBook(ctx context.Context, sc *scenario.Context, ops *bookstore.Operations) error {
	return sc.Step("Add book to collection", func() error {
		return ops.AddBookISBN(ctx, sc.Row.Get(FieldBookName))
	})
}

func EditBook(ctx context.Context, sc *scenario.Context, ops *bookstore.Operations) error {
	err := AddBook(ctx, sc, ops)
	if err != nil {
		return err
	}
	return sc.Step("Replace book in collection", func() error {
		return ops.EditBookISBN(ctx, sc.Row.Get(FieldBookName), sc.Row.Get(FieldNewBookName))
	})
}

func DeleteBook(ctx context.Context, sc *scenario.Context, ops *bookstore.Operations) error {
	err := AddBook(ctx, sc, ops)
	if err != nil {
		return err
	}
	return sc.Step("Delete book from collection", func() error {
		return ops.DeleteBookISBN(ctx, sc.Row.Get(FieldBookName))
	})
}

func (s *Suite) lanes(t *testing.T) []scenario.Lane {
	t.Helper()
	bodies := []struct {
		sheet string
		body  apiBody
	}{
		{SheetAddBook, AddBook},
		{SheetEditBook, EditBook},
		{SheetDeleteBook, DeleteBook},
	}
	lanes := []scenario.Lane{}
	for _, b := range bodies {
		descriptors, err := scenario.Load(s.Config.Resolve(s.Config.DataDir), DataFile, b.sheet, scenario.WithTitleSuffix(forBook))
		if err != nil {
			t.Fatalf("load %s: %v", b.sheet, err)
		}
		lanes = append(lanes, scenario.Lane{Name: b.sheet, Descriptors: descriptors, Body: s.withUser(b.body)})
	}
	return lanes
}

// TestBookstore runs the three sheets as concurrent lanes.
func (s *Suite) TestBookstore(t *testing.T) {
	s.runner().RunLanes(t, s.lanes(t))
}

func (s *Suite) Tests() []testing.InternalTest {
	return []testing.InternalTest{
		{Name: "BookstoreAPI", F: s.TestBookstore},
	}
}
