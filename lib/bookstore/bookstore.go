// Package bookstore drives the bookstore REST api: users, tokens and the
// books in a user's collection.
package bookstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront-e2e/lib/cipher"
	"storefront-e2e/lib/restutil"
	"storefront-e2e/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("e2e.lib.bookstore")

type Paths struct {
	CreateUser    string
	GenerateToken string
	// GET lists the catalog, POST adds to a collection, PUT <books>/<isbn> replaces
	Books string
	// DELETE removes a single book from a collection
	Book string
}

// ErrUnknownBook is returned when a title is not in the catalog, before any
// request that would need its isbn is sent.
var ErrUnknownBook = errors.New("book not in catalog")

// StatusError is returned when the api answers with a status other than the
// one the operation expects.
type StatusError struct {
	Operation string
	Want      int
	Got       int
	Body      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: expected status %d, got %d: %s", e.Operation, e.Want, e.Got, e.Body)
}

// Client holds what every api test case shares: the http client and the
// decrypted password for new users.
type Client struct {
	http     *restutil.Client
	log      *telemetry.Log
	paths    Paths
	password string
}

// NewClient decrypts the user password once.
func NewClient(http *restutil.Client, log *telemetry.Log, paths Paths, encryptedPassword, key string) (*Client, error) {
	password, err := cipher.Decrypt(encryptedPassword, key)
	if err != nil {
		return nil, fmt.Errorf("decrypt bookstore password: %w", err)
	}
	return &Client{http: http, log: log, paths: paths, password: password}, nil
}

// Operations is the api session of a single test case, it is never shared.
type Operations struct {
	client *Client
	UserID string
	Token  string
}

func (c *Client) NewOperations() *Operations {
	return &Operations{client: c}
}

// RandomUserName generates a fresh user name for a test case.
func RandomUserName() (string, error) {
	suffix, err := random.String(8)
	if err != nil {
		return "", err
	}
	return "e2e" + suffix, nil
}

type credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type Book struct {
	ISBN  string `json:"isbn"`
	Title string `json:"title"`
}

func decode(operation string, res *resty.Response, out any) error {
	err := json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func (o *Operations) expect(operation string, res *resty.Response, want int) error {
	if res.StatusCode() == want {
		return nil
	}
	err := &StatusError{
		Operation: operation,
		Want:      want,
		Got:       res.StatusCode(),
		Body:      res.String(),
	}
	o.client.log.Error(err.Error())
	return err
}

func traced(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
	}
	return err
}

func (o *Operations) CreateUser(ctx context.Context, userName string) (string, error) {
	err := traced(ctx, "CreateUser", func(ctx context.Context) error {
		res, err := o.client.http.Post(ctx, restutil.Request{
			Url:         o.client.paths.CreateUser,
			Description: "Create User API",
			Body:        credentials{UserName: userName, Password: o.client.password},
		})
		if err != nil {
			return err
		}
		err = o.expect("create user", res, http.StatusCreated)
		if err != nil {
			return err
		}
		var body struct {
			UserID string `json:"userID"`
		}
		err = decode("create user", res, &body)
		if err != nil {
			return err
		}
		o.UserID = body.UserID
		return nil
	})
	if err != nil {
		o.client.log.Error(fmt.Sprintf("Error creating user %s", userName), "err", err)
		return "", err
	}
	o.client.log.Info("User created", "user_id", o.UserID)
	return o.UserID, nil
}

func (o *Operations) GenerateToken(ctx context.Context, userName string) (string, error) {
	err := traced(ctx, "GenerateToken", func(ctx context.Context) error {
		res, err := o.client.http.Post(ctx, restutil.Request{
			Url:         o.client.paths.GenerateToken,
			Description: "Generate Token API",
			Body:        credentials{UserName: userName, Password: o.client.password},
		})
		if err != nil {
			return err
		}
		err = o.expect("generate token", res, http.StatusOK)
		if err != nil {
			return err
		}
		var body struct {
			Token string `json:"token"`
		}
		err = decode("generate token", res, &body)
		if err != nil {
			return err
		}
		if body.Token == "" {
			return fmt.Errorf("generate token: empty token in response %s", res.String())
		}
		o.Token = body.Token
		return nil
	})
	if err != nil {
		o.client.log.Error("Error generating token", "err", err)
		return "", err
	}
	o.client.log.Info("Generated token")
	return o.Token, nil
}

// GetBookISBN filters the catalog by exact title, the last match wins. An
// unknown title yields an empty isbn.
func (o *Operations) GetBookISBN(ctx context.Context, title string) (string, error) {
	isbn := ""
	err := traced(ctx, "GetBookISBN", func(ctx context.Context) error {
		res, err := o.client.http.Get(ctx, restutil.Request{
			Url:         o.client.paths.Books,
			Description: "Get Book API",
		})
		if err != nil {
			return err
		}
		err = o.expect("get books", res, http.StatusOK)
		if err != nil {
			return err
		}
		var body struct {
			Books []Book `json:"books"`
		}
		err = decode("get books", res, &body)
		if err != nil {
			return err
		}
		for _, b := range body.Books {
			if b.Title == title {
				isbn = b.ISBN
			}
		}
		return nil
	})
	if err != nil {
		o.client.log.Error("Error getting book isbn", "err", err)
		return "", err
	}
	o.client.log.Info(fmt.Sprintf("Received Book ISBN %s for the book: %s", isbn, title))
	return isbn, nil
}

// requireISBN is GetBookISBN for operations that cannot continue without an
// isbn.
func (o *Operations) requireISBN(ctx context.Context, title string) (string, error) {
	isbn, err := o.GetBookISBN(ctx, title)
	if err != nil {
		return "", err
	}
	if isbn == "" {
		return "", fmt.Errorf("%w: no book titled %q", ErrUnknownBook, title)
	}
	return isbn, nil
}

type isbnRef struct {
	ISBN string `json:"isbn"`
}

// AddBookISBN adds a book to the user's collection, expecting 201.
func (o *Operations) AddBookISBN(ctx context.Context, title string) error {
	err := traced(ctx, "AddBookISBN", func(ctx context.Context) error {
		isbn, err := o.requireISBN(ctx, title)
		if err != nil {
			return err
		}
		res, err := o.client.http.Post(ctx, restutil.Request{
			Url:         o.client.paths.Books,
			Description: "Add Book API",
			Headers:     restutil.BearerAuth(o.Token),
			Body: struct {
				UserID            string    `json:"userId"`
				CollectionOfIsbns []isbnRef `json:"collectionOfIsbns"`
			}{UserID: o.UserID, CollectionOfIsbns: []isbnRef{{ISBN: isbn}}},
		})
		if err != nil {
			return err
		}
		o.client.log.Info("Response Body: " + res.String())
		return o.expect("add book", res, http.StatusCreated)
	})
	if err != nil {
		o.client.log.Error("Error adding Book ISBN", "title", title, "err", err)
		return err
	}
	o.client.log.Info("Book ISBN added successfully.")
	return nil
}

// EditBookISBN replaces a book in the collection with another one, expecting
// 200.
func (o *Operations) EditBookISBN(ctx context.Context, title, newTitle string) error {
	err := traced(ctx, "EditBookISBN", func(ctx context.Context) error {
		isbn, err := o.requireISBN(ctx, title)
		if err != nil {
			return err
		}
		o.client.log.Info(fmt.Sprintf("Editing Book ISBN %s to new Book %s", isbn, newTitle))
		newIsbn, err := o.requireISBN(ctx, newTitle)
		if err != nil {
			return err
		}
		res, err := o.client.http.Put(ctx, restutil.Request{
			Url:         o.client.paths.Books + "/" + isbn,
			Description: "Edit Book API",
			Headers:     restutil.BearerAuth(o.Token),
			Body: struct {
				UserID string `json:"userId"`
				ISBN   string `json:"isbn"`
			}{UserID: o.UserID, ISBN: newIsbn},
		})
		if err != nil {
			return err
		}
		o.client.log.Info("Response Body: " + res.String())
		return o.expect("edit book", res, http.StatusOK)
	})
	if err != nil {
		o.client.log.Error("Error editing Book ISBN", "title", title, "err", err)
		return err
	}
	o.client.log.Info("Book ISBN edited successfully.")
	return nil
}

// DeleteBookISBN removes a book from the collection, expecting 204.
func (o *Operations) DeleteBookISBN(ctx context.Context, title string) error {
	err := traced(ctx, "DeleteBookISBN", func(ctx context.Context) error {
		isbn, err := o.requireISBN(ctx, title)
		if err != nil {
			return err
		}
		o.client.log.Info("Deleting Book ISBN " + isbn)
		res, err := o.client.http.Delete(ctx, restutil.Request{
			Url:         o.client.paths.Book,
			Description: "Delete Book API",
			Headers:     restutil.BearerAuth(o.Token),
			Body: struct {
				UserID string `json:"userId"`
				ISBN   string `json:"isbn"`
			}{UserID: o.UserID, ISBN: isbn},
		})
		if err != nil {
			return err
		}
		return o.expect("delete book", res, http.StatusNoContent)
	})
	if err != nil {
		o.client.log.Error("Error deleting Book ISBN", "title", title, "err", err)
		return err
	}
	o.client.log.Info("Book ISBN deleted successfully.")
	return nil
}

// Register creates a fresh user and a token for it.
func (o *Operations) Register(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	userName, err := RandomUserName()
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("user_name", userName))
	_, err = o.CreateUser(ctx, userName)
	if err != nil {
		return err
	}
	_, err = o.GenerateToken(ctx, userName)
	return err
}
