package bookstore

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-e2e/lib/bookstore/twin"
	"storefront-e2e/lib/cipher"
	"storefront-e2e/lib/restutil"
	"storefront-e2e/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const passphrase = "bookstore-passphrase"

var paths = Paths{
	CreateUser:    "/Account/v1/User",
	GenerateToken: "/Account/v1/GenerateToken",
	Books:         "/BookStore/v1/Books",
	Book:          "/BookStore/v1/Book",
}

func setup(t *testing.T) (*Client, *twin.Twin, *bytes.Buffer) {
	t.Helper()
	fake := twin.New()
	server := httptest.NewServer(fake.Handler())
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	log := telemetry.NewTestLog(&buf)
	http, err := restutil.NewClient(log, restutil.Options{BaseUrl: server.URL})
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("Secret@123", passphrase)
	require.NoError(t, err)
	client, err := NewClient(http, log, paths, encrypted, passphrase)
	require.NoError(t, err)
	return client, fake, &buf
}

func register(t *testing.T, client *Client) *Operations {
	t.Helper()
	ops := client.NewOperations()
	require.NoError(t, ops.Register(context.Background()))
	require.NotEmpty(t, ops.UserID)
	require.NotEmpty(t, ops.Token)
	return ops
}

func TestNewClientWrongKey(t *testing.T) {
	encrypted, err := cipher.Encrypt("Secret@123", passphrase)
	require.NoError(t, err)
	_, err = NewClient(nil, nil, paths, encrypted+"zz", passphrase)
	require.ErrorIs(t, err, cipher.ErrDecryption)
}

func TestGetBookISBN(t *testing.T) {
	client, _, _ := setup(t)
	ops := client.NewOperations()
	ctx := context.Background()

	isbn, err := ops.GetBookISBN(ctx, "Git Pocket Guide")
	require.NoError(t, err)
	require.Equal(t, "9781449325862", isbn)

	isbn, err = ops.GetBookISBN(ctx, "No Such Book")
	require.NoError(t, err)
	require.Empty(t, isbn)
}

func TestGetBookISBNLastMatchWins(t *testing.T) {
	catalog := append([]twin.Book{}, twin.DefaultCatalog...)
	catalog = append(catalog, twin.Book{ISBN: "0000000000001", Title: "Git Pocket Guide"})
	fake := &twin.Twin{Store: twin.NewStore(catalog)}
	server := httptest.NewServer(fake.Handler())
	defer server.Close()

	var buf bytes.Buffer
	log := telemetry.NewTestLog(&buf)
	http, err := restutil.NewClient(log, restutil.Options{BaseUrl: server.URL})
	require.NoError(t, err)
	ops := (&Client{http: http, log: log, paths: paths}).NewOperations()

	isbn, err := ops.GetBookISBN(context.Background(), "Git Pocket Guide")
	require.NoError(t, err)
	require.Equal(t, "0000000000001", isbn)
}

func TestAddEditDelete(t *testing.T) {
	client, fake, buf := setup(t)
	ops := register(t, client)
	ctx := context.Background()

	require.NoError(t, ops.AddBookISBN(ctx, "Git Pocket Guide"))
	require.Equal(t, []string{"9781449325862"}, fake.Store.Collection(ops.UserID))

	before, err := ops.GetBookISBN(ctx, "Git Pocket Guide")
	require.NoError(t, err)
	require.NoError(t, ops.EditBookISBN(ctx, "Git Pocket Guide", "Speaking JavaScript"))
	require.Equal(t, []string{"9781449365035"}, fake.Store.Collection(ops.UserID))
	after, err := ops.GetBookISBN(ctx, "Git Pocket Guide")
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.NoError(t, ops.DeleteBookISBN(ctx, "Speaking JavaScript"))
	require.Empty(t, fake.Store.Collection(ops.UserID))

	require.Contains(t, buf.String(), "Sending POST request for Add Book API")
	require.Contains(t, buf.String(), "Book ISBN deleted successfully.")
}

func TestUnexpectedStatus(t *testing.T) {
	client, _, buf := setup(t)
	ops := register(t, client)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		op   string
		want int
		got  int
	}{
		{
			name: "add twice",
			call: func() error {
				require.NoError(t, ops.AddBookISBN(ctx, "You Don't Know JS"))
				return ops.AddBookISBN(ctx, "You Don't Know JS")
			},
			op: "add book", want: 201, got: 400,
		},
		{
			name: "delete book not in collection",
			call: func() error { return ops.DeleteBookISBN(ctx, "Speaking JavaScript") },
			op:   "delete book", want: 204, got: 400,
		},
		{
			name: "edit with bad token",
			call: func() error {
				other := client.NewOperations()
				other.UserID = ops.UserID
				other.Token = "bogus"
				return other.EditBookISBN(ctx, "You Don't Know JS", "Speaking JavaScript")
			},
			op: "edit book", want: 200, got: 401,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			require.Equal(t, tc.op, statusErr.Operation)
			require.Equal(t, tc.want, statusErr.Want)
			require.Equal(t, tc.got, statusErr.Got)
		})
	}
	require.Contains(t, buf.String(), "Error adding Book ISBN")
}

func TestUnknownTitle(t *testing.T) {
	client, fake, buf := setup(t)
	ops := register(t, client)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
		api  string
	}{
		{
			name: "add",
			call: func() error { return ops.AddBookISBN(ctx, "No Such Book") },
			api:  "Add Book API",
		},
		{
			name: "edit to unknown title",
			call: func() error { return ops.EditBookISBN(ctx, "Git Pocket Guide", "No Such Book") },
			api:  "Edit Book API",
		},
		{
			name: "delete",
			call: func() error { return ops.DeleteBookISBN(ctx, "No Such Book") },
			api:  "Delete Book API",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.ErrorIs(t, err, ErrUnknownBook)
			require.ErrorContains(t, err, `no book titled "No Such Book"`)
			require.NotContains(t, buf.String(), tc.api)
		})
	}
	require.Empty(t, fake.Store.Collection(ops.UserID))
}

func TestSessionsAreIsolated(t *testing.T) {
	client, fake, _ := setup(t)
	a := register(t, client)
	b := register(t, client)
	require.NotEqual(t, a.UserID, b.UserID)

	require.NoError(t, a.AddBookISBN(context.Background(), "Git Pocket Guide"))
	require.Len(t, fake.Store.Collection(a.UserID), 1)
	require.Empty(t, fake.Store.Collection(b.UserID))
	require.Equal(t, 2, fake.Store.Users())
}

func TestCreateUserTwice(t *testing.T) {
	client, _, _ := setup(t)
	ops := client.NewOperations()
	_, err := ops.CreateUser(context.Background(), "duplicate")
	require.NoError(t, err)
	_, err = ops.CreateUser(context.Background(), "duplicate")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 406, statusErr.Got)
}

func TestRandomUserName(t *testing.T) {
	a, err := RandomUserName()
	require.NoError(t, err)
	b, err := RandomUserName()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "e2e"), a)
	require.Greater(t, len(a), len("e2e"))
}
