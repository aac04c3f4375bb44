// Package twin is an in-memory stand in for the bookstore api, used by tests
// and by `e2e twin` for local runs.
package twin

import (
	"sync"

	"github.com/mazen160/go-random"
)

type Book struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	SubTitle  string `json:"subTitle"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Pages     int    `json:"pages"`
}

// DefaultCatalog mirrors the public demo bookstore.
var DefaultCatalog = []Book{
	{ISBN: "9781449325862", Title: "Git Pocket Guide", SubTitle: "A Working Introduction", Author: "Richard E. Silverman", Publisher: "O'Reilly Media", Pages: 234},
	{ISBN: "9781449331818", Title: "Learning JavaScript Design Patterns", SubTitle: "A JavaScript and jQuery Developer's Guide", Author: "Addy Osmani", Publisher: "O'Reilly Media", Pages: 254},
	{ISBN: "9781449337711", Title: "Designing Evolvable Web APIs with ASP.NET", SubTitle: "Harnessing the Power of the Web", Author: "Glenn Block et al.", Publisher: "O'Reilly Media", Pages: 238},
	{ISBN: "9781449365035", Title: "Speaking JavaScript", SubTitle: "An In-Depth Guide for Programmers", Author: "Axel Rauschmayer", Publisher: "O'Reilly Media", Pages: 460},
	{ISBN: "9781491904244", Title: "You Don't Know JS", SubTitle: "ES6 & Beyond", Author: "Kyle Simpson", Publisher: "O'Reilly Media", Pages: 278},
	{ISBN: "9781491950296", Title: "Programming JavaScript Applications", SubTitle: "Robust Web Architecture with Node, HTML5, and Modern JS Libraries", Author: "Eric Elliott", Publisher: "O'Reilly Media", Pages: 254},
	{ISBN: "9781593275846", Title: "Eloquent JavaScript, Second Edition", SubTitle: "A Modern Introduction to Programming", Author: "Marijn Haverbeke", Publisher: "No Starch Press", Pages: 472},
	{ISBN: "9781593277574", Title: "Understanding ECMAScript 6", SubTitle: "The Definitive Guide for JavaScript Developers", Author: "Nicholas C. Zakas", Publisher: "No Starch Press", Pages: 352},
}

type User struct {
	ID       string
	Name     string
	Password string
	// isbns in insertion order
	Books []string
}

// Store holds all twin state, it is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	catalog []Book
	users   map[string]*User
	byName  map[string]string
	tokens  map[string]string
}

func NewStore(catalog []Book) *Store {
	s := &Store{}
	s.reset(catalog)
	return s
}

func (s *Store) reset(catalog []Book) {
	s.catalog = append([]Book{}, catalog...)
	s.users = map[string]*User{}
	s.byName = map[string]string{}
	s.tokens = map[string]string{}
}

// Reset clears users and tokens, keeping the catalog.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(s.catalog)
}

func newID(n int) string {
	id, err := random.String(n)
	if err != nil {
		panic(err)
	}
	return id
}

func (s *Store) Catalog() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Book{}, s.catalog...)
}

func (s *Store) book(isbn string) (Book, bool) {
	for _, b := range s.catalog {
		if b.ISBN == isbn {
			return b, true
		}
	}
	return Book{}, false
}

// Collection returns the isbns a user owns, nil for an unknown user.
func (s *Store) Collection(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]string{}, u.Books...)
}

func (s *Store) Users() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
