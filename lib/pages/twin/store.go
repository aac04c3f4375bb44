// Package twin is an in-memory storefront serving the markup the page
// objects expect, used by tests and by `e2e twin` for local runs.
package twin

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/mazen160/go-random"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownAccount = errors.New("unknown account")
)

type Product struct {
	ID          string
	Category    string
	SubCategory string
	Name        string
	// prices are multiples of a quarter so sums stay exact
	Price float64
}

var DefaultCatalog = []Product{
	{ID: "116", Category: "Apparel & accessories", SubCategory: "Shoes", Name: "Ladies Wedge Sandals", Price: 10.00},
	{ID: "117", Category: "Apparel & accessories", SubCategory: "Shoes", Name: "Canvas Lace-Up Sneakers", Price: 24.75},
	{ID: "121", Category: "Apparel & accessories", SubCategory: "T-shirts", Name: "Casual 3/4 Sleeve Baseball T-Shirt", Price: 15.50},
	{ID: "122", Category: "Apparel & accessories", SubCategory: "T-shirts", Name: "Designer Men Casual Formal Double Cuffs Grandad Band Collar Shirt", Price: 32.25},
	{ID: "50", Category: "Makeup", SubCategory: "Eyes", Name: "Waterproof Mascara", Price: 12.25},
	{ID: "51", Category: "Makeup", SubCategory: "Face", Name: "Tinted Moisturiser", Price: 21.75},
}

// DefaultAccount is the customer a fresh twin knows about.
var DefaultAccount = Account{Username: "e2e-customer", Password: "Storefront#2024"}

type Account struct {
	Username string
	Password string
}

type cartItem struct {
	productID string
	qty       int
}

type customer struct {
	Account
	cart     []cartItem
	wishlist []string
	orders   int
}

type Line struct {
	Product
	Qty   int
	Total float64
}

type SubCategory struct {
	Name string
	Slug string
}

type Category struct {
	Name          string
	SubCategories []SubCategory
}

// Store holds all twin state, it is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	catalog   []Product
	customers map[string]*customer
	sessions  map[string]string
}

func NewStore(catalog []Product, accounts ...Account) *Store {
	s := &Store{catalog: catalog}
	s.reset(accounts)
	return s
}

func (s *Store) reset(accounts []Account) {
	s.customers = map[string]*customer{}
	s.sessions = map[string]string{}
	for _, a := range accounts {
		s.customers[a.Username] = &customer{Account: a}
	}
}

// Reset forgets every session, cart and wishlist.
func (s *Store) Reset(accounts ...Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(accounts)
}

func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (s *Store) Categories() []Category {
	var categories []Category
	for _, p := range s.catalog {
		i := slices.IndexFunc(categories, func(c Category) bool { return c.Name == p.Category })
		if i < 0 {
			categories = append(categories, Category{Name: p.Category})
			i = len(categories) - 1
		}
		sub := SubCategory{Name: p.SubCategory, Slug: Slug(p.SubCategory)}
		if !slices.Contains(categories[i].SubCategories, sub) {
			categories[i].SubCategories = append(categories[i].SubCategories, sub)
		}
	}
	return categories
}

// SubCategory returns the name and products of the sub category with slug.
func (s *Store) SubCategory(slug string) (string, []Product) {
	var name string
	var products []Product
	for _, p := range s.catalog {
		if Slug(p.SubCategory) == slug {
			name = p.SubCategory
			products = append(products, p)
		}
	}
	return name, products
}

func (s *Store) Product(id string) (Product, bool) {
	for _, p := range s.catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func newToken() string {
	token, err := random.String(32)
	if err != nil {
		panic(err)
	}
	return token
}

// Login returns a session token when the credentials match.
func (s *Store) Login(username, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[username]
	if !ok || c.Password != password {
		return "", false
	}
	token := newToken()
	s.sessions[token] = username
	return token, true
}

func (s *Store) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Customer returns the username of a session.
func (s *Store) Customer(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.sessions[token]
	return username, ok
}

func (s *Store) customer(username string) (*customer, error) {
	c, ok := s.customers[username]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return c, nil
}

func (s *Store) AddToCart(username, productID string) error {
	if _, ok := s.Product(productID); !ok {
		return ErrUnknownProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return err
	}
	for i := range c.cart {
		if c.cart[i].productID == productID {
			c.cart[i].qty++
			return nil
		}
	}
	c.cart = append(c.cart, cartItem{productID: productID, qty: 1})
	return nil
}

func (s *Store) RemoveFromCart(username, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return err
	}
	c.cart = slices.DeleteFunc(c.cart, func(item cartItem) bool {
		return item.productID == productID
	})
	return nil
}

// Cart returns the cart lines in the order products were added and the
// sum of their totals.
func (s *Store) Cart(username string) ([]Line, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return nil, 0
	}
	lines := make([]Line, 0, len(c.cart))
	subtotal := 0.0
	for _, item := range c.cart {
		p, _ := s.Product(item.productID)
		line := Line{Product: p, Qty: item.qty, Total: p.Price * float64(item.qty)}
		subtotal += line.Total
		lines = append(lines, line)
	}
	return lines, subtotal
}

func (s *Store) AddToWishlist(username, productID string) error {
	if _, ok := s.Product(productID); !ok {
		return ErrUnknownProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return err
	}
	if !slices.Contains(c.wishlist, productID) {
		c.wishlist = append(c.wishlist, productID)
	}
	return nil
}

func (s *Store) RemoveFromWishlist(username, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return err
	}
	c.wishlist = slices.DeleteFunc(c.wishlist, func(id string) bool { return id == productID })
	return nil
}

func (s *Store) Wishlist(username string) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return nil
	}
	products := make([]Product, 0, len(c.wishlist))
	for _, id := range c.wishlist {
		p, _ := s.Product(id)
		products = append(products, p)
	}
	return products
}

func (s *Store) InWishlist(username, productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	return err == nil && slices.Contains(c.wishlist, productID)
}

// PlaceOrder empties the cart and returns the number of orders placed.
func (s *Store) PlaceOrder(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return 0, err
	}
	if len(c.cart) == 0 {
		return c.orders, errors.New("cart is empty")
	}
	c.cart = nil
	c.orders++
	return c.orders, nil
}

func (s *Store) orders(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customer(username)
	if err != nil {
		return 0, err
	}
	return c.orders, nil
}
