package twin

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	SessionCookie = "storefront_session"
	// the title of the page a successful login lands on
	AccountTitle = "My Account"
	FlatShipping = 2.00
)

type Twin struct {
	Store     *Store
	templates map[string]*template.Template
}

func New() *Twin {
	return &Twin{
		Store:     NewStore(DefaultCatalog, DefaultAccount),
		templates: parseTemplates(),
	}
}

func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", t.Home)
	r.Route("/account", func(r chi.Router) {
		r.Get("/login", t.LoginForm)
		r.Post("/login", t.Login)
		r.Get("/logout", t.Logout)
		r.With(t.requireCustomer).Get("/", t.Account)
	})
	r.Get("/category/{slug}", t.Category)

	r.Group(func(r chi.Router) {
		r.Use(t.requireCustomer)
		r.Route("/product/{id}", func(r chi.Router) {
			r.Get("/", t.Product)
			r.Post("/cart", t.AddToCart)
			r.Get("/wishlist/add", t.AddToWishlist)
			r.Get("/wishlist/remove", t.RemoveFromWishlist)
		})
		r.Get("/cart", t.Cart)
		r.Get("/cart/remove", t.RemoveFromCart)
		r.Get("/checkout", t.Checkout)
		r.Post("/checkout/confirm", t.ConfirmOrder)
		r.Get("/wishlist", t.Wishlist)
		r.Get("/wishlist/remove", t.RemoveFromWishlistPage)
	})
	return r
}

func (t *Twin) customer(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	username, _ := t.Store.Customer(cookie.Value)
	return username
}

func (t *Twin) requireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.customer(r) == "" {
			http.Redirect(w, r, "/account/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type view struct {
	Title      string
	Username   string
	CartCount  int
	CartTotal  float64
	Categories []Category
	Content    any
}

func (t *Twin) render(w http.ResponseWriter, r *http.Request, status int, page, title string, content any) {
	v := view{
		Title:      title,
		Username:   t.customer(r),
		Categories: t.Store.Categories(),
		Content:    content,
	}
	if v.Username != "" {
		lines, subtotal := t.Store.Cart(v.Username)
		for _, l := range lines {
			v.CartCount += l.Qty
		}
		v.CartTotal = subtotal
	}

	var buf bytes.Buffer
	err := t.templates[page].ExecuteTemplate(&buf, "layout", v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (t *Twin) Home(w http.ResponseWriter, r *http.Request) {
	t.render(w, r, http.StatusOK, "home", "Storefront", nil)
}

func (t *Twin) LoginForm(w http.ResponseWriter, r *http.Request) {
	t.render(w, r, http.StatusOK, "login", "Account Login", struct{ Failed bool }{})
}

func (t *Twin) Login(w http.ResponseWriter, r *http.Request) {
	token, ok := t.Store.Login(r.PostFormValue("loginname"), r.PostFormValue("password"))
	if !ok {
		t.render(w, r, http.StatusOK, "login", "Account Login", struct{ Failed bool }{true})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (t *Twin) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		t.Store.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Path: "/", MaxAge: -1})
	t.render(w, r, http.StatusOK, "logout", "Account Logout", nil)
}

func (t *Twin) Account(w http.ResponseWriter, r *http.Request) {
	orders, _ := t.Store.orders(t.customer(r))
	t.render(w, r, http.StatusOK, "account", AccountTitle, struct{ Orders int }{orders})
}

func (t *Twin) Category(w http.ResponseWriter, r *http.Request) {
	name, products := t.Store.SubCategory(chi.URLParam(r, "slug"))
	if name == "" {
		http.NotFound(w, r)
		return
	}
	t.render(w, r, http.StatusOK, "category", name, struct {
		Name     string
		Products []Product
	}{name, products})
}

func (t *Twin) Product(w http.ResponseWriter, r *http.Request) {
	p, ok := t.Store.Product(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	t.render(w, r, http.StatusOK, "product", p.Name, struct {
		Product    Product
		InWishlist bool
	}{p, t.Store.InWishlist(t.customer(r), p.ID)})
}

func (t *Twin) AddToCart(w http.ResponseWriter, r *http.Request) {
	err := t.Store.AddToCart(t.customer(r), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (t *Twin) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := t.Store.AddToWishlist(t.customer(r), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/product/"+id, http.StatusSeeOther)
}

func (t *Twin) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t.Store.RemoveFromWishlist(t.customer(r), id)
	http.Redirect(w, r, "/product/"+id, http.StatusSeeOther)
}

type totalsView struct {
	Lines    []Line
	Subtotal float64
	Shipping float64
	Total    float64
}

func (t *Twin) totals(username string) totalsView {
	lines, subtotal := t.Store.Cart(username)
	v := totalsView{Lines: lines, Subtotal: subtotal}
	if len(lines) > 0 {
		v.Shipping = FlatShipping
	}
	v.Total = v.Subtotal + v.Shipping
	return v
}

func (t *Twin) Cart(w http.ResponseWriter, r *http.Request) {
	t.render(w, r, http.StatusOK, "cart", "Shopping Cart", t.totals(t.customer(r)))
}

func (t *Twin) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	t.Store.RemoveFromCart(t.customer(r), r.URL.Query().Get("remove"))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (t *Twin) Checkout(w http.ResponseWriter, r *http.Request) {
	v := t.totals(t.customer(r))
	if len(v.Lines) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	t.render(w, r, http.StatusOK, "checkout", "Checkout Confirmation", v)
}

func (t *Twin) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orders, err := t.Store.PlaceOrder(t.customer(r))
	if err != nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	t.render(w, r, http.StatusOK, "success", "Your Order Has Been Processed!", struct{ Orders int }{orders})
}

func (t *Twin) Wishlist(w http.ResponseWriter, r *http.Request) {
	t.render(w, r, http.StatusOK, "wishlist", "My wish list", struct{ Products []Product }{t.Store.Wishlist(t.customer(r))})
}

func (t *Twin) RemoveFromWishlistPage(w http.ResponseWriter, r *http.Request) {
	t.Store.RemoveFromWishlist(t.customer(r), r.URL.Query().Get("product"))
	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}
