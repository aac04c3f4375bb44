package twin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type Twin struct {
	Store *Store
}

func New() *Twin {
	return &Twin{Store: NewStore(DefaultCatalog)}
}

// Handler serves the same paths as the real api.
func (t *Twin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/Account/v1", func(r chi.Router) {
		r.Post("/User", t.CreateUser)
		r.Post("/GenerateToken", t.GenerateToken)
	})
	r.Route("/BookStore/v1", func(r chi.Router) {
		r.Get("/Books", t.ListBooks)
		r.Post("/Books", t.AddBooks)
		r.Put("/Books/{isbn}", t.ReplaceBook)
		r.Delete("/Book", t.DeleteBook)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errors look like the real api: {"code": "1207", "message": "..."}
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}

func (t *Twin) authorize(r *http.Request, userID string) (*User, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return nil, false
	}
	owner, ok := t.Store.tokens[token]
	if !ok || owner != userID {
		return nil, false
	}
	u, ok := t.Store.users[userID]
	return u, ok
}

func (t *Twin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "1200", "UserName and Password required.")
		return
	}

	s := t.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[req.UserName]; exists {
		writeError(w, http.StatusNotAcceptable, "1204", "User exists!")
		return
	}
	u := &User{ID: newID(16), Name: req.UserName, Password: req.Password, Books: []string{}}
	s.users[u.ID] = u
	s.byName[u.Name] = u.ID

	writeJSON(w, http.StatusCreated, map[string]any{
		"userID":   u.ID,
		"username": u.Name,
		"books":    []Book{},
	})
}

func (t *Twin) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == "" {
		writeError(w, http.StatusBadRequest, "1200", "UserName and Password required.")
		return
	}

	s := t.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byName[req.UserName]
	if !ok || s.users[id].Password != req.Password {
		writeJSON(w, http.StatusOK, map[string]any{
			"token":   nil,
			"status":  "Failed",
			"result":  "User authorization failed.",
			"expires": nil,
		})
		return
	}
	token := newID(24)
	s.tokens[token] = id
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"status": "Success",
		"result": "User authorized successfully.",
	})
}

func (t *Twin) ListBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"books": t.Store.Catalog()})
}

func (t *Twin) AddBooks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID            string `json:"userId"`
		CollectionOfIsbns []struct {
			ISBN string `json:"isbn"`
		} `json:"collectionOfIsbns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "1200", "invalid body")
		return
	}

	s := t.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := t.authorize(r, req.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "1200", "User not authorized!")
		return
	}

	added := []map[string]string{}
	for _, ref := range req.CollectionOfIsbns {
		if _, ok := s.book(ref.ISBN); !ok {
			writeError(w, http.StatusBadRequest, "1205", "ISBN supplied is not available in Books Collection!")
			return
		}
		for _, owned := range u.Books {
			if owned == ref.ISBN {
				writeError(w, http.StatusBadRequest, "1210", "ISBN already present in the User's Collection!")
				return
			}
		}
	}
	for _, ref := range req.CollectionOfIsbns {
		u.Books = append(u.Books, ref.ISBN)
		added = append(added, map[string]string{"isbn": ref.ISBN})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"books": added})
}

func (t *Twin) ReplaceBook(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	var req struct {
		UserID string `json:"userId"`
		ISBN   string `json:"isbn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "1200", "invalid body")
		return
	}

	s := t.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := t.authorize(r, req.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "1200", "User not authorized!")
		return
	}
	if _, ok := s.book(req.ISBN); !ok {
		writeError(w, http.StatusBadRequest, "1205", "ISBN supplied is not available in Books Collection!")
		return
	}

	for i, owned := range u.Books {
		if owned == isbn {
			u.Books[i] = req.ISBN
			books := []Book{}
			for _, b := range u.Books {
				book, _ := s.book(b)
				books = append(books, book)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"userId":   u.ID,
				"username": u.Name,
				"books":    books,
			})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "1206", "ISBN supplied is not available in User's Collection!")
}

func (t *Twin) DeleteBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		ISBN   string `json:"isbn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "1200", "invalid body")
		return
	}

	s := t.Store
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := t.authorize(r, req.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "1200", "User not authorized!")
		return
	}
	for i, owned := range u.Books {
		if owned == req.ISBN {
			u.Books = append(u.Books[:i], u.Books[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusBadRequest, "1206", "ISBN supplied is not available in User's Collection!")
}
