package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

// createBookRequest is the body of POST /books.
type createBookRequest struct {
	Name string `json:"name"`
}

// bookResponse describes one address book.
type bookResponse struct {
	Name     string `json:"name"`
	Contacts int    `json:"contacts"`
}

// handleListBooks returns the names of all registered books.
func (s *Server) handleListBooks(w http.ResponseWriter, _ *http.Request) {
	books := s.manager.AddressBooks()
	writeJSON(w, http.StatusOK, map[string]any{"books": books, "count": len(books)})
}

// handleCreateBook creates (or replaces) an empty book.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	book, err := s.manager.CreateAddressBook(req.Name)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookResponse{Name: book.Name, Contacts: book.Len()})
}

// handleDeleteBook removes a book and its contacts. Unknown names succeed.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	book, ok := pathParam(w, r, "book")
	if !ok {
		return
	}
	s.manager.RemoveAddressBook(book)
	w.WriteHeader(http.StatusNoContent)
}

// pathParam returns the decoded URL parameter key.
//
// chi matches against r.URL.RawPath when the request used a non-canonical
// encoding (for example %2F inside a name) and against the already decoded
// r.URL.Path otherwise. Only the first case still needs unescaping; doing it
// in the second would decode names like "100%" twice.
func pathParam(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, true
	}
	unescaped, err := url.PathUnescape(v)
	if err != nil {
		writeBadRequest(w, "invalid "+key+" in path")
		return "", false
	}
	return unescaped, true
}

// contactResponse is the wire form of a stored contact.
type contactResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Book  string `json:"book,omitempty"`
}

func toContactResponse(c addressbook.Contact) contactResponse {
	return contactResponse{Name: c.Name, Phone: c.Phone, Book: c.Book()}
}

func toContactResponses(set addressbook.ContactSet) []contactResponse {
	contacts := set.Contacts()
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out
}
