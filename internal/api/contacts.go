package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

// addContactRequest is the body of the contact creation endpoints.
type addContactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// handleListBookContacts returns the contacts of one book.
func (s *Server) handleListBookContacts(w http.ResponseWriter, r *http.Request) {
	book, ok := pathParam(w, r, "book")
	if !ok {
		return
	}

	set, err := s.manager.Contacts(book)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	contacts := toContactResponses(set)
	writeJSON(w, http.StatusOK, map[string]any{"book": book, "contacts": contacts, "count": len(contacts)})
}

// handleListAllContacts returns the unique contacts across every book.
func (s *Server) handleListAllContacts(w http.ResponseWriter, _ *http.Request) {
	contacts := toContactResponses(s.manager.AllContacts())
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts, "count": len(contacts)})
}

// handleAddBookContact adds a contact to the named book, creating the book
// if needed.
func (s *Server) handleAddBookContact(w http.ResponseWriter, r *http.Request) {
	book, ok := pathParam(w, r, "book")
	if !ok {
		return
	}
	s.addContact(w, r, book)
}

// handleAddDefaultContact adds a contact to the default book.
func (s *Server) handleAddDefaultContact(w http.ResponseWriter, r *http.Request) {
	s.addContact(w, r, addressbook.DefaultBook)
}

func (s *Server) addContact(w http.ResponseWriter, r *http.Request, book string) {
	var req addContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	stored, err := s.manager.AddContactTo(addressbook.NewContact(req.Name, req.Phone), book)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactResponse(*stored))
}

// handleRemoveBookContact removes a contact by name from the named book.
func (s *Server) handleRemoveBookContact(w http.ResponseWriter, r *http.Request) {
	book, ok := pathParam(w, r, "book")
	if !ok {
		return
	}
	s.removeContact(w, r, book)
}

// handleRemoveDefaultContact removes a contact by name from the default book.
func (s *Server) handleRemoveDefaultContact(w http.ResponseWriter, r *http.Request) {
	s.removeContact(w, r, addressbook.DefaultBook)
}

// removeContact answers 204 whether or not the contact existed; only a
// missing book is an error.
func (s *Server) removeContact(w http.ResponseWriter, r *http.Request, book string) {
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}

	if err := s.manager.RemoveContactByNameFrom(name, book); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
