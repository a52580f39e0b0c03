package addressbook

import (
	"fmt"
	"strings"
)

// Contact is a name/phone record.
//
// Identity is the Name field alone: Key and Equal ignore Phone, so two
// contacts with the same name and different phones are the same contact.
// The owning book is recorded by the Manager when the contact is added.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`

	book string
}

// NewContact creates a contact. It is not validated until submitted.
func NewContact(name, phone string) *Contact {
	return &Contact{Name: name, Phone: phone}
}

// LookupContact creates a name-only contact used to find or remove an
// existing contact with the same identity.
func LookupContact(name string) *Contact {
	return &Contact{Name: name}
}

// Key returns the identity key of the contact.
func (c Contact) Key() string { return c.Name }

// Equal reports whether c and other share the same identity.
func (c Contact) Equal(other Contact) bool { return c.Key() == other.Key() }

// Book returns the name of the book that owns the contact, or "" if the
// contact has not been added through a Manager.
func (c Contact) Book() string { return c.book }

// Validate checks that name and phone are both non-blank.
// The name is checked first.
func (c Contact) Validate() error {
	if isBlank(c.Name) {
		return ErrNameRequired
	}
	if isBlank(c.Phone) {
		return ErrPhoneRequired
	}
	return nil
}

func (c Contact) String() string {
	return fmt.Sprintf("Name: %s, Phone: %s", c.Name, c.Phone)
}

// isBlank reports whether s is empty or whitespace only.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
