package addressbook

// AddressBook is a named set of contacts, unique by contact identity.
//
// AddressBook performs no validation when contacts are added; that is the
// Manager's job. It is not safe for concurrent use on its own.
type AddressBook struct {
	Name     string
	contacts ContactSet
}

// NewAddressBook creates an empty address book.
func NewAddressBook(name string) *AddressBook {
	return &AddressBook{
		Name:     name,
		contacts: NewContactSet(),
	}
}

// Validate checks that the book name is non-blank.
func (b *AddressBook) Validate() error {
	if isBlank(b.Name) {
		return ErrNameRequired
	}
	return nil
}

// AddContact inserts c. A member with the same name is replaced, so the
// later phone wins.
func (b *AddressBook) AddContact(c Contact) {
	b.contacts.Add(c)
}

// RemoveContact removes the member equal to c. Removing a non-member is a
// no-op; the result reports whether anything was removed.
func (b *AddressBook) RemoveContact(c Contact) bool {
	return b.contacts.Remove(c)
}

// Contacts returns a snapshot of the current membership.
func (b *AddressBook) Contacts() ContactSet {
	return b.contacts.clone()
}

// Len returns the number of contacts in the book.
func (b *AddressBook) Len() int { return b.contacts.Len() }
