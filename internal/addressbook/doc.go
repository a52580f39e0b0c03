// Package addressbook provides the in-memory address book registry.
//
// It models three entities:
//
//   - Contact: a name/phone record whose identity is its name only
//   - AddressBook: a named set of contacts, unique by contact identity
//   - Manager: the registry that owns every address book and mediates
//     all mutations through validation
//
// # Identity
//
// Two contacts are equal when their names are equal (exact, case-sensitive
// match). The phone is carried data: adding a contact whose name already
// exists in a book replaces the earlier entry, phone included. A lookup key
// can be built from a name alone with LookupContact.
//
// # Default Book
//
// NewManager registers the book named DefaultBook. Operations that omit a
// book name (or pass "") target it. Removing it is allowed; it comes back
// only through an operation that would create any other missing book.
//
// # Resolution
//
// Writes resolve the target book with resolve-or-create: AddContactTo
// creates a missing book on demand. Reads and deletes resolve with
// resolve-or-fail: Contacts and RemoveContactByNameFrom return a
// *LookupError when the book does not exist.
//
// # Usage
//
//	m := addressbook.NewManager()
//	m.SetLogger(log)
//
//	if _, err := m.AddContact(addressbook.NewContact("Police", "000")); err != nil {
//	    return err
//	}
//	if _, err := m.AddContactTo(addressbook.NewContact("Mom", "0123 234234"), "family"); err != nil {
//	    return err
//	}
//
//	all := m.AllContacts() // unique by name across every book
//
// # Thread Safety
//
// Manager is safe for concurrent use. Every book it owns is guarded by the
// manager's read-write mutex, which makes resolve-or-create atomic with the
// add it precedes. An AddressBook used on its own is not synchronised.
package addressbook
