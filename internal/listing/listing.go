// Package listing renders address book contents as plain text.
//
// Output is one header line followed by one "Name: <name>, Phone: <phone>"
// line per contact, ordered by name.
package listing

import (
	"errors"
	"fmt"
	"io"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

// Source is the read side of the registry. *addressbook.Manager satisfies it.
type Source interface {
	AddressBooks() []string
	Contacts(book string) (addressbook.ContactSet, error)
	AllContacts() addressbook.ContactSet
}

// PrintContacts writes the contacts of one book. An empty book name means
// the default book. Nothing is written if the book does not exist.
func PrintContacts(w io.Writer, src Source, book string) error {
	set, err := src.Contacts(book)
	if err != nil {
		return err
	}
	if book == "" {
		book = addressbook.DefaultBook
	}
	if _, err := fmt.Fprintf(w, "Contacts list in %s:\n", book); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return printSet(w, set)
}

// PrintAll writes the unique contacts across every book.
func PrintAll(w io.Writer, src Source) error {
	if _, err := fmt.Fprintln(w, "All contacts list:"); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return printSet(w, src.AllContacts())
}

// PrintRegistry writes every book in name order followed by the unique
// contact list. A book removed while printing is skipped.
func PrintRegistry(w io.Writer, src Source) error {
	for _, book := range src.AddressBooks() {
		err := PrintContacts(w, src, book)
		if errors.Is(err, addressbook.ErrBookNotFound) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return PrintAll(w, src)
}

func printSet(w io.Writer, set addressbook.ContactSet) error {
	for _, c := range set.Contacts() {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}
	return nil
}
