package addressbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressBook_Validate(t *testing.T) {
	assert.NoError(t, NewAddressBook("friends").Validate())
	assert.ErrorIs(t, NewAddressBook("").Validate(), ErrNameRequired)
	assert.EqualError(t, NewAddressBook("   ").Validate(), "Name is mandatory")
}

func TestAddressBook_AddContactReplacesSameName(t *testing.T) {
	b := NewAddressBook("friends")
	b.AddContact(Contact{Name: "Veronica", Phone: "0123 333333"})
	b.AddContact(Contact{Name: "Veronica", Phone: "0123 000000"})

	contacts := b.Contacts()
	require.Equal(t, 1, contacts.Len())
	got, _ := contacts.Get("Veronica")
	assert.Equal(t, "0123 000000", got.Phone)
}

func TestAddressBook_AddContactSkipsValidation(t *testing.T) {
	b := NewAddressBook("raw")
	b.AddContact(Contact{Name: "NoPhone"})
	assert.Equal(t, 1, b.Len())
}

func TestAddressBook_RemoveContact(t *testing.T) {
	b := NewAddressBook("family")
	b.AddContact(Contact{Name: "Dad", Phone: "0123 123123"})
	b.AddContact(Contact{Name: "Mom", Phone: "0123 234234"})

	assert.True(t, b.RemoveContact(*LookupContact("Dad")))
	assert.False(t, b.RemoveContact(*LookupContact("Dad")), "second removal is a no-op")
	assert.False(t, b.RemoveContact(*LookupContact("Uncle")))

	contacts := b.Contacts()
	assert.Equal(t, 1, contacts.Len())
	assert.True(t, contacts.Contains(*LookupContact("Mom")))
}

func TestAddressBook_ContactsIsSnapshot(t *testing.T) {
	b := NewAddressBook("work")
	b.AddContact(Contact{Name: "Fred", Phone: "0123 456456"})

	snap := b.Contacts()
	snap.Add(Contact{Name: "Barney", Phone: "1"})
	snap.Remove(*LookupContact("Fred"))

	assert.Equal(t, 1, b.Len())
	assert.True(t, b.Contacts().Contains(*LookupContact("Fred")))
}
