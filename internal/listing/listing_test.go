package listing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

func seeded(t *testing.T) *addressbook.Manager {
	t.Helper()
	m := addressbook.NewManager()
	for _, add := range []struct{ name, phone, book string }{
		{"Bob", "0411", ""},
		{"Alice", "0422", ""},
		{"Alice", "0499", "work"},
		{"Carol", "0433", "work"},
	} {
		_, err := m.AddContactTo(addressbook.NewContact(add.name, add.phone), add.book)
		require.NoError(t, err)
	}
	return m
}

func TestPrintContacts(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintContacts(&buf, seeded(t), "work"))

	assert.Equal(t, "Contacts list in work:\n"+
		"Name: Alice, Phone: 0499\n"+
		"Name: Carol, Phone: 0433\n", buf.String())
}

func TestPrintContacts_DefaultBook(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintContacts(&buf, seeded(t), ""))

	assert.Equal(t, "Contacts list in default:\n"+
		"Name: Alice, Phone: 0422\n"+
		"Name: Bob, Phone: 0411\n", buf.String())
}

func TestPrintContacts_MissingBook(t *testing.T) {
	var buf bytes.Buffer

	err := PrintContacts(&buf, seeded(t), "nope")

	require.Error(t, err)
	assert.True(t, errors.Is(err, addressbook.ErrBookNotFound))
	assert.Equal(t, "Address book not found: nope", err.Error())
	assert.Empty(t, buf.String())
}

func TestPrintAll(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintAll(&buf, seeded(t)))

	// "default" sorts before "work", so Alice's default entry wins.
	assert.Equal(t, "All contacts list:\n"+
		"Name: Alice, Phone: 0422\n"+
		"Name: Bob, Phone: 0411\n"+
		"Name: Carol, Phone: 0433\n", buf.String())
}

func TestPrintRegistry(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintRegistry(&buf, seeded(t)))

	assert.Equal(t, "Contacts list in default:\n"+
		"Name: Alice, Phone: 0422\n"+
		"Name: Bob, Phone: 0411\n"+
		"Contacts list in work:\n"+
		"Name: Alice, Phone: 0499\n"+
		"Name: Carol, Phone: 0433\n"+
		"All contacts list:\n"+
		"Name: Alice, Phone: 0422\n"+
		"Name: Bob, Phone: 0411\n"+
		"Name: Carol, Phone: 0433\n", buf.String())
}

func TestPrintAll_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, PrintAll(&buf, addressbook.NewManager()))

	assert.Equal(t, "All contacts list:\n", buf.String())
}
