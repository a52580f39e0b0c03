package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{topic, payload, qos, retained})
	return nil
}

type nopLogger struct{}

func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

func TestEventPublisher_Notify(t *testing.T) {
	pub := &fakePublisher{}
	ep := newEventPublisher(pub, 1, nopLogger{})

	e := addressbook.Event{
		ID:        "evt-1",
		Type:      addressbook.EventContactAdded,
		Book:      "friends",
		Contact:   addressbook.NewContact("Alice", "555-0001"),
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	ep.Notify(e)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, "addressbook/events/contact.added", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.False(t, msg.retained)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, "evt-1", decoded["id"])
	assert.Equal(t, "friends", decoded["book"])
	contact, ok := decoded["contact"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", contact["name"])
	assert.Equal(t, "555-0001", contact["phone"])
}

func TestEventPublisher_BookEventOmitsContact(t *testing.T) {
	pub := &fakePublisher{}
	ep := newEventPublisher(pub, 0, nopLogger{})

	ep.Notify(addressbook.Event{ID: "evt-2", Type: addressbook.EventBookRemoved, Book: "work"})

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "addressbook/events/book.removed", pub.messages[0].topic)
	assert.NotContains(t, string(pub.messages[0].payload), `"contact"`)
}

func TestEventPublisher_PublishErrorIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	ep := newEventPublisher(pub, 1, nopLogger{})

	assert.NotPanics(t, func() {
		ep.Notify(addressbook.Event{Type: addressbook.EventBookCreated, Book: "x"})
	})
	assert.Empty(t, pub.messages)
}

func TestEventPublisher_WiredToManager(t *testing.T) {
	pub := &fakePublisher{}
	m := addressbook.NewManager()
	m.SetNotifier(newEventPublisher(pub, 1, nopLogger{}))

	_, err := m.AddContactTo(addressbook.NewContact("Bob", "555-0002"), "work")
	require.NoError(t, err)

	require.Len(t, pub.messages, 2)
	assert.Equal(t, "addressbook/events/book.created", pub.messages[0].topic)
	assert.Equal(t, "addressbook/events/contact.added", pub.messages[1].topic)
}
