package addressbook

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a registry change.
type EventType string

// Event types emitted by the Manager.
const (
	EventBookCreated    EventType = "book.created"
	EventBookRemoved    EventType = "book.removed"
	EventContactAdded   EventType = "contact.added"
	EventContactRemoved EventType = "contact.removed"
)

// Event describes a single successful mutation of the registry.
//
// Seq is assigned while the registry lock is held, so it follows the order
// in which mutations were applied. Delivery happens after the lock is
// released; under concurrent callers events may reach a Notifier out of
// order and consumers that care should order by Seq.
type Event struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Type      EventType `json:"type"`
	Book      string    `json:"book"`
	Contact   *Contact  `json:"contact,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier receives registry events.
//
// Notify is called after the mutation has been applied and the registry
// lock released, so delivery order across concurrent callers is best
// effort (see Event.Seq). Implementations must not block for long.
type Notifier interface {
	Notify(e Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(e Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// Notifiers fans an event out to several notifiers in order.
type Notifiers []Notifier

// Notify delivers e to every non-nil notifier.
func (ns Notifiers) Notify(e Event) {
	for _, n := range ns {
		if n != nil {
			n.Notify(e)
		}
	}
}

// noopNotifier discards events.
type noopNotifier struct{}

func (noopNotifier) Notify(Event) {}

func newEvent(t EventType, book string, c *Contact) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Book:      book,
		Contact:   c,
		Timestamp: time.Now().UTC(),
	}
}
