package addressbook

import (
	"sort"
	"sync"
)

// DefaultBook is the name of the book used when no book name is given.
const DefaultBook = "default"

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns every address book and is the only entry point for
// creating, removing and querying books and contacts.
//
// Validation always happens before any state change: a failed call leaves
// the registry untouched and emits no event.
//
// All public methods are thread-safe.
type Manager struct {
	books    map[string]*AddressBook
	seq      uint64 // last event sequence number, guarded by mu
	mu       sync.RWMutex
	logger   Logger
	notifier Notifier
}

// NewManager creates a manager holding an empty default book.
func NewManager() *Manager {
	return &Manager{
		books: map[string]*AddressBook{
			DefaultBook: NewAddressBook(DefaultBook),
		},
		logger:   noopLogger{},
		notifier: noopNotifier{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// SetNotifier sets the receiver of change events. Passing nil disables
// notifications.
func (m *Manager) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	m.notifier = n
}

// AddressBooks returns the names of all registered books, sorted.
func (m *Manager) AddressBooks() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.books))
	for name := range m.books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateAddressBook registers an empty book under name and returns it.
// An existing book with the same name is replaced and its contacts are
// discarded. Returns ErrNameRequired if name is blank.
func (m *Manager) CreateAddressBook(name string) (*AddressBook, error) {
	m.mu.Lock()
	book, err := m.createLocked(name)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	created := m.eventLocked(EventBookCreated, name, nil)
	m.mu.Unlock()

	m.notifier.Notify(created)
	return book, nil
}

// createLocked validates and registers a new book. Caller must hold mu.
func (m *Manager) createLocked(name string) (*AddressBook, error) {
	book := NewAddressBook(name)
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if old, ok := m.books[name]; ok {
		m.logger.Warn("address book replaced", "book", name, "discarded_contacts", old.Len())
	}
	m.books[name] = book
	m.logger.Info("address book created", "book", name)
	return book, nil
}

// RemoveAddressBook removes the named book with all its contacts.
// Removing a book that does not exist is a no-op.
func (m *Manager) RemoveAddressBook(name string) {
	m.mu.Lock()
	book, ok := m.books[name]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.books, name)
	removed := m.eventLocked(EventBookRemoved, name, nil)
	m.mu.Unlock()

	m.logger.Info("address book removed", "book", name, "contacts", book.Len())
	m.notifier.Notify(removed)
}

// AddContact adds c to the default book.
func (m *Manager) AddContact(c *Contact) (*Contact, error) {
	return m.AddContactTo(c, DefaultBook)
}

// AddContactTo validates c and adds it to the named book, creating the
// book if it does not exist. An empty book name means DefaultBook.
//
// A contact with the same name already in the book is replaced. The
// contact's owning book is set before it is stored; the returned contact
// is a copy of the stored value.
func (m *Manager) AddContactTo(c *Contact, bookName string) (*Contact, error) {
	if c == nil {
		return nil, ErrContactRequired
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	book, created, err := m.resolveOrCreate(bookName)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	c.book = book.Name
	book.AddContact(*c)
	stored := *c

	events := make([]Event, 0, 2)
	if created {
		events = append(events, m.eventLocked(EventBookCreated, book.Name, nil))
	}
	events = append(events, m.eventLocked(EventContactAdded, book.Name, &stored))
	m.mu.Unlock()

	m.logger.Debug("contact added", "book", book.Name, "contact", c.Name)
	for _, e := range events {
		m.notifier.Notify(e)
	}
	return &stored, nil
}

// RemoveContactByName removes the contact with the given name from the
// default book.
func (m *Manager) RemoveContactByName(name string) error {
	return m.RemoveContactByNameFrom(name, DefaultBook)
}

// RemoveContactByNameFrom removes the contact with the given name from the
// named book. An empty book name means DefaultBook. Returns a *LookupError
// if the book does not exist; a missing contact is not an error.
func (m *Manager) RemoveContactByNameFrom(name, bookName string) error {
	m.mu.Lock()
	book, err := m.resolveOrFail(bookName)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !book.RemoveContact(*LookupContact(name)) {
		m.mu.Unlock()
		return nil
	}
	removed := m.eventLocked(EventContactRemoved, book.Name, LookupContact(name))
	m.mu.Unlock()

	m.logger.Debug("contact removed", "book", book.Name, "contact", name)
	m.notifier.Notify(removed)
	return nil
}

// Contacts returns a snapshot of the contacts in the named book. An empty
// book name means DefaultBook. Returns a *LookupError if the book does not
// exist.
func (m *Manager) Contacts(bookName string) (ContactSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, err := m.resolveOrFail(bookName)
	if err != nil {
		return ContactSet{}, err
	}
	return book.Contacts(), nil
}

// AllContacts returns the contacts of every book, deduplicated by name.
//
// When the same name appears in several books exactly one instance is
// kept: books are visited in name order and the first one seen wins.
func (m *Manager) AllContacts() ContactSet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.books))
	for name := range m.books {
		names = append(names, name)
	}
	sort.Strings(names)

	all := NewContactSet()
	for _, name := range names {
		for _, c := range m.books[name].contacts.items {
			all.addIfAbsent(c)
		}
	}
	return all
}

// Stats summarises the registry for monitoring.
type Stats struct {
	Books          int            `json:"books"`
	Contacts       int            `json:"contacts"`
	UniqueContacts int            `json:"unique_contacts"`
	ByBook         map[string]int `json:"by_book"`
}

// GetStats returns current registry statistics. Contacts is the sum of the
// per-book sizes; UniqueContacts counts distinct names across books.
func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		Books:  len(m.books),
		ByBook: make(map[string]int, len(m.books)),
	}
	unique := make(map[string]struct{})
	for name, b := range m.books {
		stats.ByBook[name] = b.Len()
		stats.Contacts += b.Len()
		for key := range b.contacts.items {
			unique[key] = struct{}{}
		}
	}
	stats.UniqueContacts = len(unique)
	return stats
}

// eventLocked builds an event stamped with the next sequence number.
// Caller must hold mu for writing.
func (m *Manager) eventLocked(t EventType, book string, c *Contact) Event {
	m.seq++
	e := newEvent(t, book, c)
	e.Seq = m.seq
	return e
}

// resolveOrCreate returns the named book, creating it if it is missing.
// Creation goes through the same validation as CreateAddressBook. Caller
// must hold mu for writing.
func (m *Manager) resolveOrCreate(bookName string) (*AddressBook, bool, error) {
	if bookName == "" {
		bookName = DefaultBook
	}
	if book, ok := m.books[bookName]; ok {
		return book, false, nil
	}
	book, err := m.createLocked(bookName)
	if err != nil {
		return nil, false, err
	}
	return book, true, nil
}

// resolveOrFail returns the named book or a *LookupError. It never creates
// a book. Caller must hold mu.
func (m *Manager) resolveOrFail(bookName string) (*AddressBook, error) {
	if bookName == "" {
		bookName = DefaultBook
	}
	book, ok := m.books[bookName]
	if !ok {
		return nil, &LookupError{Book: bookName}
	}
	return book, nil
}
