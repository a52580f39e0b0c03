package addressbook

import "sort"

// ContactSet is a set of contacts keyed by contact identity.
//
// The zero value is an empty set ready for reads; use NewContactSet before
// adding. Sets returned by Manager and AddressBook are snapshots: changing
// them does not affect the registry.
type ContactSet struct {
	items map[string]Contact
}

// NewContactSet creates a set holding the given contacts. Later entries
// replace earlier ones with the same name.
func NewContactSet(contacts ...Contact) ContactSet {
	s := ContactSet{items: make(map[string]Contact, len(contacts))}
	for _, c := range contacts {
		s.Add(c)
	}
	return s
}

// Add inserts c, replacing any member with the same identity.
func (s ContactSet) Add(c Contact) {
	s.items[c.Key()] = c
}

// addIfAbsent inserts c unless a member with the same identity exists.
func (s ContactSet) addIfAbsent(c Contact) {
	if _, ok := s.items[c.Key()]; !ok {
		s.items[c.Key()] = c
	}
}

// Remove deletes the member equal to c. It reports whether one existed.
func (s ContactSet) Remove(c Contact) bool {
	if _, ok := s.items[c.Key()]; !ok {
		return false
	}
	delete(s.items, c.Key())
	return true
}

// Contains reports whether a member equal to c exists.
func (s ContactSet) Contains(c Contact) bool {
	_, ok := s.items[c.Key()]
	return ok
}

// Get returns the member with the given name.
func (s ContactSet) Get(name string) (Contact, bool) {
	c, ok := s.items[name]
	return c, ok
}

// Len returns the number of members.
func (s ContactSet) Len() int { return len(s.items) }

// Contacts returns the members sorted by name.
func (s ContactSet) Contacts() []Contact {
	out := make([]Contact, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// clone returns an independent copy of s.
func (s ContactSet) clone() ContactSet {
	out := ContactSet{items: make(map[string]Contact, len(s.items))}
	for k, c := range s.items {
		out.items[k] = c
	}
	return out
}
