package mqtt

import "fmt"

// Topic prefixes for the address book service.
const (
	// TopicPrefix is the root of every topic the service publishes.
	TopicPrefix = "addressbook"

	// TopicPrefixEvents is the base for registry change events.
	TopicPrefixEvents = TopicPrefix + "/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for the service's MQTT topics.
//
//	topic := mqtt.Topics{}.Event("contact.added")
//	// Returns: "addressbook/events/contact.added"
type Topics struct{}

// Event returns the topic for one registry event type.
//
// Example: addressbook/events/book.created
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, eventType)
}

// AllEvents returns a wildcard topic matching every registry event.
func (Topics) AllEvents() string {
	return TopicPrefixEvents + "/+"
}

// SystemStatus returns the topic for the service's online/offline status.
//
// Example: addressbook/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
