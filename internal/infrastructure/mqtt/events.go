package mqtt

import (
	"encoding/json"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

// publisher is the subset of Client used by EventPublisher.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPublisher forwards registry events to MQTT.
//
// It implements addressbook.Notifier. Each event is JSON-encoded and
// published, not retained, to addressbook/events/<type>. Failures are
// logged and dropped: the registry never waits on the broker.
type EventPublisher struct {
	pub    publisher
	qos    byte
	logger Logger
}

// NewEventPublisher creates a publisher that sends through client at the
// client's configured QoS.
func NewEventPublisher(client *Client, logger Logger) *EventPublisher {
	return newEventPublisher(client, client.QoS(), logger)
}

func newEventPublisher(pub publisher, qos byte, logger Logger) *EventPublisher {
	return &EventPublisher{pub: pub, qos: qos, logger: logger}
}

// Notify publishes e.
func (p *EventPublisher) Notify(e addressbook.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to encode event", "type", e.Type, "error", err)
		return
	}

	topic := Topics{}.Event(string(e.Type))
	if err := p.pub.Publish(topic, payload, p.qos, false); err != nil {
		p.logger.Warn("failed to publish event", "topic", topic, "error", err)
		return
	}
	p.logger.Debug("event published", "topic", topic, "id", e.ID)
}
