// Package mqtt publishes address book change events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - EventPublisher, an addressbook.Notifier that forwards registry events
//
// # Topics
//
//	addressbook/events/book.created
//	addressbook/events/book.removed
//	addressbook/events/contact.added
//	addressbook/events/contact.removed
//	addressbook/system/status          (retained online/offline)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	manager.SetNotifier(mqtt.NewEventPublisher(client, log))
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) outside local development
//   - Event payloads include contact phone numbers; restrict subscriber ACLs
package mqtt
