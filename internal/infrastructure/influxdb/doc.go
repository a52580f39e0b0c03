// Package influxdb provides InfluxDB connectivity for the address book service.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writes and health monitoring. The telemetry
// reporter uses it to record registry size over time.
//
// # Measurements
//
//	addressbook_books   tag book, field contacts
//	addressbook_totals  fields books, contacts, unique_contacts
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteBookMetric("friends", 4, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking; async
// failures are delivered to the callback set with SetOnError.
package influxdb
