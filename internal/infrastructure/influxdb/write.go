package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names for registry gauges.
const (
	MeasurementBooks  = "addressbook_books"
	MeasurementTotals = "addressbook_totals"
)

// WriteBookMetric records the contact count of one book.
func (c *Client) WriteBookMetric(book string, contacts int, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(bookPoint(book, contacts, ts))
}

// WriteTotals records registry-wide counts.
func (c *Client) WriteTotals(books, contacts, unique int, ts time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(totalsPoint(books, contacts, unique, ts))
}

func bookPoint(book string, contacts int, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementBooks,
		map[string]string{"book": book},
		map[string]any{"contacts": contacts},
		ts,
	)
}

func totalsPoint(books, contacts, unique int, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementTotals,
		nil,
		map[string]any{
			"books":           books,
			"contacts":        contacts,
			"unique_contacts": unique,
		},
		ts,
	)
}
