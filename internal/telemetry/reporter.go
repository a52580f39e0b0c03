// Package telemetry periodically records address book registry size.
package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/addressbook/internal/addressbook"
)

// DefaultInterval is used when the reporter is built with a non-positive interval.
const DefaultInterval = 60 * time.Second

// StatsSource supplies registry statistics. *addressbook.Manager satisfies it.
type StatsSource interface {
	GetStats() addressbook.Stats
}

// PointWriter records gauges. *influxdb.Client satisfies it.
// Writes may be buffered; Flush blocks until they are sent.
type PointWriter interface {
	WriteBookMetric(book string, contacts int, ts time.Time)
	WriteTotals(books, contacts, unique int, ts time.Time)
	Flush()
}

// Logger is the logging interface used by the reporter.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Reporter writes one snapshot of the registry statistics every interval.
type Reporter struct {
	source   StatsSource
	writer   PointWriter
	interval time.Duration
	logger   Logger
	now      func() time.Time
}

// NewReporter creates a reporter. A nil logger disables logging.
func NewReporter(source StatsSource, writer PointWriter, interval time.Duration, logger Logger) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Reporter{
		source:   source,
		writer:   writer,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run reports immediately and then on every tick until ctx is cancelled.
// On cancellation it writes a final snapshot and flushes the writer.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Report()

	for {
		select {
		case <-ctx.Done():
			r.Report()
			r.writer.Flush()
			return
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report writes the current statistics once. All points share one timestamp.
func (r *Reporter) Report() {
	stats := r.source.GetStats()
	ts := r.now()

	for book, n := range stats.ByBook {
		r.writer.WriteBookMetric(book, n, ts)
	}
	r.writer.WriteTotals(stats.Books, stats.Contacts, stats.UniqueContacts, ts)

	r.logger.Debug("registry stats reported",
		"books", stats.Books,
		"contacts", stats.Contacts,
		"unique_contacts", stats.UniqueContacts,
	)
}
