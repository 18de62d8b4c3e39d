package events

import "github.com/angelmondragon/counterpos/pkg/metrics"

// RecordMetrics counts every change published on bus.
func RecordMetrics(bus *Bus, m *metrics.POSMetrics) (unsubscribe func()) {
	return bus.Subscribe(func(c Change) {
		m.IncChange(string(c.Collection), string(c.Action))
	})
}
