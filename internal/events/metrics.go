// Prometheus instrumentation for token transitions.
//
// The queue engine publishes one event per committed transition; wrapping the
// publisher counts them without touching the engine itself. Labels are the
// transition edge only: office ids would make cardinality unbounded.
package events

import "github.com/prometheus/client_golang/prometheus"

var transitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "token_transitions_total",
		Help: "Total number of committed token status transitions.",
	},
	[]string{"from", "to"},
)

func init() {
	prometheus.MustRegister(transitionsTotal)
}

// counted decorates a Publisher with a transition counter.
type counted struct {
	next Publisher
}

// Counted wraps next so every published transition increments
// token_transitions_total{from,to} before delivery.
func Counted(next Publisher) Publisher {
	if next == nil {
		next = Nop{}
	}
	return counted{next: next}
}

// Publish implements Publisher.
func (p counted) Publish(ev Event) {
	transitionsTotal.WithLabelValues(string(ev.OldStatus), string(ev.NewStatus)).Inc()
	p.next.Publish(ev)
}
