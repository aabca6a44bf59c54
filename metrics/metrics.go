// Package metrics exposes the keyer's operational counters as Prometheus
// metrics: elements emitted, queue drops, hardware faults, and timing
// misses (spec.md §7's error taxonomy, made observable). No example in the
// retrieved pack exercises client_golang beyond an indirect go.mod entry,
// so the registration style here follows the library's own idiomatic
// promauto pattern rather than a specific example's.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds every counter the keyer maintains. Construct one with
// NewCollectors and pass it to loop.Runner; a program with no metrics
// endpoint can still construct one and simply never serve it.
type Collectors struct {
	ElementsEmitted *prometheus.CounterVec
	QueueDrops      prometheus.Counter
	HardwareErrors  prometheus.Counter
	TimingMisses    prometheus.Counter
}

// NewCollectors registers the keyer's counters against reg and returns them.
// Pass prometheus.NewRegistry() for an isolated registry (tests, multiple
// keyer instances in one process) or prometheus.DefaultRegisterer to expose
// via the default /metrics handler.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		ElementsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ironkeyer",
			Name:      "elements_emitted_total",
			Help:      "Elements successfully enqueued by the Element FSM, by kind.",
		}, []string{"element"}),
		QueueDrops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ironkeyer",
			Name:      "queue_drops_total",
			Help:      "Elements dropped because the element queue was full.",
		}),
		HardwareErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ironkeyer",
			Name:      "hardware_errors_total",
			Help:      "Key/tone driver failures counted by the Transmission FSM.",
		}),
		TimingMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ironkeyer",
			Name:      "timing_misses_total",
			Help:      "Transmission FSM transitions observed past tolerance of their scheduled deadline.",
		}),
	}
}
