package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the controller's instrumentation. It registers against its own
// registry so multiple controllers (and tests) never collide.
type Set struct {
	registry *prometheus.Registry

	FetchAttempts prometheus.Counter
	FetchFailures *prometheus.CounterVec // stage: connect|send|read|parse
	Decisions     *prometheus.CounterVec // action: none|buy|sell
	OrdersOpened  prometheus.Counter
	OrdersClosed  prometheus.Counter
	OpenPositions prometheus.Gauge
	KillSwitch    prometheus.Gauge
}

func New() *Set {
	reg := prometheus.NewRegistry()

	s := &Set{
		registry: reg,
		FetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantctl_fetch_attempts_total",
			Help: "Signal fetch attempts, including failed ones.",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantctl_fetch_failures_total",
			Help: "Signal fetch failures by protocol stage.",
		}, []string{"stage"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantctl_decisions_total",
			Help: "Decision engine outcomes by action.",
		}, []string{"action"}),
		OrdersOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantctl_orders_opened_total",
			Help: "Market orders dispatched.",
		}),
		OrdersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantctl_orders_closed_total",
			Help: "Position close requests dispatched.",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quantctl_open_positions",
			Help: "Owned open positions as of the last ledger refresh.",
		}),
		KillSwitch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quantctl_kill_switch",
			Help: "1 once trading has been permanently disabled.",
		}),
	}

	reg.MustRegister(s.FetchAttempts, s.FetchFailures, s.Decisions,
		s.OrdersOpened, s.OrdersClosed, s.OpenPositions, s.KillSwitch)
	return s
}

// Handler serves the set over HTTP in the prometheus text format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
