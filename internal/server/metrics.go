package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haskel/molcmp/internal/dataset"
	"github.com/haskel/molcmp/internal/scheduler"
)

// Metrics exposes session progress as Prometheus collectors. Queue
// depths come from scheduler snapshots at scrape time; event totals are
// fed through the scheduler's listener interface.
type Metrics struct {
	registry *prometheus.Registry

	taskFailures      prometheus.Counter
	unpairedInputs    prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsFailed    prometheus.Counter
	progress          prometheus.Gauge
}

// NewMetrics creates and registers the collectors for one scheduler.
func NewMetrics(sched *scheduler.Scheduler) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		taskFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "molcmp",
			Name:      "task_failures_total",
			Help:      "Total number of failed comparison tasks.",
		}),
		unpairedInputs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "molcmp",
			Name:      "unpaired_inputs_total",
			Help:      "Total number of records without a counterpart.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "molcmp",
			Name:      "sessions_completed_total",
			Help:      "Total number of sessions that produced a dataset.",
		}),
		sessionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "molcmp",
			Name:      "sessions_failed_total",
			Help:      "Total number of sessions that failed.",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "session_progress",
			Help:      "Reported completion fraction of the current session.",
		}),
	}

	registry.MustRegister(
		m.taskFailures,
		m.unpairedInputs,
		m.sessionsCompleted,
		m.sessionsFailed,
		m.progress,
	)

	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "tasks_in_flight",
			Help:      "Tasks currently executing.",
		}, func() float64 { return float64(sched.Stats().InFlight) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "tasks_remaining",
			Help:      "Tasks not yet dispatched.",
		}, func() float64 { return float64(sched.Stats().Remaining) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "tasks_succeeded",
			Help:      "Tasks succeeded in the current session.",
		}, func() float64 { return float64(sched.Stats().Succeeded) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "tasks_failed",
			Help:      "Tasks failed in the current session.",
		}, func() float64 { return float64(sched.Stats().Failed) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "molcmp",
			Name:      "session_active",
			Help:      "Whether a session is running.",
		}, func() float64 {
			if sched.Active() {
				return 1
			}
			return 0
		}),
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Metrics implements scheduler.Listener.

func (m *Metrics) OnProgress(fraction float64) {
	m.progress.Set(fraction)
}

func (m *Metrics) OnUnpairedInputs(count int) {
	m.unpairedInputs.Add(float64(count))
}

func (m *Metrics) OnTaskFailed(string) {
	m.taskFailures.Inc()
}

func (m *Metrics) OnSessionComplete(*dataset.Dataset) {
	m.sessionsCompleted.Inc()
}

func (m *Metrics) OnSessionFailed(string) {
	m.sessionsFailed.Inc()
}
