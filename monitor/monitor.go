// monitor/monitor.go
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wfunc/simonsays/game"
)

type Metrics struct {
	ActiveSessions   prometheus.Gauge
	GamesStarted     *prometheus.CounterVec
	GamesFinished    *prometheus.CounterVec
	RoundsCompleted  prometheus.Counter
	HighestRound     prometheus.Histogram
	MessagesReceived *prometheus.CounterVec
	MessageLatency   prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected players",
		}),
		GamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started, by difficulty",
		}, []string{"difficulty"}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Games that reached game over, by outcome",
		}, []string{"outcome"}),
		RoundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Rounds repeated correctly",
		}),
		HighestRound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_final_round",
			Help:      "Round reached when a game ended",
			Buckets:   prometheus.LinearBuckets(1, 1, 20),
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Client messages received, by message id",
		}, []string{"msg_id"}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
}

// Monitor owns a registry so that several servers, or tests, can run in one
// process.
type Monitor struct {
	metrics   *Metrics
	registry  *prometheus.Registry
	startTime time.Time
}

var _ game.Observer = (*Monitor)(nil)

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics:   NewMetrics(namespace),
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.metrics.ActiveSessions,
		m.metrics.GamesStarted,
		m.metrics.GamesFinished,
		m.metrics.RoundsCompleted,
		m.metrics.HighestRound,
		m.metrics.MessagesReceived,
		m.metrics.MessageLatency,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the server started",
		}, func() float64 {
			return time.Since(m.startTime).Seconds()
		}),
	)
	return m
}

func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) IncActiveSessions() {
	m.metrics.ActiveSessions.Inc()
}

func (m *Monitor) DecActiveSessions() {
	m.metrics.ActiveSessions.Dec()
}

func (m *Monitor) IncMessagesReceived(msgID string) {
	m.metrics.MessagesReceived.WithLabelValues(msgID).Inc()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

func (m *Monitor) GameStarted(difficulty game.Difficulty) {
	m.metrics.GamesStarted.WithLabelValues(string(difficulty)).Inc()
}

func (m *Monitor) RoundStarted(int) {}

func (m *Monitor) RoundCompleted(int, int) {
	m.metrics.RoundsCompleted.Inc()
}

func (m *Monitor) GameOver(won bool, round, score int) {
	outcome := "lost"
	if won {
		outcome = "won"
	}
	m.metrics.GamesFinished.WithLabelValues(outcome).Inc()
	m.metrics.HighestRound.Observe(float64(round))
}
