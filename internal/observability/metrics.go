package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. A nil *Metrics
// is valid and records nothing, so core packages can be tested without a
// registry.
type Metrics struct {
	DrawsTotal     *prometheus.CounterVec
	OffersTotal    *prometheus.CounterVec
	QuestionsTotal *prometheus.CounterVec
	UpdatesTotal   *prometheus.CounterVec
	SendErrors     prometheus.Counter
	KnownUsers     prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DrawsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Cards dealt by mode.",
		}, []string{"mode"}),
		OffersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_total",
			Help:      "Consult offers by outcome.",
		}, []string{"outcome"}),
		QuestionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Free-text questions by validation result.",
		}, []string{"result"}),
		UpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Inbound Telegram updates by kind.",
		}, []string{"kind"}),
		SendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Failed outbound Telegram calls.",
		}),
		KnownUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_users",
			Help:      "Users with conversation state in memory.",
		}),
	}
}

func (m *Metrics) Draw(mode string) {
	if m == nil {
		return
	}
	m.DrawsTotal.WithLabelValues(mode).Inc()
}

func (m *Metrics) Offer(outcome string) {
	if m == nil {
		return
	}
	m.OffersTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Question(result string) {
	if m == nil {
		return
	}
	m.QuestionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) SendError() {
	if m == nil {
		return
	}
	m.SendErrors.Inc()
}

func (m *Metrics) SetKnownUsers(n int) {
	if m == nil {
		return
	}
	m.KnownUsers.Set(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
