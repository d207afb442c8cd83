package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters for the dialogue engine. A nil
// receiver is a no-op so wiring metrics stays optional in tests.
type ConversationMetrics struct {
	received     prometheus.Counter
	sent         prometheus.Counter
	intents      *prometheus.CounterVec
	turnFailures prometheus.Counter
	booked       prometheus.Counter
	cancelled    prometheus.Counter
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "messages_received_total",
			Help:      "Inbound messages handled by the dialogue engine",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "messages_sent_total",
			Help:      "Outbound replies sent by the dialogue engine",
		}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "intents_total",
			Help:      "Detected intents by type",
		}, []string{"intent"}),
		turnFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "turn_failures_total",
			Help:      "Turns that ended in an apology and session reset",
		}),
		booked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "appointments_booked_total",
			Help:      "Appointments confirmed through the dialogue",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "conversation",
			Name:      "appointments_cancelled_total",
			Help:      "Appointments cancelled through the dialogue",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.received, m.sent, m.intents, m.turnFailures, m.booked, m.cancelled)
	return m
}

func (m *ConversationMetrics) ObserveReceived() {
	if m == nil {
		return
	}
	m.received.Inc()
}

func (m *ConversationMetrics) ObserveSent() {
	if m == nil {
		return
	}
	m.sent.Inc()
}

func (m *ConversationMetrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent).Inc()
}

func (m *ConversationMetrics) ObserveTurnFailure() {
	if m == nil {
		return
	}
	m.turnFailures.Inc()
}

func (m *ConversationMetrics) ObserveBooked() {
	if m == nil {
		return
	}
	m.booked.Inc()
}

func (m *ConversationMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

// MessagingMetrics covers the Twilio webhook and outbound sends.
type MessagingMetrics struct {
	inboundTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	webhookLatency prometheus.Histogram
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Inbound Twilio webhooks by outcome",
		}, []string{"status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turnosms",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Outbound Twilio sends by outcome",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turnosms",
			Subsystem: "messaging",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of Twilio webhook processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.webhookLatency)
	return m
}

func (m *MessagingMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *MessagingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *MessagingMetrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.Observe(seconds)
}
