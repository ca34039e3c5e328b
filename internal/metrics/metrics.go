// Package metrics exposes Prometheus instruments for the API. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cse"

type Metrics struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	convocationEmails   *prometheus.CounterVec
	convocationsSent    prometheus.Counter
	signaturesRecorded  prometheus.Counter
	minutesPromoted     prometheus.Counter
	minuteTransitions   *prometheus.CounterVec
	feedbackSubmissions *prometheus.CounterVec
}

// New registers every instrument with registry. A nil registry yields nil.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return nil
	}

	factory := promauto.With(registry)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		convocationEmails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convocation_emails_total",
			Help:      "Convocation emails by delivery result",
		}, []string{"result"}),
		convocationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convocations_dispatched_total",
			Help:      "Convocations marked as sent",
		}),
		signaturesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_recorded_total",
			Help:      "Minute signatures recorded",
		}),
		minutesPromoted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minutes_auto_signed_total",
			Help:      "Minutes promoted to SIGNED after reaching the signer quorum",
		}),
		minuteTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minute_transitions_total",
			Help:      "Minute status changes by source and target status",
		}, []string{"from", "to"}),
		feedbackSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submissions_total",
			Help:      "Feedback submissions by category",
		}, []string{"category"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ConvocationDispatched records the outcome of one dispatch.
func (m *Metrics) ConvocationDispatched(sent, failed int, marked bool) {
	if m == nil {
		return
	}
	m.convocationEmails.WithLabelValues("sent").Add(float64(sent))
	m.convocationEmails.WithLabelValues("failed").Add(float64(failed))
	if marked {
		m.convocationsSent.Inc()
	}
}

// SignatureRecorded records a signature and whether it completed the quorum.
func (m *Metrics) SignatureRecorded(promoted bool) {
	if m == nil {
		return
	}
	m.signaturesRecorded.Inc()
	if promoted {
		m.minutesPromoted.Inc()
	}
}

// MinuteTransition records a status change made through the API.
func (m *Metrics) MinuteTransition(from, to string) {
	if m == nil || from == to {
		return
	}
	m.minuteTransitions.WithLabelValues(from, to).Inc()
}

// FeedbackSubmitted records a new feedback.
func (m *Metrics) FeedbackSubmitted(category string) {
	if m == nil {
		return
	}
	m.feedbackSubmissions.WithLabelValues(category).Inc()
}
