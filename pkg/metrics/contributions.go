package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ContributionMetrics records write-path outcomes for wave contributions.
type ContributionMetrics struct {
	duration     *prometheus.HistogramVec
	accepted     *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	visitSkipped prometheus.Counter
}

// NewContributionMetrics registers the contribution metrics on the provided registerer.
func NewContributionMetrics(reg prometheus.Registerer) *ContributionMetrics {
	if reg == nil {
		return &ContributionMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contribution_write_duration_seconds",
		Help:    "Duration of contribution write transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contribution_items_accepted",
		Help: "Contribution line items committed to the ledger.",
	}, []string{"item_type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contribution_batches_rejected",
		Help: "Contribution batches rolled back before commit.",
	}, []string{"reason"})
	visitSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contribution_visit_credit_failures",
		Help: "Best-effort market visit credits that failed and were swallowed.",
	})
	reg.MustRegister(duration, accepted, rejected, visitSkipped)
	return &ContributionMetrics{
		duration:     duration,
		accepted:     accepted,
		rejected:     rejected,
		visitSkipped: visitSkipped,
	}
}

// ObserveWrite records the duration of one write transaction.
func (c *ContributionMetrics) ObserveWrite(kind string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncAccepted increments the accepted counter for the item type.
func (c *ContributionMetrics) IncAccepted(itemType string) {
	if c == nil || c.accepted == nil {
		return
	}
	c.accepted.WithLabelValues(normalizeLabel(itemType)).Inc()
}

// IncRejected increments the rejected counter for the named reason.
func (c *ContributionMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncVisitCreditFailure counts a swallowed visit-credit failure.
func (c *ContributionMetrics) IncVisitCreditFailure() {
	if c == nil || c.visitSkipped == nil {
		return
	}
	c.visitSkipped.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
