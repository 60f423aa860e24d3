package obs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/toko-storefront/internal/events"
)

var (
	domainOnce sync.Once

	// CartSignalsTotal counts signals raised by cart and review operations.
	CartSignalsTotal *prometheus.CounterVec
	// CheckoutAmount records final totals of completed checkouts.
	CheckoutAmount prometheus.Histogram
	// ReviewsSubmittedTotal counts recorded reviews.
	ReviewsSubmittedTotal prometheus.Counter
	// NotificationsShownTotal counts banner messages shown to visitors.
	NotificationsShownTotal prometheus.Counter
	// ActiveSessions tracks in-memory storefront sessions.
	ActiveSessions prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartSignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_signals_total",
			Help:      "Count of signals raised by storefront operations.",
		}, []string{"topic"})
		CheckoutAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_amount",
			Help:      "Final total of completed checkouts in display currency units.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		})
		ReviewsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "Total number of submitted reviews.",
		})
		NotificationsShownTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_shown_total",
			Help:      "Total number of notification banners shown.",
		})
		ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storefront_sessions",
			Help:      "Current number of in-memory storefront sessions.",
		})

		mustRegisterCollector(reg, CartSignalsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartSignalsTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CheckoutAmount = v
			}
		})
		mustRegisterCollector(reg, ReviewsSubmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				ReviewsSubmittedTotal = v
			}
		})
		mustRegisterCollector(reg, NotificationsShownTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				NotificationsShownTotal = v
			}
		})
		mustRegisterCollector(reg, ActiveSessions, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				ActiveSessions = v
			}
		})
		// zero series so rate() works before the first signal
		for _, topic := range events.DefaultTopics() {
			CartSignalsTotal.WithLabelValues(topic)
		}
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

// EventMetrics records domain metrics for events flowing through the bus.
// Collectors left nil by an unregistered process are skipped.
type EventMetrics struct{}

// Notify implements events.Notifier.
func (EventMetrics) Notify(_ context.Context, ev events.Event) error {
	if CartSignalsTotal != nil {
		CartSignalsTotal.WithLabelValues(ev.Topic).Inc()
	}
	switch ev.Topic {
	case events.TopicReviewSubmitted:
		if ReviewsSubmittedTotal != nil {
			ReviewsSubmittedTotal.Inc()
		}
	case events.TopicCheckoutCompleted:
		if CheckoutAmount == nil {
			return nil
		}
		var payload struct {
			FinalTotal string `json:"finalTotal"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("decode checkout payload: %w", err)
		}
		amount, err := strconv.ParseFloat(payload.FinalTotal, 64)
		if err != nil {
			return fmt.Errorf("parse checkout total: %w", err)
		}
		CheckoutAmount.Observe(amount)
	}
	return nil
}

// CountNotification is a banner hook incrementing NotificationsShownTotal.
func CountNotification(string) {
	if NotificationsShownTotal != nil {
		NotificationsShownTotal.Inc()
	}
}
