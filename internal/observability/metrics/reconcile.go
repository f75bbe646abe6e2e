package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics tracks the read-model reconciliation pipeline.
type ReconcileMetrics struct {
	passDuration    *prometheus.HistogramVec
	passesTotal     *prometheus.CounterVec
	recordsExcluded *prometheus.CounterVec
	viewSize        prometheus.Gauge
}

var (
	reconcileMetricsOnce sync.Once
	reconcileMetrics     *ReconcileMetrics
)

// Reconcile returns the process-wide reconcile metrics.
func Reconcile() *ReconcileMetrics {
	return ReconcileWithConfig(Config{})
}

func ReconcileWithConfig(cfg Config) *ReconcileMetrics {
	reconcileMetricsOnce.Do(func() {
		reconcileMetrics = newReconcileMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reconcileMetrics
}

func ResetReconcileMetricsForTest() {
	reconcileMetricsOnce = sync.Once{}
	reconcileMetrics = nil
}

func newReconcileMetrics(registerer prometheus.Registerer, cfg Config) *ReconcileMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "couponview"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	passDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "couponview_reconcile_pass_duration_seconds",
			Help:        "Duration of a full reconciliation pass against the ledger.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | aborted
	)

	passesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "couponview_reconcile_passes_total",
			Help:        "Total reconciliation passes by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)

	recordsExcluded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "couponview_reconcile_records_excluded_total",
			Help:        "Raw records excluded from views after per-record fetch failures.",
			ConstLabels: constLabels,
		},
		[]string{"kind"}, // coupon | organization
	)

	viewSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "couponview_materialized_view_coupons",
			Help:        "Coupons in the most recently published materialized view.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		passDuration,
		passesTotal,
		recordsExcluded,
		viewSize,
	)

	return &ReconcileMetrics{
		passDuration:    passDuration,
		passesTotal:     passesTotal,
		recordsExcluded: recordsExcluded,
		viewSize:        viewSize,
	}
}

func (m *ReconcileMetrics) ObservePass(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.passesTotal.WithLabelValues(result).Inc()
	m.passDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *ReconcileMetrics) AddExcluded(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.recordsExcluded.WithLabelValues(kind).Add(float64(count))
}

func (m *ReconcileMetrics) SetViewSize(size int) {
	if m == nil {
		return
	}
	m.viewSize.Set(float64(size))
}
