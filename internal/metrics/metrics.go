// Package metrics records per-run pipeline metrics in a dedicated registry
// that can be written out in the node exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for one pipeline run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Stage durations by stage name
	StageLatency *prometheus.HistogramVec

	// Per-item classification latency by classifier
	ClassifyLatency *prometheus.HistogramVec

	// Items by outcome
	ItemsProcessed prometheus.Counter
	ItemsExcluded  prometheus.Counter

	// Classification outcomes by status
	Classifications *prometheus.CounterVec

	// Fired risk profiles by code
	RiskFlags *prometheus.CounterVec

	// Identity outcomes
	SplitShipmentGroups prometheus.Counter
	RevenueRiskGroups   prometheus.Counter

	// Duty assessed in the normalized currency
	DutyAssessed prometheus.Counter
}

// New creates a new Metrics instance registered on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "customsgate_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}), // stage: "prepare", "identity", "classify_protect", "valuation", "render"

		ClassifyLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "customsgate_classify_duration_seconds",
			Help:    "Duration of single item classifications by classifier",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"classifier"}),

		ItemsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "customsgate_items_processed_total",
			Help: "Line items that passed data preparation",
		}),

		ItemsExcluded: factory.NewCounter(prometheus.CounterOpts{
			Name: "customsgate_items_excluded_total",
			Help: "Line items excluded for unparsable timestamps or amounts",
		}),

		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customsgate_classifications_total",
			Help: "Classification outcomes by status",
		}, []string{"status"}),

		RiskFlags: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customsgate_risk_flags_total",
			Help: "Fired risk profiles by code",
		}, []string{"code"}),

		SplitShipmentGroups: factory.NewCounter(prometheus.CounterOpts{
			Name: "customsgate_split_shipment_groups_total",
			Help: "Importer-days with more than one order",
		}),

		RevenueRiskGroups: factory.NewCounter(prometheus.CounterOpts{
			Name: "customsgate_revenue_risk_groups_total",
			Help: "Split importer-days whose total exceeds the de-minimis threshold",
		}),

		DutyAssessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "customsgate_duty_assessed_aed_total",
			Help: "Total duty assessed in AED",
		}),
	}
}

// ObserveStage records the duration of a pipeline stage
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveClassify records one classification call and its outcome
func (m *Metrics) ObserveClassify(classifier, status string, d time.Duration) {
	if m != nil {
		m.ClassifyLatency.WithLabelValues(classifier).Observe(d.Seconds())
		m.Classifications.WithLabelValues(status).Inc()
	}
}

// IncrementRiskFlag records one fired risk profile
func (m *Metrics) IncrementRiskFlag(code string) {
	if m != nil {
		m.RiskFlags.WithLabelValues(code).Inc()
	}
}

// AddItems records prepared and excluded item counts
func (m *Metrics) AddItems(processed, excluded int) {
	if m != nil {
		m.ItemsProcessed.Add(float64(processed))
		m.ItemsExcluded.Add(float64(excluded))
	}
}

// AddGroups records identity outcomes
func (m *Metrics) AddGroups(split, revenueRisk int) {
	if m != nil {
		m.SplitShipmentGroups.Add(float64(split))
		m.RevenueRiskGroups.Add(float64(revenueRisk))
	}
}

// AddDuty records assessed duty
func (m *Metrics) AddDuty(amount float64) {
	if m != nil && amount > 0 {
		m.DutyAssessed.Add(amount)
	}
}

// Gatherer exposes the run registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry to path atomically in the textfile
// collector format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
