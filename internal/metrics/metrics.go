package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	layerPlansTotal    *prometheus.CounterVec
	planErrorsTotal    *prometheus.CounterVec
	peakSourceLoad     *prometheus.GaugeVec
	planDurationSecond *prometheus.HistogramVec
)

// InitMetrics registers all planner metrics with the provided registry
func InitMetrics(registry prometheus.Registerer) {
	layerPlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "d2d_layer_plans_total",
			Help: "Total number of per-layer expert plans computed",
		},
		[]string{"target_instance"},
	)
	planErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "d2d_plan_errors_total",
			Help: "Total number of planning errors",
		},
		[]string{"target_instance", "error_type"},
	)
	peakSourceLoad = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "d2d_peak_source_load",
			Help: "Peak per-NPU transfer count of the latest layer plan",
		},
		[]string{"target_instance"},
	)
	planDurationSecond = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "d2d_plan_duration_seconds",
			Help:    "Wall-clock time spent planning one layer",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"target_instance"},
	)

	registry.MustRegister(layerPlansTotal)
	registry.MustRegister(planErrorsTotal)
	registry.MustRegister(peakSourceLoad)
	registry.MustRegister(planDurationSecond)
}

// InitMetricsAndEmitter registers metrics and creates a metrics emitter
func InitMetricsAndEmitter(registry prometheus.Registerer) *MetricsEmitter {
	InitMetrics(registry)
	return NewMetricsEmitter()
}

// MetricsEmitter handles emission of planner metrics
type MetricsEmitter struct{}

func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{}
}

// EmitLayerPlan records one successful layer plan
func (m *MetricsEmitter) EmitLayerPlan(target string, peak int, elapsed time.Duration) {
	if layerPlansTotal == nil {
		return
	}
	layerPlansTotal.WithLabelValues(target).Inc()
	peakSourceLoad.WithLabelValues(target).Set(float64(peak))
	planDurationSecond.WithLabelValues(target).Observe(elapsed.Seconds())
}

// EmitPlanError records a failed planning call
func (m *MetricsEmitter) EmitPlanError(target, errorType string) {
	if planErrorsTotal == nil {
		return
	}
	planErrorsTotal.WithLabelValues(target, errorType).Inc()
}
