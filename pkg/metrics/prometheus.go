package metrics

import (
	"DialMeter/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastValue   *prometheus.GaugeVec
	lastAngle   *prometheus.GaugeVec
	lastDuty    *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cyclesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialmeter_cycles_total",
				Help: "Total number of poll cycles by outcome",
			},
			[]string{"source", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dialmeter_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dialmeter_last_value",
				Help: "Last resolved percentage fed to the dial",
			},
			[]string{"source"},
		),
		lastAngle: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dialmeter_last_angle_degrees",
				Help: "Last servo angle issued",
			},
			[]string{"source"},
		),
		lastDuty: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dialmeter_last_duty",
				Help: "Last 16-bit PWM duty written",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dialmeter_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle counts a finished cycle.
func (r *Recorder) RecordCycle(source string, outcome models.ErrorKind) {
	r.cyclesTotal.WithLabelValues(source, string(outcome)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordReading records the last resolved value for a source.
func (r *Recorder) RecordReading(source string, value float64) {
	r.lastValue.WithLabelValues(source).Set(value)
}

// RecordCommand records the last actuator command.
func (r *Recorder) RecordCommand(source string, angle float64, duty uint16) {
	r.lastAngle.WithLabelValues(source).Set(angle)
	r.lastDuty.WithLabelValues(source).Set(float64(duty))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordCycle(string, models.ErrorKind) {}
func (Noop) RecordError(string) {}
func (Noop) RecordReading(string, float64) {}
func (Noop) RecordCommand(string, float64, uint16) {}
func (Noop) RecordLatency(string, float64) {}
