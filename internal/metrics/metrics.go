// Package metrics provides Prometheus metrics for prediction runs. A batch run
// has no scrape endpoint; the registry is written once at the end of the run
// in the text exposition format for the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of a prediction run.
type Metrics struct {
	// Prediction metrics
	PredictionsTotal  prometheus.Counter   // Records evaluated
	CorrectTotal      prometheus.Counter   // Predictions equal to the target label
	UnknownTotal      prometheus.Counter   // Open-set predictions rejected as unknown
	PredictionLatency prometheus.Histogram // Per-record evaluation latency
	PredictionScores  prometheus.Histogram // Winning class probability in probability and open-set modes

	// Run metrics
	Accuracy     prometheus.Gauge   // Fraction of correct predictions at the end of the run
	InputErrors  prometheus.Counter // Malformed test-file lines
	ErrorsTotal  prometheus.Counter // Fatal run errors
	RunDuration  prometheus.Gauge   // Wall time of the run in seconds
	ModelClasses prometheus.Gauge   // Classes of the loaded model
}

// NewWithRegistry creates metrics registered with registerer. A run owns its
// registry so the textfile holds only svm_* metrics.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "svm_predictions_total",
			Help: "Total number of records evaluated",
		}),
		CorrectTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "svm_predictions_correct_total",
			Help: "Total number of predictions equal to the target label",
		}),
		UnknownTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "svm_predictions_unknown_total",
			Help: "Total number of open-set predictions rejected as unknown",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "svm_prediction_latency_seconds",
			Help:    "Per-record evaluation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
		}),
		PredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "svm_prediction_scores",
			Help:    "Distribution of winning class probabilities",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Accuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "svm_accuracy",
			Help: "Fraction of correct predictions in the last run",
		}),
		InputErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "svm_input_errors_total",
			Help: "Total number of malformed test-file lines",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "svm_errors_total",
			Help: "Total number of fatal run errors",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "svm_run_duration_seconds",
			Help: "Wall time of the last run in seconds",
		}),
		ModelClasses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "svm_model_classes",
			Help: "Number of classes of the loaded model",
		}),
	}
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The file is replaced atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
