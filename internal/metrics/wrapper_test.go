package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestWrapper(t *testing.T) (*prometheus.Registry, *Metrics, *MetricsWrapper) {
	t.Helper()
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	return registry, metrics, NewWrapper(metrics)
}

func sampleCount(t *testing.T, g prometheus.Gatherer, name string) uint64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestNewWrapper(t *testing.T) {
	_, metrics, wrapper := newTestWrapper(t)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_CounterOperations(t *testing.T) {
	_, metrics, wrapper := newTestWrapper(t)

	if v := testutil.ToFloat64(metrics.PredictionsTotal); v != 0 {
		t.Errorf("Expected initial counter value 0, got %f", v)
	}

	wrapper.PredictionsInc()
	wrapper.PredictionsInc()
	if v := testutil.ToFloat64(metrics.PredictionsTotal); v != 2 {
		t.Errorf("Expected counter value 2, got %f", v)
	}
}

func TestMetricsWrapper_GaugeOperations(t *testing.T) {
	_, metrics, wrapper := newTestWrapper(t)

	wrapper.AccuracySet(0.5)
	if v := testutil.ToFloat64(metrics.Accuracy); v != 0.5 {
		t.Errorf("Expected gauge value 0.5, got %f", v)
	}

	wrapper.AccuracySet(0.9)
	if v := testutil.ToFloat64(metrics.Accuracy); v != 0.9 {
		t.Errorf("Expected gauge value 0.9, got %f", v)
	}
}

func TestMetricsWrapper_HistogramOperations(t *testing.T) {
	registry, _, wrapper := newTestWrapper(t)

	testValues := []float64{0.00001, 0.0001, 0.001, 0.01, 0.1}
	for _, v := range testValues {
		wrapper.LatencyObserve(v)
	}

	if n := sampleCount(t, registry, "svm_prediction_latency_seconds"); n != uint64(len(testValues)) {
		t.Errorf("Expected %d observations, got %d", len(testValues), n)
	}

	wrapper.ScoreObserve(0.8)
	if n := sampleCount(t, registry, "svm_prediction_scores"); n != 1 {
		t.Errorf("Expected 1 score observation, got %d", n)
	}
}

func TestMetricsWrapper_PredictionMethods(t *testing.T) {
	_, metrics, wrapper := newTestWrapper(t)

	wrapper.CorrectInc()
	wrapper.UnknownInc()
	wrapper.UnknownInc()
	wrapper.InputErrorsInc()
	wrapper.ErrorsInc()
	wrapper.RunDurationSet(1.5)
	wrapper.ModelClassesSet(3)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"correct", metrics.CorrectTotal, 1},
		{"unknown", metrics.UnknownTotal, 2},
		{"input errors", metrics.InputErrors, 1},
		{"errors", metrics.ErrorsTotal, 1},
		{"run duration", metrics.RunDuration, 1.5},
		{"model classes", metrics.ModelClasses, 3},
	}
	for _, c := range checks {
		if v := testutil.ToFloat64(c.c); v != c.want {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, v)
		}
	}
}

func TestMetricsWrapper_ConcurrentAccess(t *testing.T) {
	_, metrics, wrapper := newTestWrapper(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				wrapper.PredictionsInc()
				wrapper.LatencyObserve(0.01)
			}
		}()
	}
	wg.Wait()

	if v := testutil.ToFloat64(metrics.PredictionsTotal); v != 1000 {
		t.Errorf("Expected 1000 predictions after concurrent access, got %f", v)
	}
}

func TestMetricsWrapper_NilGuard(t *testing.T) {
	wrapper := &MetricsWrapper{m: nil}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when accessing nil metrics")
		}
	}()

	wrapper.PredictionsInc()
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	NewWithRegistry(registry)
}

func TestWriteTextfile(t *testing.T) {
	registry, _, wrapper := newTestWrapper(t)
	wrapper.PredictionsInc()
	wrapper.CorrectInc()

	path := filepath.Join(t.TempDir(), "svm-predict.prom")
	if err := WriteTextfile(path, registry); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		"svm_predictions_total 1",
		"svm_predictions_correct_total 1",
		"# TYPE svm_prediction_latency_seconds histogram",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in textfile:\n%s", want, data)
		}
	}
}

func TestWriteTextfile_BadPath(t *testing.T) {
	registry, _, _ := newTestWrapper(t)

	path := filepath.Join(t.TempDir(), "missing", "svm-predict.prom")
	if err := WriteTextfile(path, registry); err == nil {
		t.Error("expected error for missing directory")
	}
}

func BenchmarkMetricsWrapper_PredictionsInc(b *testing.B) {
	wrapper := NewWrapper(NewWithRegistry(prometheus.NewRegistry()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wrapper.PredictionsInc()
	}
}

func BenchmarkMetricsWrapper_LatencyObserve(b *testing.B) {
	wrapper := NewWrapper(NewWithRegistry(prometheus.NewRegistry()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wrapper.LatencyObserve(0.01)
	}
}
