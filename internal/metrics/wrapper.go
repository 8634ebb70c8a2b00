package metrics

// MetricsWrapper adapts Metrics to the method set the prediction runner uses.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) PredictionsInc() {
	w.m.PredictionsTotal.Inc()
}

func (w *MetricsWrapper) CorrectInc() {
	w.m.CorrectTotal.Inc()
}

func (w *MetricsWrapper) UnknownInc() {
	w.m.UnknownTotal.Inc()
}

func (w *MetricsWrapper) InputErrorsInc() {
	w.m.InputErrors.Inc()
}

func (w *MetricsWrapper) ErrorsInc() {
	w.m.ErrorsTotal.Inc()
}

func (w *MetricsWrapper) LatencyObserve(v float64) {
	w.m.PredictionLatency.Observe(v)
}

func (w *MetricsWrapper) ScoreObserve(v float64) {
	w.m.PredictionScores.Observe(v)
}

func (w *MetricsWrapper) AccuracySet(v float64) {
	w.m.Accuracy.Set(v)
}

func (w *MetricsWrapper) RunDurationSet(v float64) {
	w.m.RunDuration.Set(v)
}

func (w *MetricsWrapper) ModelClassesSet(v float64) {
	w.m.ModelClasses.Set(v)
}
