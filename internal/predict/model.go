// Package predict runs a batch of test records through a loaded model. It
// reconciles the command line with what the model supports, picks the
// evaluation discipline for the model type and drives the read, evaluate,
// write and aggregate loop.
package predict

import "osr-predict/internal/svm"

// Model is the part of a loaded SVM model the runner depends on. It is
// implemented by *svm.Model.
type Model interface {
	SVMType() svm.Type
	KernelType() svm.KernelType
	ClassCount() int
	Labels() []int
	SupportsProbability() bool
	SVRProbability() (float64, error)
	SetOpenSetThreshold(v float64)
	DecisionSize() int

	Predict(x []svm.Node) float64
	PredictProbability(x []svm.Node, probs []float64) float64
	PredictOpenSet(x []svm.Node, dec []float64) (float64, float64)
}

// MetricsInterface defines the metrics methods needed by the runner.
type MetricsInterface interface {
	PredictionsInc()
	CorrectInc()
	UnknownInc()
	InputErrorsInc()
	LatencyObserve(float64)
	ScoreObserve(float64)
	AccuracySet(float64)
	ModelClassesSet(float64)
}

// Result is the outcome of evaluating one record. Probabilities and Decision
// are owned by the discipline and overwritten by the next evaluation.
type Result struct {
	Label         float64
	Probabilities []float64 // per class in Labels order, probability mode only
	Decision      []float64 // pairwise decision values, open-set mode only
	Score         float64   // probability of the predicted class, when known
	HasScore      bool
}

// Unknown reports whether an open-set evaluation rejected every class.
func (r Result) Unknown() bool {
	return r.Label == svm.UnknownLabel
}

type nopMetrics struct{}

func (nopMetrics) PredictionsInc()         {}
func (nopMetrics) CorrectInc()             {}
func (nopMetrics) UnknownInc()             {}
func (nopMetrics) InputErrorsInc()         {}
func (nopMetrics) LatencyObserve(float64)  {}
func (nopMetrics) ScoreObserve(float64)    {}
func (nopMetrics) AccuracySet(float64)     {}
func (nopMetrics) ModelClassesSet(float64) {}
