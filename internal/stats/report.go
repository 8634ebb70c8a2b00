package stats

import (
	"github.com/rs/zerolog"
)

// Kind selects which end-of-run summary is reported.
type Kind int

const (
	KindClassification Kind = iota
	KindRegression
	KindNone
)

// Reporter writes the end-of-run summary to the diagnostics logger.
type Reporter struct {
	log zerolog.Logger
}

// NewReporter creates a reporter writing to log.
func NewReporter(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

// Report logs the summary of a for the given kind of model. Regression runs
// report the mean squared error and squared correlation coefficient,
// classification runs the accuracy.
func (r *Reporter) Report(kind Kind, a *Aggregate) {
	switch kind {
	case KindRegression:
		r.log.Info().
			Float64("mse", a.MeanSquaredError()).
			Int("total", a.Total).
			Msgf("Mean squared error = %g (regression)", a.MeanSquaredError())
		r.log.Info().
			Float64("scc", a.SquaredCorrelation()).
			Msgf("Squared correlation coefficient = %g (regression)", a.SquaredCorrelation())
	case KindClassification:
		r.log.Info().
			Int("correct", a.Correct).
			Int("total", a.Total).
			Msgf("Accuracy = %g%% (%d/%d) (classification)", a.Accuracy()*100, a.Correct, a.Total)
	}
}
