// Package stats accumulates prediction quality statistics over a run: the
// number of exact hits, the squared error and the sums needed for the squared
// Pearson correlation between predicted and target values.
package stats

import "math"

// Aggregate is a running summary of (predicted, target) pairs. The zero value
// is ready to use.
type Aggregate struct {
	Correct int
	Total   int

	SumSquaredError float64
	SumP            float64
	SumT            float64
	SumPP           float64
	SumTT           float64
	SumPT           float64
}

// Add records one prediction against its target.
func (a *Aggregate) Add(predicted, target float64) {
	if predicted == target {
		a.Correct++
	}
	d := predicted - target
	a.SumSquaredError += d * d
	a.SumP += predicted
	a.SumT += target
	a.SumPP += predicted * predicted
	a.SumTT += target * target
	a.SumPT += predicted * target
	a.Total++
}

// Accuracy returns the fraction of exact hits, or NaN before any record.
func (a *Aggregate) Accuracy() float64 {
	if a.Total == 0 {
		return math.NaN()
	}
	return float64(a.Correct) / float64(a.Total)
}

// MeanSquaredError returns Σ(p-t)²/n, or NaN before any record.
func (a *Aggregate) MeanSquaredError() float64 {
	if a.Total == 0 {
		return math.NaN()
	}
	return a.SumSquaredError / float64(a.Total)
}

// SquaredCorrelation returns the squared Pearson correlation coefficient
//
//	(n·Σpt − Σp·Σt)² / ((n·Σpp − Σp²)·(n·Σtt − Σt²))
//
// It is NaN when either factor of the denominator is zero.
func (a *Aggregate) SquaredCorrelation() float64 {
	n := float64(a.Total)
	num := n*a.SumPT - a.SumP*a.SumT
	dp := n*a.SumPP - a.SumP*a.SumP
	dt := n*a.SumTT - a.SumT*a.SumT
	if dp == 0 || dt == 0 {
		return math.NaN()
	}
	return num * num / (dp * dt)
}
