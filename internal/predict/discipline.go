package predict

import (
	"fmt"

	"osr-predict/internal/stats"
	"osr-predict/internal/svm"
)

// discipline is the evaluation strategy for one family of model types. The
// set of implementations is closed.
type discipline interface {
	evaluate(m Model, x []svm.Node) Result
	kind() stats.Kind
	name() string
}

// classification evaluates C-SVC and nu-SVC models, with or without class
// probabilities.
type classification struct {
	probability bool
	probs       []float64
}

func (d *classification) evaluate(m Model, x []svm.Node) Result {
	if !d.probability {
		return Result{Label: m.Predict(x)}
	}
	label := m.PredictProbability(x, d.probs)
	r := Result{Label: label, Probabilities: d.probs}
	if best, ok := maxOf(d.probs); ok {
		r.Score, r.HasScore = best, true
	}
	return r
}

func (d *classification) kind() stats.Kind { return stats.KindClassification }
func (d *classification) name() string     { return "classification" }

// regression evaluates epsilon-SVR and nu-SVR models.
type regression struct{}

func (regression) evaluate(m Model, x []svm.Node) Result {
	return Result{Label: m.Predict(x)}
}

func (regression) kind() stats.Kind { return stats.KindRegression }
func (regression) name() string     { return "regression" }

// oneClass evaluates one-class models.
type oneClass struct{}

func (oneClass) evaluate(m Model, x []svm.Node) Result {
	return Result{Label: m.Predict(x)}
}

func (oneClass) kind() stats.Kind { return stats.KindNone }
func (oneClass) name() string     { return "one-class" }

// openSet evaluates every open-set variant, and ordinary models forced into
// open-set mode, with the threshold already set on the model.
type openSet struct {
	dec []float64
}

func (d *openSet) evaluate(m Model, x []svm.Node) Result {
	label, prob := m.PredictOpenSet(x, d.dec)
	return Result{Label: label, Decision: d.dec, Score: prob, HasScore: true}
}

func (d *openSet) kind() stats.Kind { return stats.KindClassification }
func (d *openSet) name() string     { return "open-set" }

// newDiscipline picks the discipline for the model type and the reconciled
// plan.
func newDiscipline(m Model, plan Plan) (discipline, error) {
	if plan.OpenSet {
		return &openSet{dec: make([]float64, m.DecisionSize())}, nil
	}

	switch t := m.SVMType(); t {
	case svm.CSVC, svm.NuSVC:
		d := &classification{probability: plan.Probability}
		if plan.Probability {
			d.probs = make([]float64, m.ClassCount())
		}
		return d, nil
	case svm.EpsilonSVR, svm.NuSVR:
		return regression{}, nil
	case svm.OneClass:
		return oneClass{}, nil
	case svm.OpenSetOC, svm.OpenSetPair, svm.OpenSetBin, svm.OneVsRestPISVM:
		return &openSet{dec: make([]float64, m.DecisionSize())}, nil
	default:
		return nil, fmt.Errorf("unsupported svm type %s", t)
	}
}

func maxOf(v []float64) (float64, bool) {
	if len(v) == 0 {
		return 0, false
	}
	best := v[0]
	for _, x := range v[1:] {
		if x > best {
			best = x
		}
	}
	return best, true
}
