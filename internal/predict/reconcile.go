package predict

import (
	"github.com/rs/zerolog"

	"osr-predict/internal/cfg"
	"osr-predict/internal/common"
	"osr-predict/internal/output"
	"osr-predict/internal/stats"
	"osr-predict/internal/svm"
)

// Plan is the run configuration reconciled with the capabilities of the
// loaded model.
type Plan struct {
	OpenSet     bool
	Probability bool
	Threshold   float64
	Output      output.Mode
	Kind        stats.Kind
}

// Reconcile resolves what the run will actually do with model m. Requesting
// probability output from a model without probability information is a
// *common.ModelIncompatibilityError; the request is ignored in open-set
// mode. Score, vote and total outputs need open-set mode and at least two
// classes and are ignored with a warning otherwise.
func Reconcile(m Model, c cfg.RunConfig, log zerolog.Logger) (Plan, error) {
	t := m.SVMType()
	plan := Plan{
		OpenSet:   t.IsOpenSet() || c.OpenSet,
		Threshold: c.MinProbability,
		Kind:      stats.KindClassification,
	}

	log.Info().
		Str("svm_type", t.String()).
		Str("kernel_type", m.KernelType().String()).
		Int("classes", m.ClassCount()).
		Msgf("SVM Type %s, Kernel Type %s, Num Classes %d", t, m.KernelType(), m.ClassCount())

	switch {
	case t.IsRegression():
		plan.Kind = stats.KindRegression
	case t == svm.OneClass:
		plan.Kind = stats.KindNone
	}

	if plan.OpenSet && (t.IsRegression() || t == svm.OneClass) {
		log.Warn().Str("svm_type", t.String()).Msg("open-set mode needs a classification model, ignored")
		plan.OpenSet = false
	}

	switch {
	case c.Probability && plan.OpenSet:
		log.Debug().Msg("probability estimates are not available in open-set mode, ignored")
	case c.Probability && !m.SupportsProbability():
		return Plan{}, &common.ModelIncompatibilityError{Msg: common.ErrMsgNoProbabilitySupport}
	case c.Probability && t.IsRegression():
		sigma, err := m.SVRProbability()
		if err != nil {
			return Plan{}, &common.ModelIncompatibilityError{Msg: common.ErrMsgNoProbabilitySupport}
		}
		log.Info().
			Float64("sigma", sigma).
			Msgf("Prob. model for test data: target value = predicted value + z, z: Laplace distribution e^(-|z|/sigma)/(2sigma), sigma=%g", sigma)
	case c.Probability:
		plan.Probability = true
	case m.SupportsProbability() && !plan.OpenSet:
		log.Info().Msg("Model supports probability estimates, but disabled in prediction.")
	}

	if c.Pairwise() {
		switch {
		case !plan.OpenSet:
			log.Warn().Msg("score, vote and total output needs open-set mode, ignored")
		case len(m.Labels()) < 2:
			log.Warn().Int("classes", len(m.Labels())).Msg("score, vote and total output needs at least two classes, ignored")
		default:
			plan.Output = output.Mode{Scores: c.Scores, Votes: c.Votes, Totals: c.Totals}
		}
	}
	plan.Output.Probability = plan.Probability

	return plan, nil
}
