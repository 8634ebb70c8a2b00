package predict

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"osr-predict/internal/common"
	"osr-predict/internal/output"
	"osr-predict/internal/record"
	"osr-predict/internal/stats"
)

// Summary describes a finished, or failed, run.
type Summary struct {
	Records  int // records evaluated and written
	Unknown  int // open-set records rejected as unknown
	Stats    stats.Aggregate
	Kind     stats.Kind
	Duration time.Duration
}

// Runner holds the state of one prediction run: the model, the reconciled
// plan, the parser and feature buffers, the statistics and the sinks for
// metrics and diagnostics.
type Runner struct {
	model   Model
	plan    Plan
	disc    discipline
	parser  *record.Parser
	metrics MetricsInterface
	log     zerolog.Logger
}

// NewRunner prepares a run of m under plan. metrics may be nil.
func NewRunner(m Model, plan Plan, metrics MetricsInterface, log zerolog.Logger) (*Runner, error) {
	d, err := newDiscipline(m, plan)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Runner{
		model:   m,
		plan:    plan,
		disc:    d,
		parser:  record.NewParser(),
		metrics: metrics,
		log:     log,
	}, nil
}

// Run evaluates every line of in and writes one output line per record to
// out. It stops at the first malformed line with a *common.InputFormatError;
// lines written before it stay in out. The returned Summary covers the
// records processed so far, also on error.
func (r *Runner) Run(in io.Reader, out io.Writer) (Summary, error) {
	start := time.Now()
	sum := Summary{Kind: r.disc.kind()}

	if r.plan.OpenSet {
		r.model.SetOpenSetThreshold(r.plan.Threshold)
	}
	r.metrics.ModelClassesSet(float64(r.model.ClassCount()))

	r.log.Debug().
		Str("discipline", r.disc.name()).
		Bool("open_set", r.plan.OpenSet).
		Float64("threshold", r.plan.Threshold).
		Bool("probability", r.plan.Probability).
		Msg("Starting prediction")

	f := output.New(out, r.model.Labels(), r.plan.Output)
	err := r.loop(record.NewReader(in), f, &sum)
	if ferr := f.Flush(); ferr != nil && err == nil {
		err = fmt.Errorf("write output: %w", ferr)
	}
	sum.Duration = time.Since(start)
	if err != nil {
		return sum, err
	}

	stats.NewReporter(r.log).Report(sum.Kind, &sum.Stats)
	if sum.Kind == stats.KindClassification && sum.Stats.Total > 0 {
		r.metrics.AccuracySet(sum.Stats.Accuracy())
	}
	return sum, nil
}

func (r *Runner) loop(lines *record.Reader, f *output.Formatter, sum *Summary) error {
	if err := f.WriteHeader(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	for lineNumber := 1; ; lineNumber++ {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read test file: %w", err)
		}

		rec, err := r.parser.ParseLine(line, lineNumber)
		if err != nil {
			var formatErr *common.InputFormatError
			if errors.As(err, &formatErr) {
				r.metrics.InputErrorsInc()
			}
			return err
		}

		began := time.Now()
		res := r.disc.evaluate(r.model, rec.Features)
		r.metrics.LatencyObserve(time.Since(began).Seconds())

		if err := f.Write(res.Label, res.Probabilities, res.Decision); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		sum.Stats.Add(res.Label, rec.Label)
		sum.Records++
		r.metrics.PredictionsInc()
		if res.Label == rec.Label {
			r.metrics.CorrectInc()
		}
		if r.plan.OpenSet && res.Unknown() {
			sum.Unknown++
			r.metrics.UnknownInc()
		}
		if res.HasScore {
			r.metrics.ScoreObserve(res.Score)
		}

		r.log.Debug().
			Int("line", lineNumber).
			Float64("target", rec.Label).
			Float64("predicted", res.Label).
			Msg("Prediction")
	}
}
