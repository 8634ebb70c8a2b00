package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"osr-predict/internal/cfg"
	"osr-predict/internal/common"
	"osr-predict/internal/metrics"
	"osr-predict/internal/predict"
	"osr-predict/internal/stats"
	"osr-predict/internal/storage"
	"osr-predict/internal/svm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// outcome is what a run leaves behind for the run history.
type outcome struct {
	summary    predict.Summary
	plan       predict.Plan
	svmType    string
	kernelType string
	classes    int
}

// run is the single place that turns errors into diagnostics and an exit
// status.
func run(args []string, stdout, stderr io.Writer) int {
	settings, err := cfg.Load()
	if err != nil {
		logger := newLogger(stderr, common.DefaultLogFormat)
		logger.Error().Err(err).Msg("config load failed")
		return 1
	}
	logger := newLogger(stderr, settings.LogFormat)

	c, err := cfg.Parse(args, settings)
	if err != nil {
		logger.Error().Err(err).Msg("invalid arguments")
		fmt.Fprint(stdout, cfg.Usage)
		return 1
	}
	switch {
	case c.Quiet:
		logger = logger.Level(zerolog.ErrorLevel)
	case c.Verbose:
		logger = logger.Level(zerolog.DebugLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}

	registry := prometheus.NewRegistry()
	mw := metrics.NewWrapper(metrics.NewWithRegistry(registry))

	store := initializeStorage(settings, logger)
	if store != nil {
		defer store.Close()
	}

	started := time.Now()
	res, err := predictFile(c, mw, logger)
	mw.RunDurationSet(time.Since(started).Seconds())

	status := 0
	if err != nil {
		mw.ErrorsInc()
		logger.Error().Err(err).Msg("prediction failed")
		recordFailure(store, c, res, err, started, logger)
		status = 1
	} else {
		recordRun(store, c, res, started, logger)
	}

	if settings.MetricsFile != "" {
		if err := metrics.WriteTextfile(settings.MetricsFile, registry); err != nil {
			logger.Warn().Err(err).Msg("failed to write metrics")
		}
	}
	return status
}

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format == common.LogFormatJSON {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// predictFile opens the test file, loads and reconciles the model, and only
// then creates the output file, so an incompatible model leaves no output.
func predictFile(c cfg.RunConfig, mw *metrics.MetricsWrapper, logger zerolog.Logger) (outcome, error) {
	var res outcome

	in, err := os.Open(c.TestFile)
	if err != nil {
		return res, &common.FileOpenError{Kind: "input", Path: c.TestFile, Err: err}
	}
	defer in.Close()

	model, err := svm.Load(c.ModelFile, c.OpenSet)
	if err != nil {
		return res, err
	}
	defer model.Close()

	res.svmType = model.SVMType().String()
	res.kernelType = model.KernelType().String()
	res.classes = model.ClassCount()

	plan, err := predict.Reconcile(model, c, logger)
	if err != nil {
		return res, err
	}
	res.plan = plan

	runner, err := predict.NewRunner(model, plan, mw, logger)
	if err != nil {
		return res, err
	}

	out, err := os.Create(c.OutputFile)
	if err != nil {
		return res, &common.FileOpenError{Kind: "output", Path: c.OutputFile, Err: err}
	}

	res.summary, err = runner.Run(in, out)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close output file %s: %w", c.OutputFile, cerr)
	}
	return res, err
}

// initializeStorage opens the run history if DATA_PATH is configured. A
// history that cannot be opened is skipped with a warning.
func initializeStorage(settings cfg.Settings, logger zerolog.Logger) *storage.Store {
	if settings.DataPath == "" {
		return nil
	}
	store, err := storage.New(settings.DataPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", settings.DataPath).Msg("run history disabled")
		return nil
	}
	return store
}

func recordRun(store *storage.Store, c cfg.RunConfig, res outcome, started time.Time, logger zerolog.Logger) {
	if store == nil {
		return
	}
	agg := res.summary.Stats
	run := storage.RunRecord{
		Model:      c.ModelFile,
		TestFile:   c.TestFile,
		OutputFile: c.OutputFile,
		SVMType:    res.svmType,
		KernelType: res.kernelType,
		Classes:    res.classes,
		OpenSet:    res.plan.OpenSet,
		Records:    res.summary.Records,
		Correct:    agg.Correct,
		Unknown:    res.summary.Unknown,
		Started:    started,
		Duration:   res.summary.Duration,
	}
	if res.plan.OpenSet {
		run.Threshold = res.plan.Threshold
	}
	if res.summary.Kind == stats.KindRegression {
		run.MeanSquaredError = defined(agg.MeanSquaredError())
		run.SquaredCorrelation = defined(agg.SquaredCorrelation())
	} else {
		run.Accuracy = defined(agg.Accuracy())
	}

	if err := store.StoreRun(run); err != nil {
		logger.Warn().Err(err).Msg("failed to store run")
	}
}

func recordFailure(store *storage.Store, c cfg.RunConfig, res outcome, runErr error, started time.Time, logger zerolog.Logger) {
	if store == nil {
		return
	}
	failure := storage.FailureRecord{
		Model:     c.ModelFile,
		TestFile:  c.TestFile,
		Records:   res.summary.Records,
		Error:     runErr.Error(),
		Timestamp: started,
	}
	var formatErr *common.InputFormatError
	if errors.As(runErr, &formatErr) {
		failure.Line = formatErr.Line
	}

	if err := store.StoreFailure(failure); err != nil {
		logger.Warn().Err(err).Msg("failed to store failure")
	}
}

// defined returns nil for NaN so undefined statistics stay out of the JSON.
func defined(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
