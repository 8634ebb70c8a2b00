package cfg

import (
	"flag"
	"fmt"
	"io"

	"osr-predict/internal/common"
)

// Usage is the help text printed on a usage error.
const Usage = `Usage: svm-predict [options] test_file model_file output_file
options:
-b probability_estimates: whether to predict probability estimates, 0 or 1 (default 0); for one-class SVM only 0 is supported
-q : quiet mode (no outputs)
-o : this is an open set problem. this will look for model files with names of the form <model_file>.<class>
-P min_probability: open-set minimum probability a class needs to be accepted (default 0.001)
-V : for more verbose output
-s : output scores in bin format (1-2, 1-3, 1-4, 2-3) to output_file (cannot be combined with -v or -t)
-t : output totaled scores 1-2+1-3+1-4=1 etc to output_file (cannot be combined with -s or -v)
-v : output votes to output_file (cannot be combined with -s or -t)
-a : output scores, votes and totals to output_file
`

// RunConfig is the resolved command line of one run. It is not modified
// after Parse returns.
type RunConfig struct {
	Probability    bool
	Quiet          bool
	OpenSet        bool
	Verbose        bool
	Scores         bool
	Votes          bool
	Totals         bool
	MinProbability float64

	TestFile   string
	ModelFile  string
	OutputFile string
}

// Pairwise reports whether any of the score, vote or total outputs is on.
func (c RunConfig) Pairwise() bool {
	return c.Scores || c.Votes || c.Totals
}

// Parse resolves args (without the program name) into a RunConfig. Options
// must precede the three positional paths. settings supplies the default
// open-set threshold. All failures are *common.UsageError.
func Parse(args []string, settings Settings) (RunConfig, error) {
	fs := flag.NewFlagSet("svm-predict", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		prob    = fs.Int("b", 0, "predict probability estimates, 0 or 1")
		quiet   = fs.Bool("q", false, "quiet mode")
		openSet = fs.Bool("o", false, "open set problem")
		minProb = fs.Float64("P", settings.MinProbability, "open-set minimum probability")
		verbose = fs.Bool("V", false, "verbose output")
		scores  = fs.Bool("s", false, "output pairwise scores")
		totals  = fs.Bool("t", false, "output total scores")
		votes   = fs.Bool("v", false, "output votes")
		all     = fs.Bool("a", false, "output scores, votes and totals")
	)

	if err := fs.Parse(args); err != nil {
		return RunConfig{}, &common.UsageError{Msg: err.Error()}
	}

	if *prob != 0 && *prob != 1 {
		return RunConfig{}, &common.UsageError{Msg: fmt.Sprintf("-b must be 0 or 1, got %d", *prob)}
	}
	if !(*minProb >= common.MinOpenSetProbability && *minProb <= common.MaxOpenSetProbability) {
		return RunConfig{}, &common.UsageError{Msg: fmt.Sprintf("-P must be between 0 and 1, got %g", *minProb)}
	}

	exclusive := 0
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s", "t", "v":
			exclusive++
		}
	})
	if exclusive > 1 && !*all {
		return RunConfig{}, &common.UsageError{Msg: common.ErrMsgExclusiveOutputModes}
	}

	if fs.NArg() != 3 {
		return RunConfig{}, &common.UsageError{Msg: fmt.Sprintf("expected test_file model_file output_file, got %d arguments", fs.NArg())}
	}

	return RunConfig{
		Probability:    *prob == 1,
		Quiet:          *quiet,
		OpenSet:        *openSet,
		Verbose:        *verbose,
		Scores:         *scores || *all,
		Votes:          *votes || *all,
		Totals:         *totals || *all,
		MinProbability: *minProb,
		TestFile:       fs.Arg(0),
		ModelFile:      fs.Arg(1),
		OutputFile:     fs.Arg(2),
	}, nil
}
