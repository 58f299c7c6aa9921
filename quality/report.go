package quality

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/align"
	"github.com/jt05610/pathmine/eventlog"
	"github.com/jt05610/pathmine/replay"
)

// Config controls a full evaluation run.
type Config struct {
	Replay replay.Config
	Align  align.Config
	// Worst is how many of the worst-fitting traces to list. Zero means 10.
	Worst  int
	Logger *zap.Logger
}

// DefaultConfig returns the evaluation defaults.
func DefaultConfig() Config {
	return Config{
		Replay: replay.DefaultConfig(),
		Align:  align.DefaultConfig(),
		Worst:  10,
		Logger: zap.NewNop(),
	}
}

// Score aggregates a fitness metric over the traces it was defined for.
type Score struct {
	Mean  float64 `yaml:"mean"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Count int     `yaml:"count"`
}

func score(values []float64) Score {
	s := Score{Count: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Min, s.Max = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))
	return s
}

// WorstTrace identifies a poorly fitting case for the report.
type WorstTrace struct {
	CaseID           string  `yaml:"case"`
	TokenFitness     float64 `yaml:"token_fitness"`
	AlignmentFitness float64 `yaml:"alignment_fitness"`
	AlignmentCost    float64 `yaml:"alignment_cost"`
	TimedOut         bool    `yaml:"timed_out,omitempty"`
}

// Report is the per-run diagnostics handed back to the caller. Every
// aggregate comes with its denominator: skipped cases and timed-out traces
// are enumerated, never silently folded in.
type Report struct {
	Log            eventlog.Stats    `yaml:"log"`
	TokenReplay    Score             `yaml:"token_replay"`
	Alignment      Score             `yaml:"alignment"`
	FittingPercent float64           `yaml:"fitting_percent"`
	TimedOut       int               `yaml:"timed_out"`
	Precision      float64           `yaml:"precision"`
	Generalization float64           `yaml:"generalization"`
	Simplicity     float64           `yaml:"simplicity"`
	Worst          []WorstTrace      `yaml:"worst_traces,omitempty"`
	Skipped        []eventlog.Dropped `yaml:"skipped_cases,omitempty"`
	Warnings       []string          `yaml:"warnings,omitempty"`
}

// Evaluate runs both conformance checks and the quality metrics for the net
// against the log. The net is validated first: an unsound net is never
// handed to replay or alignment.
func Evaluate(ctx context.Context, net *pathmine.Net, log *eventlog.Log, cfg Config) (*Report, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Worst <= 0 {
		cfg.Worst = 10
	}
	warnings, err := net.Validate()
	if err != nil {
		return nil, err
	}

	replays, err := replay.Run(ctx, net, log, cfg.Replay)
	if err != nil {
		return nil, err
	}
	aligner, err := align.New(net, cfg.Align)
	if err != nil {
		return nil, err
	}
	alignments, err := aligner.Run(ctx, log)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Log:            log.Summary(),
		Precision:      Precision(net, log, cfg.Replay.SilentLimit),
		Generalization: Generalization(net, alignments),
		Simplicity:     Simplicity(net),
		Skipped:        log.Skipped,
		Warnings:       warnings,
	}

	tokenFitness := make([]float64, 0, len(replays))
	for _, r := range replays {
		tokenFitness = append(tokenFitness, r.Fitness)
	}
	report.TokenReplay = score(tokenFitness)

	var alignFitness []float64
	fitting := 0
	for _, r := range alignments {
		if r.TimedOut {
			report.TimedOut++
			continue
		}
		alignFitness = append(alignFitness, r.Fitness)
		if r.Cost == 0 {
			fitting++
		}
	}
	report.Alignment = score(alignFitness)
	if n := len(alignFitness); n > 0 {
		report.FittingPercent = 100 * float64(fitting) / float64(n)
	}

	report.Worst = worst(replays, alignments, cfg.Worst)
	cfg.Logger.Info("evaluation complete",
		zap.Float64("token_fitness", report.TokenReplay.Mean),
		zap.Float64("alignment_fitness", report.Alignment.Mean),
		zap.Float64("precision", report.Precision),
		zap.Float64("generalization", report.Generalization),
		zap.Float64("simplicity", report.Simplicity),
		zap.Int("timed_out", report.TimedOut),
	)
	return report, nil
}

// worst ranks cases by their alignment fitness, falling back to token
// fitness for timed-out searches, and keeps the n poorest performers.
func worst(replays []replay.Result, alignments []align.Result, n int) []WorstTrace {
	traces := make([]WorstTrace, 0, len(replays))
	for i, r := range replays {
		w := WorstTrace{CaseID: r.CaseID, TokenFitness: r.Fitness}
		if i < len(alignments) {
			w.AlignmentFitness = alignments[i].Fitness
			w.AlignmentCost = alignments[i].Cost
			w.TimedOut = alignments[i].TimedOut
		}
		traces = append(traces, w)
	}
	sort.SliceStable(traces, func(i, j int) bool {
		a, b := rank(traces[i]), rank(traces[j])
		if a != b {
			return a < b
		}
		return traces[i].CaseID < traces[j].CaseID
	})
	if len(traces) > n {
		traces = traces[:n]
	}
	return traces
}

func rank(w WorstTrace) float64 {
	if w.TimedOut {
		return w.TokenFitness
	}
	return w.AlignmentFitness
}
