// Package align computes minimum-cost alignments between traces and a Petri
// net by best-first search over their synchronous product. Every search
// carries a step and wall-clock budget; blowing the budget yields a TimedOut
// result, never a partial alignment.
package align

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/eventlog"
)

// ErrTimedOut reports a per-trace search that exceeded its budget. It is
// non-fatal: the trace is excluded from aggregates and counted.
var ErrTimedOut = errors.New("alignment search exceeded its budget")

// MoveKind distinguishes the three alignment move types.
type MoveKind int

const (
	// SyncMove advances the trace and fires a matching labeled transition.
	SyncMove MoveKind = iota
	// ModelMove fires a transition without consuming a log event.
	ModelMove
	// LogMove consumes a log event without firing anything.
	LogMove
)

func (k MoveKind) String() string {
	switch k {
	case SyncMove:
		return "sync"
	case ModelMove:
		return "model"
	case LogMove:
		return "log"
	}
	return "unknown"
}

// Move is one step of an alignment. Activity is set for sync and log moves;
// Transition for sync and model moves.
type Move struct {
	Kind       MoveKind
	Activity   string
	Transition *pathmine.Transition
	Cost       float64
}

// Result is the alignment outcome for one case.
type Result struct {
	CaseID   string
	Moves    []Move
	Cost     float64
	Fitness  float64
	TimedOut bool
	// Expanded counts search states popped before termination.
	Expanded int
}

// Config controls alignment searches.
type Config struct {
	// ModelMoveCost and LogMoveCost weight the two deviation moves. Silent
	// model moves are always free, synchronous moves are always free.
	ModelMoveCost float64
	LogMoveCost   float64
	// Timeout is the wall-clock budget per trace.
	Timeout time.Duration
	// MaxExpansions is the step budget per trace.
	MaxExpansions int
	// Workers caps concurrent case searches. Zero means GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// DefaultConfig returns the alignment defaults.
func DefaultConfig() Config {
	return Config{
		ModelMoveCost: 1,
		LogMoveCost:   1,
		Timeout:       10 * time.Second,
		MaxExpansions: 1 << 18,
		Logger:        zap.NewNop(),
	}
}

// Aligner holds the per-net precomputation shared by every trace search: the
// place order for marking keys, the marking-equation heuristic, and the cost
// of the cheapest model-only run used in the fitness denominator.
type Aligner struct {
	net       *pathmine.Net
	cfg       Config
	order     []string
	h         *heuristic
	emptyCost float64
}

// New prepares an aligner for the net. It fails if the net cannot complete a
// model-only run from its initial to its final marking within budget, since
// no alignment denominator exists then.
func New(net *pathmine.Net, cfg Config) (*Aligner, error) {
	if cfg.ModelMoveCost <= 0 {
		cfg.ModelMoveCost = 1
	}
	if cfg.LogMoveCost <= 0 {
		cfg.LogMoveCost = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.MaxExpansions <= 0 {
		cfg.MaxExpansions = DefaultConfig().MaxExpansions
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	a := &Aligner{
		net:   net,
		cfg:   cfg,
		order: net.PlaceOrder(),
		h:     newHeuristic(net, cfg.LogMoveCost),
	}
	empty := a.search(context.Background(), nil, time.Now().Add(cfg.Timeout))
	if empty.TimedOut {
		return nil, fmt.Errorf("model-only run from initial to final marking not found: %w", ErrTimedOut)
	}
	a.emptyCost = empty.Cost
	return a, nil
}

// WorstCost is the reference cost for a trace of the given length: aligning
// it entirely by log moves plus the cheapest model-only run.
func (a *Aligner) WorstCost(traceLen int) float64 {
	return float64(traceLen)*a.cfg.LogMoveCost + a.emptyCost
}

// Trace aligns one trace. A budget overrun returns a TimedOut result with no
// moves; the context cancels this trace only.
func (a *Aligner) Trace(ctx context.Context, caseID string, trace []string) Result {
	r := a.search(ctx, trace, time.Now().Add(a.cfg.Timeout))
	r.CaseID = caseID
	if r.TimedOut {
		return r
	}
	worst := a.WorstCost(len(trace))
	if worst <= 0 {
		r.Fitness = 1
	} else {
		r.Fitness = 1 - r.Cost/worst
		if r.Fitness < 0 {
			r.Fitness = 0
		}
	}
	return r
}

// Run aligns every case in the log. Cases run in parallel against the
// immutable net; a timeout aborts its own trace only and never the batch.
func (a *Aligner) Run(ctx context.Context, log *eventlog.Log) ([]Result, error) {
	if log == nil || len(log.Cases) == 0 {
		return nil, eventlog.ErrEmptyLog
	}
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(log.Cases))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := range log.Cases {
		i := i
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := &log.Cases[i]
			results[i] = a.Trace(ctx, c.ID, c.Trace())
			if results[i].TimedOut {
				a.cfg.Logger.Warn("alignment timed out", zap.String("case", c.ID))
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
