// Package replay implements token-based replay: a fast, approximate
// conformance check that simulates firing a trace through the net, inserting
// tokens it has to invent and counting tokens left behind.
package replay

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/eventlog"
)

// Config controls a replay run.
type Config struct {
	// SilentLimit bounds the silent-transition closure searched before
	// declaring a labeled transition unreachable.
	SilentLimit int
	// Workers caps the number of cases replayed concurrently. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  *zap.Logger
}

// DefaultConfig returns the replay defaults.
func DefaultConfig() Config {
	return Config{
		SilentLimit: pathmine.SilentWalkLimit,
		Logger:      zap.NewNop(),
	}
}

// Result is the replay outcome for one case.
type Result struct {
	CaseID  string
	Fitness float64
	// Token accounting over the simulated run.
	Missing   int
	Remaining int
	Consumed  int
	Produced  int
	// Unmatched counts events whose activity has no transition in the net
	// at all; they are skipped rather than force-fired.
	Unmatched int
}

// Fits reports whether the trace replayed without inventing or abandoning
// tokens.
func (r Result) Fits() bool {
	return r.Missing == 0 && r.Remaining == 0 && r.Unmatched == 0
}

// Trace replays a single trace and computes its fitness.
func Trace(net *pathmine.Net, caseID string, trace []string, cfg Config) Result {
	if cfg.SilentLimit <= 0 {
		cfg.SilentLimit = pathmine.SilentWalkLimit
	}
	r := Result{CaseID: caseID, Produced: net.Initial.Total()}
	m := net.Initial.Copy()
	for _, activity := range trace {
		candidates := net.Labeled(activity)
		if len(candidates) == 0 {
			r.Unmatched++
			continue
		}
		m = fireActivity(net, m, candidates, &r, cfg)
	}

	// steer toward the final marking through silent routing before settling
	// the books
	if !m.Covers(net.Final) {
		if closed, ok := reachCovering(net, m, net.Final, cfg.SilentLimit, &r); ok {
			m = closed
		}
	}
	r.Consumed += net.Final.Total()
	for id, want := range net.Final {
		if m[id] < want {
			r.Missing += want - m[id]
			m[id] = want
		}
	}
	for id, have := range m {
		if have > net.Final[id] {
			r.Remaining += have - net.Final[id]
		}
	}
	r.Fitness = fitness(r)
	return r
}

// fireActivity fires one labeled transition for the activity, first searching
// the silent closure for a marking that enables one, and force-firing with
// invented tokens as a last resort.
func fireActivity(net *pathmine.Net, m pathmine.Marking, candidates []*pathmine.Transition, r *Result, cfg Config) pathmine.Marking {
	// directly enabled
	for _, t := range candidates {
		if net.Enabled(t, m) {
			return fire(net, t, m, r)
		}
	}
	// enabled after silent routing
	var (
		via    []*pathmine.Transition
		chosen *pathmine.Transition
	)
	net.SilentWalk(m, cfg.SilentLimit, func(cur pathmine.Marking, path []*pathmine.Transition) bool {
		for _, t := range candidates {
			if net.Enabled(t, cur) {
				via, chosen = path, t
				return false
			}
		}
		return true
	})
	if chosen != nil {
		cur := m
		for _, t := range via {
			cur = fire(net, t, cur, r)
		}
		return fire(net, chosen, cur, r)
	}
	// force-fire: invent the missing tokens and record the deficit
	t := candidates[0]
	forced := m.Copy()
	for _, arc := range net.Inputs(t) {
		if deficit := arc.Weight - forced[arc.Src.Identifier()]; deficit > 0 {
			r.Missing += deficit
			forced[arc.Src.Identifier()] += deficit
		}
	}
	return fire(net, t, forced, r)
}

// fire fires t, which must be enabled, and tallies the consumed and produced
// tokens. The walk above guarantees enablement; a NotEnabledError here would
// be a bug, so it is treated as one.
func fire(net *pathmine.Net, t *pathmine.Transition, m pathmine.Marking, r *Result) pathmine.Marking {
	next, err := net.Fire(t, m)
	if err != nil {
		panic(err)
	}
	for _, arc := range net.Inputs(t) {
		r.Consumed += arc.Weight
	}
	for _, arc := range net.Outputs(t) {
		r.Produced += arc.Weight
	}
	return next
}

// reachCovering searches the silent closure for a marking covering want.
func reachCovering(net *pathmine.Net, m, want pathmine.Marking, limit int, r *Result) (pathmine.Marking, bool) {
	var (
		via   []*pathmine.Transition
		found bool
	)
	net.SilentWalk(m, limit, func(cur pathmine.Marking, path []*pathmine.Transition) bool {
		if cur.Covers(want) {
			via, found = path, true
			return false
		}
		return true
	})
	if !found {
		return m, false
	}
	out := m
	for _, t := range via {
		out = fire(net, t, out, r)
	}
	return out, true
}

func fitness(r Result) float64 {
	if r.Consumed == 0 && r.Produced == 0 {
		return 1
	}
	missingTerm, remainingTerm := 1.0, 1.0
	if r.Consumed > 0 {
		missingTerm = 1 - float64(r.Missing)/float64(r.Consumed)
	}
	if r.Produced > 0 {
		remainingTerm = 1 - float64(r.Remaining)/float64(r.Produced)
	}
	f := 0.5*missingTerm + 0.5*remainingTerm
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Step fires one labeled transition for the activity from m, routing through
// the silent closure when needed, and returns the resulting marking. Unlike
// Trace it never force-fires: if no transition for the activity can be
// enabled, it reports failure. The precision evaluator walks trace prefixes
// with it.
func Step(net *pathmine.Net, m pathmine.Marking, activity string, limit int) (pathmine.Marking, bool) {
	if limit <= 0 {
		limit = pathmine.SilentWalkLimit
	}
	candidates := net.Labeled(activity)
	if len(candidates) == 0 {
		return m, false
	}
	var (
		via    []*pathmine.Transition
		chosen *pathmine.Transition
	)
	net.SilentWalk(m, limit, func(cur pathmine.Marking, path []*pathmine.Transition) bool {
		for _, t := range candidates {
			if net.Enabled(t, cur) {
				via, chosen = path, t
				return false
			}
		}
		return true
	})
	if chosen == nil {
		return m, false
	}
	out := m
	for _, t := range via {
		next, err := net.Fire(t, out)
		if err != nil {
			return m, false
		}
		out = next
	}
	next, err := net.Fire(chosen, out)
	if err != nil {
		return m, false
	}
	return next, true
}

// Run replays every case in the log. Cases are independent: each worker
// reads the immutable net and writes only its own result slot, so results
// are identical regardless of scheduling.
func Run(ctx context.Context, net *pathmine.Net, log *eventlog.Log, cfg Config) ([]Result, error) {
	if log == nil || len(log.Cases) == 0 {
		return nil, eventlog.ErrEmptyLog
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	workers := cfg.Workers
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
			results[i] = Trace(net, c.ID, c.Trace(), cfg)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	cfg.Logger.Debug("token replay complete", zap.Int("cases", len(results)))
	return results, nil
}
