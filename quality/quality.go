// Package quality derives the model quality metrics (precision,
// generalization, simplicity) and assembles the per-run diagnostics report
// from the net, the log, and the conformance results.
package quality

import (
	"math"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/align"
	"github.com/jt05610/pathmine/eventlog"
	"github.com/jt05610/pathmine/replay"
)

// Precision measures how much behavior the net permits beyond what the log
// shows. Every trace prefix that replays cleanly contributes one visited
// state; at each state the labels the net could continue with are compared
// against the continuations the log actually takes from that prefix. The
// score is the occurrence-weighted fraction of permitted continuations that
// are observed.
func Precision(net *pathmine.Net, log *eventlog.Log, silentLimit int) float64 {
	type state struct {
		marking pathmine.Marking
		ok      bool
	}
	const sep = "\x00"
	markings := map[string]state{"": {marking: net.Initial, ok: true}}
	count := map[string]int{}
	observed := map[string]map[string]bool{}

	for i := range log.Cases {
		trace := log.Cases[i].Trace()
		key := ""
		for _, activity := range trace {
			cur, seen := markings[key]
			if !seen {
				break
			}
			if cur.ok {
				count[key]++
				if observed[key] == nil {
					observed[key] = map[string]bool{}
				}
				observed[key][activity] = true
			}
			nextKey := key + sep + activity
			if _, done := markings[nextKey]; !done {
				if !cur.ok {
					markings[nextKey] = state{}
				} else if m, ok := replay.Step(net, cur.marking, activity, silentLimit); ok {
					markings[nextKey] = state{marking: m, ok: true}
				} else {
					markings[nextKey] = state{}
				}
			}
			key = nextKey
		}
	}

	num, den := 0.0, 0.0
	for key, n := range count {
		st := markings[key]
		if !st.ok {
			continue
		}
		allowed := net.EnabledLabels(st.marking, silentLimit)
		if len(allowed) == 0 {
			continue
		}
		hits := 0
		for _, label := range allowed {
			if observed[key][label] {
				hits++
			}
		}
		den += float64(n * len(allowed))
		num += float64(n * hits)
	}
	if den == 0 {
		return 1
	}
	return num / den
}

// Generalization rewards nets whose transitions are each exercised by many
// traces. A transition fired n times has confidence 1 - 1/sqrt(n); one never
// fired has confidence 0. The score is the mean confidence over all
// transitions, taken from the firing frequencies of the computed alignments.
func Generalization(net *pathmine.Net, results []align.Result) float64 {
	if len(net.Transitions) == 0 {
		return 1
	}
	firings := map[string]int{}
	for _, r := range results {
		if r.TimedOut {
			continue
		}
		for _, mv := range r.Moves {
			if mv.Transition != nil {
				firings[mv.Transition.ID]++
			}
		}
	}
	total := 0.0
	for _, t := range net.Transitions {
		if n := firings[t.ID]; n > 0 {
			total += 1 - 1/math.Sqrt(float64(n))
		}
	}
	return total / float64(len(net.Transitions))
}

// Simplicity is a normalized inverse of net size: nets with few arcs
// relative to their places score higher. Degenerate nets without arcs are
// defined as maximally simple.
func Simplicity(net *pathmine.Net) float64 {
	arcs := len(net.Arcs)
	if arcs == 0 {
		return 1
	}
	s := 1 - float64(arcs-len(net.Places))/float64(arcs)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
