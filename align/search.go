package align

import (
	"container/heap"
	"context"
	"strconv"
	"time"

	"github.com/jt05610/pathmine"
)

// node is a state of the synchronous product: a trace position and a
// marking, plus the path bookkeeping needed to rebuild the alignment.
type node struct {
	pos     int
	marking pathmine.Marking
	g       float64 // cost from the start state
	f       float64 // g plus the admissible remaining-cost bound
	parent  *node
	move    *Move
	index   int
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	// prefer deeper trace progress on ties for stable, shorter searches
	return o[i].pos > o[j].pos
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

func stateKey(pos int, key string) string {
	return strconv.Itoa(pos) + "|" + key
}

// search runs best-first search over (trace position, marking) states.
// Equivalent states reached along different paths collapse through the
// marking-vector key, never through object identity.
func (a *Aligner) search(ctx context.Context, trace []string, deadline time.Time) Result {
	start := &node{marking: a.net.Initial}
	if bound, feasible := a.h.estimate(start.marking, trace); feasible {
		start.f = bound
	}
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, start)
	best := map[string]float64{stateKey(0, start.marking.Key(a.order)): 0}
	closed := map[string]bool{}

	var r Result
	for open.Len() > 0 {
		if r.Expanded >= a.cfg.MaxExpansions || time.Now().After(deadline) || ctx.Err() != nil {
			r.TimedOut = true
			return r
		}
		cur := heap.Pop(open).(*node)
		key := stateKey(cur.pos, cur.marking.Key(a.order))
		if closed[key] {
			continue
		}
		closed[key] = true
		r.Expanded++

		if cur.pos == len(trace) && cur.marking.Equals(a.net.Final) {
			r.Cost = cur.g
			r.Moves = rebuild(cur)
			return r
		}

		for _, succ := range a.successors(cur, trace) {
			skey := stateKey(succ.pos, succ.marking.Key(a.order))
			if closed[skey] {
				continue
			}
			if prev, seen := best[skey]; seen && prev <= succ.g {
				continue
			}
			bound, feasible := a.h.estimate(succ.marking, trace[succ.pos:])
			if !feasible {
				continue
			}
			succ.f = succ.g + bound
			best[skey] = succ.g
			heap.Push(open, succ)
		}
	}
	// open set exhausted without reaching the goal: the final marking is
	// unreachable under any move combination, which validation should have
	// caught; surface it the same way as a blown budget
	r.TimedOut = true
	return r
}

// successors expands the three move types from a state.
func (a *Aligner) successors(cur *node, trace []string) []*node {
	var out []*node
	if cur.pos < len(trace) {
		activity := trace[cur.pos]
		// synchronous moves
		for _, t := range a.net.Labeled(activity) {
			if !a.net.Enabled(t, cur.marking) {
				continue
			}
			next, err := a.net.Fire(t, cur.marking)
			if err != nil {
				continue
			}
			out = append(out, &node{
				pos:     cur.pos + 1,
				marking: next,
				g:       cur.g,
				parent:  cur,
				move:    &Move{Kind: SyncMove, Activity: activity, Transition: t},
			})
		}
		// log move
		out = append(out, &node{
			pos:     cur.pos + 1,
			marking: cur.marking,
			g:       cur.g + a.cfg.LogMoveCost,
			parent:  cur,
			move:    &Move{Kind: LogMove, Activity: activity, Cost: a.cfg.LogMoveCost},
		})
	}
	// model moves
	for _, t := range a.net.Transitions {
		if !a.net.Enabled(t, cur.marking) {
			continue
		}
		next, err := a.net.Fire(t, cur.marking)
		if err != nil {
			continue
		}
		cost := a.cfg.ModelMoveCost
		if t.Silent() {
			cost = 0
		}
		out = append(out, &node{
			pos:     cur.pos,
			marking: next,
			g:       cur.g + cost,
			parent:  cur,
			move:    &Move{Kind: ModelMove, Transition: t, Cost: cost},
		})
	}
	return out
}

func rebuild(goal *node) []Move {
	depth := 0
	for n := goal; n.parent != nil; n = n.parent {
		depth++
	}
	moves := make([]Move, depth)
	for n := goal; n.parent != nil; n = n.parent {
		depth--
		moves[depth] = *n.move
	}
	return moves
}
