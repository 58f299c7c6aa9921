package align_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/align"
)

// chain builds p0 -> A -> p1 -> B -> p2 with one initial token on p0 and the
// final marking on p2.
func chain(t *testing.T) *pathmine.Net {
	t.Helper()
	n := pathmine.NewNet("chain")
	p0 := n.AddPlace(&pathmine.Place{ID: "p0"})
	p1 := n.AddPlace(&pathmine.Place{ID: "p1"})
	p2 := n.AddPlace(&pathmine.Place{ID: "p2"})
	a := n.AddTransition(&pathmine.Transition{ID: "ta", Label: "A"})
	b := n.AddTransition(&pathmine.Transition{ID: "tb", Label: "B"})
	for _, pair := range [][2]pathmine.Node{{p0, a}, {a, p1}, {p1, b}, {b, p2}} {
		if _, err := n.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	n.Initial = pathmine.NewMarking(p0)
	n.Final = pathmine.NewMarking(p2)
	return n
}

func aligner(t *testing.T, net *pathmine.Net) *align.Aligner {
	t.Helper()
	a, err := align.New(net, align.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestPerfectTrace(t *testing.T) {
	a := aligner(t, chain(t))
	r := a.Trace(context.Background(), "c1", []string{"A", "B"})
	if r.TimedOut {
		t.Fatal("unexpected timeout")
	}
	if r.Cost != 0 {
		t.Fatalf("cost = %v, want 0", r.Cost)
	}
	if r.Fitness != 1 {
		t.Errorf("fitness = %v, want 1", r.Fitness)
	}
	if len(r.Moves) != 2 {
		t.Fatalf("got %d moves, want 2", len(r.Moves))
	}
	for _, m := range r.Moves {
		if m.Kind != align.SyncMove {
			t.Errorf("move %v should be synchronous", m)
		}
	}
}

func TestModelMove(t *testing.T) {
	// the trace stops after A, so B must fire as a model move
	a := aligner(t, chain(t))
	r := a.Trace(context.Background(), "c1", []string{"A"})
	if r.Cost != 1 {
		t.Fatalf("cost = %v, want 1", r.Cost)
	}
	// worst = one log move plus the model-only run of cost 2
	if !approx(r.Fitness, 1-1.0/3) {
		t.Errorf("fitness = %v, want 2/3", r.Fitness)
	}
	var models int
	for _, m := range r.Moves {
		if m.Kind == align.ModelMove {
			models++
			if m.Transition == nil || m.Transition.Label != "B" {
				t.Errorf("model move should fire B, got %v", m.Transition)
			}
		}
	}
	if models != 1 {
		t.Errorf("got %d model moves, want 1", models)
	}
}

func TestLogMove(t *testing.T) {
	a := aligner(t, chain(t))
	r := a.Trace(context.Background(), "c1", []string{"A", "X", "B"})
	if r.Cost != 1 {
		t.Fatalf("cost = %v, want 1", r.Cost)
	}
	if !approx(r.Fitness, 0.8) {
		t.Errorf("fitness = %v, want 0.8", r.Fitness)
	}
	var logs int
	for _, m := range r.Moves {
		if m.Kind == align.LogMove {
			logs++
			if m.Activity != "X" {
				t.Errorf("log move should carry X, got %q", m.Activity)
			}
		}
	}
	if logs != 1 {
		t.Errorf("got %d log moves, want 1", logs)
	}
}

func TestEmptyTrace(t *testing.T) {
	a := aligner(t, chain(t))
	r := a.Trace(context.Background(), "c1", nil)
	if r.Cost != 2 {
		t.Fatalf("cost = %v, want 2 (the model-only run)", r.Cost)
	}
}

// The alignment projects back onto the trace: log and sync moves, in order,
// reproduce it exactly.
func TestMovesProjectOntoTrace(t *testing.T) {
	a := aligner(t, chain(t))
	trace := []string{"X", "A", "B", "Y"}
	r := a.Trace(context.Background(), "c1", trace)
	var projected []string
	for _, m := range r.Moves {
		if m.Kind == align.SyncMove || m.Kind == align.LogMove {
			projected = append(projected, m.Activity)
		}
	}
	if len(projected) != len(trace) {
		t.Fatalf("projection has %d events, want %d", len(projected), len(trace))
	}
	for i := range trace {
		if projected[i] != trace[i] {
			t.Errorf("projection[%d] = %q, want %q", i, projected[i], trace[i])
		}
	}
}

func TestCostGrowsWithNoise(t *testing.T) {
	a := aligner(t, chain(t))
	trace := []string{"A", "B"}
	prev := a.Trace(context.Background(), "c1", trace).Cost
	for i := 0; i < 3; i++ {
		trace = append(trace, "X")
		cost := a.Trace(context.Background(), "c1", trace).Cost
		if cost < prev {
			t.Fatalf("appending an unknown activity lowered the cost: %v -> %v", prev, cost)
		}
		prev = cost
	}
}

func TestBudgetExceeded(t *testing.T) {
	cfg := align.DefaultConfig()
	cfg.MaxExpansions = 8
	a, err := align.New(chain(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	trace := make([]string, 30)
	for i := range trace {
		trace[i] = "X"
	}
	r := a.Trace(context.Background(), "c1", trace)
	if !r.TimedOut {
		t.Fatal("expected the search to blow its step budget")
	}
	if len(r.Moves) != 0 {
		t.Error("a timed-out result must not carry a partial alignment")
	}
}

func TestNewRejectsDeadNet(t *testing.T) {
	// final marking unreachable: no transitions at all
	n := pathmine.NewNet("dead")
	p0 := n.AddPlace(&pathmine.Place{ID: "p0"})
	p1 := n.AddPlace(&pathmine.Place{ID: "p1"})
	tr := n.AddTransition(&pathmine.Transition{ID: "ta", Label: "A"})
	if _, err := n.AddArc(p1, tr, 1); err != nil {
		t.Fatal(err)
	}
	n.Initial = pathmine.NewMarking(p0)
	n.Final = pathmine.NewMarking(p1)
	if _, err := align.New(n, align.DefaultConfig()); !errors.Is(err, align.ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut for an unreachable final marking, got %v", err)
	}
}

func TestWorstCost(t *testing.T) {
	a := aligner(t, chain(t))
	if got := a.WorstCost(3); got != 5 {
		t.Errorf("WorstCost(3) = %v, want 5", got)
	}
	if got := a.WorstCost(0); got != 2 {
		t.Errorf("WorstCost(0) = %v, want 2", got)
	}
}
