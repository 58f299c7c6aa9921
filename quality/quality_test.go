package quality_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/align"
	"github.com/jt05610/pathmine/eventlog"
	"github.com/jt05610/pathmine/quality"
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

// choice builds p0 -> {A|B} -> p1: two labeled transitions competing for the
// same token.
func choice(t *testing.T) *pathmine.Net {
	t.Helper()
	n := pathmine.NewNet("choice")
	p0 := n.AddPlace(&pathmine.Place{ID: "p0"})
	p1 := n.AddPlace(&pathmine.Place{ID: "p1"})
	a := n.AddTransition(&pathmine.Transition{ID: "ta", Label: "A"})
	b := n.AddTransition(&pathmine.Transition{ID: "tb", Label: "B"})
	for _, pair := range [][2]pathmine.Node{{p0, a}, {a, p1}, {p0, b}, {b, p1}} {
		if _, err := n.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	n.Initial = pathmine.NewMarking(p0)
	n.Final = pathmine.NewMarking(p1)
	return n
}

var base = time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)

func logOf(t *testing.T, traces ...[]string) *eventlog.Log {
	t.Helper()
	cases := make([]eventlog.Case, len(traces))
	for i, trace := range traces {
		c := eventlog.Case{ID: "c" + string(rune('1'+i))}
		for j, a := range trace {
			c.Events = append(c.Events, eventlog.Event{
				Activity: a,
				Time:     base.Add(time.Duration(j) * time.Hour),
			})
		}
		cases[i] = c
	}
	log, err := eventlog.New(cases)
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestPrecisionExactModel(t *testing.T) {
	net := chain(t)
	log := logOf(t, []string{"A", "B"}, []string{"A", "B"})
	if p := quality.Precision(net, log, 0); p != 1 {
		t.Errorf("precision = %v, want 1 for a model permitting exactly the log", p)
	}
}

func TestPrecisionPermissiveModel(t *testing.T) {
	// the model also allows B at the start, which the log never takes
	net := choice(t)
	log := logOf(t, []string{"A"}, []string{"A"})
	if p := quality.Precision(net, log, 0); !approx(p, 0.5) {
		t.Errorf("precision = %v, want 0.5", p)
	}
}

func TestGeneralization(t *testing.T) {
	net := chain(t)
	a, err := align.New(net, align.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var results []align.Result
	for i := 0; i < 2; i++ {
		results = append(results, a.Trace(context.Background(), "c", []string{"A", "B"}))
	}
	// each transition fired twice: confidence 1 - 1/sqrt(2)
	want := 1 - 1/math.Sqrt(2)
	if g := quality.Generalization(net, results); !approx(g, want) {
		t.Errorf("generalization = %v, want %v", g, want)
	}
}

func TestGeneralizationSkipsTimedOut(t *testing.T) {
	net := chain(t)
	results := []align.Result{{TimedOut: true}}
	if g := quality.Generalization(net, results); g != 0 {
		t.Errorf("generalization = %v, want 0 when no alignment completed", g)
	}
}

func TestSimplicity(t *testing.T) {
	if s := quality.Simplicity(chain(t)); !approx(s, 0.75) {
		t.Errorf("simplicity = %v, want 0.75", s)
	}
	if s := quality.Simplicity(pathmine.NewNet("empty")); s != 1 {
		t.Errorf("simplicity = %v, want 1 for a net without arcs", s)
	}
}

func TestEvaluate(t *testing.T) {
	net := chain(t)
	log := logOf(t, []string{"A", "B"}, []string{"A"})
	report, err := quality.Evaluate(context.Background(), net, log, quality.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if report.Log.Cases != 2 {
		t.Errorf("log summary cases = %d, want 2", report.Log.Cases)
	}
	if !approx(report.TokenReplay.Mean, 0.75) {
		t.Errorf("token replay mean = %v, want 0.75", report.TokenReplay.Mean)
	}
	if report.TokenReplay.Min != 0.5 || report.TokenReplay.Max != 1 {
		t.Errorf("token replay min/max = %v/%v, want 0.5/1", report.TokenReplay.Min, report.TokenReplay.Max)
	}
	if !approx(report.FittingPercent, 50) {
		t.Errorf("fitting percent = %v, want 50", report.FittingPercent)
	}
	if report.TimedOut != 0 {
		t.Errorf("timed out = %d, want 0", report.TimedOut)
	}
	if report.Precision != 1 {
		t.Errorf("precision = %v, want 1", report.Precision)
	}
	if len(report.Worst) != 2 {
		t.Fatalf("got %d worst traces, want 2", len(report.Worst))
	}
	if report.Worst[0].CaseID != "c2" {
		t.Errorf("worst trace = %s, want c2", report.Worst[0].CaseID)
	}
}

func TestEvaluateRejectsUnsoundNet(t *testing.T) {
	net := chain(t)
	net.Initial = pathmine.Marking{"nowhere": 1}
	log := logOf(t, []string{"A"})
	if _, err := quality.Evaluate(context.Background(), net, log, quality.DefaultConfig()); err == nil {
		t.Fatal("expected validation to reject an initial marking on an unknown place")
	}
}
