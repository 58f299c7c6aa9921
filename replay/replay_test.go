package replay_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/eventlog"
	"github.com/jt05610/pathmine/replay"
)

// chain builds p0 -> A -> p1 -> B -> p2 with one initial token on p0 and the
// final marking on p2.
func chain(t *testing.T) *pathmine.Net {
	t.Helper()
	n := pathmine.NewNet("chain")
	p0 := &pathmine.Place{ID: "p0", Name: "p0"}
	p1 := &pathmine.Place{ID: "p1", Name: "p1"}
	p2 := &pathmine.Place{ID: "p2", Name: "p2"}
	ta := &pathmine.Transition{ID: "ta", Label: "A"}
	tb := &pathmine.Transition{ID: "tb", Label: "B"}
	for _, p := range []*pathmine.Place{p0, p1, p2} {
		n.AddPlace(p)
	}
	n.AddTransition(ta)
	n.AddTransition(tb)
	for _, pair := range [][2]pathmine.Node{{p0, ta}, {ta, p1}, {p1, tb}, {tb, p2}} {
		if _, err := n.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	n.Initial = pathmine.NewMarking(p0)
	n.Final = pathmine.NewMarking(p2)
	return n
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestTraceFits(t *testing.T) {
	r := replay.Trace(chain(t), "c1", []string{"A", "B"}, replay.DefaultConfig())
	if !r.Fits() {
		t.Fatalf("expected clean replay, got %+v", r)
	}
	if r.Fitness != 1 {
		t.Errorf("fitness = %v, want 1", r.Fitness)
	}
	if r.Consumed != 3 || r.Produced != 3 {
		t.Errorf("token accounting = consumed %d produced %d, want 3/3", r.Consumed, r.Produced)
	}
}

func TestTraceStopsEarly(t *testing.T) {
	// one token abandoned on p1, one invented for the final marking
	r := replay.Trace(chain(t), "c1", []string{"A"}, replay.DefaultConfig())
	if r.Missing != 1 || r.Remaining != 1 {
		t.Fatalf("missing %d remaining %d, want 1/1", r.Missing, r.Remaining)
	}
	if !approx(r.Fitness, 0.5) {
		t.Errorf("fitness = %v, want 0.5", r.Fitness)
	}
	if r.Fits() {
		t.Error("Fits() should be false with invented tokens")
	}
}

func TestTraceForceFires(t *testing.T) {
	// B is not enabled at the initial marking, so its input token is invented
	r := replay.Trace(chain(t), "c1", []string{"B"}, replay.DefaultConfig())
	if r.Missing != 1 || r.Remaining != 1 {
		t.Fatalf("missing %d remaining %d, want 1/1", r.Missing, r.Remaining)
	}
	if !approx(r.Fitness, 0.5) {
		t.Errorf("fitness = %v, want 0.5", r.Fitness)
	}
}

func TestTraceUnmatched(t *testing.T) {
	r := replay.Trace(chain(t), "c1", []string{"A", "X", "B"}, replay.DefaultConfig())
	if r.Unmatched != 1 {
		t.Fatalf("unmatched = %d, want 1", r.Unmatched)
	}
	if r.Missing != 0 || r.Remaining != 0 {
		t.Errorf("unknown activity should be skipped, not force-fired: %+v", r)
	}
	if r.Fits() {
		t.Error("Fits() should be false with unmatched events")
	}
}

// withSilent builds p0 -> A -> p1 -> tau -> p2 -> B -> p3. Firing B from A's
// output requires routing through the silent transition.
func withSilent(t *testing.T) *pathmine.Net {
	t.Helper()
	n := pathmine.NewNet("silent")
	places := make([]*pathmine.Place, 4)
	for i := range places {
		places[i] = &pathmine.Place{ID: "p" + string(rune('0'+i)), Name: "p"}
		n.AddPlace(places[i])
	}
	ta := &pathmine.Transition{ID: "ta", Label: "A"}
	tau := &pathmine.Transition{ID: "tau"}
	tb := &pathmine.Transition{ID: "tb", Label: "B"}
	for _, tr := range []*pathmine.Transition{ta, tau, tb} {
		n.AddTransition(tr)
	}
	pairs := [][2]pathmine.Node{
		{places[0], ta}, {ta, places[1]},
		{places[1], tau}, {tau, places[2]},
		{places[2], tb}, {tb, places[3]},
	}
	for _, pair := range pairs {
		if _, err := n.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	n.Initial = pathmine.NewMarking(places[0])
	n.Final = pathmine.NewMarking(places[3])
	return n
}

func TestTraceSilentRouting(t *testing.T) {
	r := replay.Trace(withSilent(t), "c1", []string{"A", "B"}, replay.DefaultConfig())
	if !r.Fits() {
		t.Fatalf("silent routing should make the trace fit: %+v", r)
	}
}

func TestTraceSilentRoutingChain(t *testing.T) {
	// p0 -> A -> p1 -> tau1 -> p2 -> tau2 -> p3 -> B -> p4: each silent step
	// is only enabled at the marking the previous one produced, so the whole
	// routing sequence must replay in order from the marking B was blocked at
	n := pathmine.NewNet("silent-chain")
	places := make([]*pathmine.Place, 5)
	for i := range places {
		places[i] = &pathmine.Place{ID: "p" + string(rune('0'+i))}
		n.AddPlace(places[i])
	}
	ta := &pathmine.Transition{ID: "ta", Label: "A"}
	tau1 := &pathmine.Transition{ID: "tau1"}
	tau2 := &pathmine.Transition{ID: "tau2"}
	tb := &pathmine.Transition{ID: "tb", Label: "B"}
	for _, tr := range []*pathmine.Transition{ta, tau1, tau2, tb} {
		n.AddTransition(tr)
	}
	pairs := [][2]pathmine.Node{
		{places[0], ta}, {ta, places[1]},
		{places[1], tau1}, {tau1, places[2]},
		{places[2], tau2}, {tau2, places[3]},
		{places[3], tb}, {tb, places[4]},
	}
	for _, pair := range pairs {
		if _, err := n.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	n.Initial = pathmine.NewMarking(places[0])
	n.Final = pathmine.NewMarking(places[4])

	r := replay.Trace(n, "c1", []string{"A", "B"}, replay.DefaultConfig())
	if !r.Fits() {
		t.Fatalf("chained silent routing should make the trace fit: %+v", r)
	}
	// A, tau1, tau2, B consumed one token each, plus the final marking
	if r.Consumed != 5 || r.Produced != 5 {
		t.Errorf("token accounting = consumed %d produced %d, want 5/5", r.Consumed, r.Produced)
	}
}

func TestStep(t *testing.T) {
	net := withSilent(t)
	m, ok := replay.Step(net, net.Initial.Copy(), "A", 0)
	if !ok {
		t.Fatal("A should be fireable from the initial marking")
	}
	m, ok = replay.Step(net, m, "B", 0)
	if !ok {
		t.Fatal("B should be reachable through the silent transition")
	}
	if _, ok := replay.Step(net, m, "A", 0); ok {
		t.Error("A should not be fireable again; Step must not invent tokens")
	}
}

func TestRun(t *testing.T) {
	net := chain(t)
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	cases := []eventlog.Case{
		{ID: "c1", Events: []eventlog.Event{
			{Activity: "A", Time: base},
			{Activity: "B", Time: base.Add(time.Hour)},
		}},
		{ID: "c2", Events: []eventlog.Event{
			{Activity: "A", Time: base},
		}},
	}
	log, err := eventlog.New(cases)
	if err != nil {
		t.Fatal(err)
	}
	results, err := replay.Run(context.Background(), net, log, replay.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].CaseID != "c1" || !results[0].Fits() {
		t.Errorf("c1 should fit: %+v", results[0])
	}
	if results[1].CaseID != "c2" || results[1].Fits() {
		t.Errorf("c2 should not fit: %+v", results[1])
	}
}

func TestRunEmptyLog(t *testing.T) {
	if _, err := replay.Run(context.Background(), chain(t), nil, replay.DefaultConfig()); err == nil {
		t.Fatal("expected an error for a nil log")
	}
}
