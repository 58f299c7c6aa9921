package pathmine_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jt05610/pathmine"
)

// chain builds p0 -> A -> p1 -> B -> p2 with one token on p0.
func chain(t *testing.T) *pathmine.Net {
	t.Helper()
	net := pathmine.NewNet("chain")
	p0 := net.AddPlace(&pathmine.Place{ID: "p0"})
	p1 := net.AddPlace(&pathmine.Place{ID: "p1"})
	p2 := net.AddPlace(&pathmine.Place{ID: "p2"})
	a := net.AddTransition(&pathmine.Transition{ID: "ta", Label: "A"})
	b := net.AddTransition(&pathmine.Transition{ID: "tb", Label: "B"})
	for _, pair := range [][2]pathmine.Node{{p0, a}, {a, p1}, {p1, b}, {b, p2}} {
		if _, err := net.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	net.Initial = pathmine.NewMarking(p0)
	net.Final = pathmine.NewMarking(p2)
	return net
}

func TestFire(t *testing.T) {
	net := chain(t)
	a := net.Transition("ta")
	m := net.Initial.Copy()
	if !net.Enabled(a, m) {
		t.Fatal("A should be enabled at the initial marking")
	}
	next, err := net.Fire(a, m)
	if err != nil {
		t.Fatal(err)
	}
	if next["p0"] != 0 || next["p1"] != 1 {
		t.Errorf("unexpected marking after firing A: %s", next)
	}
	// value semantics: the input marking is untouched
	if m["p0"] != 1 || m["p1"] != 0 {
		t.Errorf("Fire mutated its argument: %s", m)
	}
	for id, n := range next {
		if n < 0 {
			t.Errorf("place %s went negative", id)
		}
	}
}

func TestFireNotEnabled(t *testing.T) {
	net := chain(t)
	b := net.Transition("tb")
	_, err := net.Fire(b, net.Initial)
	if err == nil {
		t.Fatal("expected an error firing B at the initial marking")
	}
	var notEnabled *pathmine.NotEnabledError
	if !errors.As(err, &notEnabled) {
		t.Errorf("expected NotEnabledError, got %v", err)
	}
}

func TestAddArcBipartite(t *testing.T) {
	net := pathmine.NewNet("bad")
	p := net.AddPlace(&pathmine.Place{ID: "p0"})
	q := net.AddPlace(&pathmine.Place{ID: "p1"})
	_, err := net.AddArc(p, q, 1)
	if err == nil {
		t.Fatal("expected place-to-place arc to be rejected")
	}
	var unsound *pathmine.UnsoundNetError
	if !errors.As(err, &unsound) {
		t.Errorf("expected UnsoundNetError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	net := chain(t)
	warnings, err := net.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	net.AddPlace(&pathmine.Place{ID: "orphan"})
	warnings, err = net.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "orphan") {
		t.Errorf("expected one unreachable-place warning, got %v", warnings)
	}
}

func TestValidateUnknownMarkingPlace(t *testing.T) {
	net := chain(t)
	net.Final = pathmine.Marking{"nowhere": 1}
	_, err := net.Validate()
	var unsound *pathmine.UnsoundNetError
	if !errors.As(err, &unsound) {
		t.Errorf("expected UnsoundNetError for unknown marking place, got %v", err)
	}
}

func TestMarkingKey(t *testing.T) {
	order := []string{"p0", "p1", "p2"}
	a := pathmine.Marking{"p1": 2}
	b := pathmine.Marking{"p1": 2, "p0": 0}
	if a.Key(order) != b.Key(order) {
		t.Errorf("equal markings produced different keys: %q vs %q", a.Key(order), b.Key(order))
	}
	c := pathmine.Marking{"p1": 1}
	if a.Key(order) == c.Key(order) {
		t.Error("different markings produced the same key")
	}
}

func TestSilentWalk(t *testing.T) {
	// p0 -> tau -> p1 -> A -> p2
	net := pathmine.NewNet("silent")
	p0 := net.AddPlace(&pathmine.Place{ID: "p0"})
	p1 := net.AddPlace(&pathmine.Place{ID: "p1"})
	p2 := net.AddPlace(&pathmine.Place{ID: "p2"})
	tau := net.AddTransition(&pathmine.Transition{ID: "tau"})
	a := net.AddTransition(&pathmine.Transition{ID: "ta", Label: "A"})
	for _, pair := range [][2]pathmine.Node{{p0, tau}, {tau, p1}, {p1, a}, {a, p2}} {
		if _, err := net.AddArc(pair[0], pair[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	net.Initial = pathmine.NewMarking(p0)
	net.Final = pathmine.NewMarking(p2)

	labels := net.EnabledLabels(net.Initial, 0)
	if len(labels) != 1 || labels[0] != "A" {
		t.Errorf("expected A enabled through the silent closure, got %v", labels)
	}

	visited := 0
	net.SilentWalk(net.Initial, 0, func(m pathmine.Marking, path []*pathmine.Transition) bool {
		visited++
		return true
	})
	if visited != 2 {
		t.Errorf("expected 2 silently reachable markings, got %d", visited)
	}
}
