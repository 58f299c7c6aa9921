package pathmine

import (
	"fmt"
	"io"
	"sort"
)

// Net is a Petri net together with its initial and final markings. The net is
// built once by discovery (or loaded from an interchange file) and treated as
// shared read-only state by everything downstream.
type Net struct {
	ID          string
	Name        string
	Places      []*Place
	Transitions []*Transition
	Arcs        []*Arc
	Initial     Marking
	Final       Marking

	inputs  map[string][]*Arc
	outputs map[string][]*Arc
}

// NewNet creates an empty net.
func NewNet(name string) *Net {
	return &Net{
		ID:      ID(),
		Name:    name,
		inputs:  make(map[string][]*Arc),
		outputs: make(map[string][]*Arc),
	}
}

func (n *Net) AddPlace(p *Place) *Place {
	n.Places = append(n.Places, p)
	return p
}

func (n *Net) AddTransition(t *Transition) *Transition {
	n.Transitions = append(n.Transitions, t)
	return t
}

// AddArc connects a place and a transition with the given weight. Weights
// below one default to one. Connecting two places or two transitions is
// rejected; the net stays bipartite by construction.
func (n *Net) AddArc(from, to Node, weight int) (*Arc, error) {
	if from.Kind() == to.Kind() {
		return nil, &UnsoundNetError{
			Reason: fmt.Sprintf("arc %s -> %s connects two nodes of the same kind", from, to),
		}
	}
	if weight < 1 {
		weight = 1
	}
	for _, arc := range n.outputs[from.Identifier()] {
		if arc.Dest.Identifier() == to.Identifier() {
			return nil, fmt.Errorf("arc %s -> %s already exists", from, to)
		}
	}
	a := &Arc{Src: from, Dest: to, Weight: weight}
	n.Arcs = append(n.Arcs, a)
	n.outputs[from.Identifier()] = append(n.outputs[from.Identifier()], a)
	n.inputs[to.Identifier()] = append(n.inputs[to.Identifier()], a)
	return a, nil
}

// Inputs returns the arcs entering n.
func (n *Net) Inputs(node Node) []*Arc {
	return n.inputs[node.Identifier()]
}

// Outputs returns the arcs leaving n.
func (n *Net) Outputs(node Node) []*Arc {
	return n.outputs[node.Identifier()]
}

// Place returns the place with the given ID, or nil.
func (n *Net) Place(id string) *Place {
	for _, p := range n.Places {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Transition returns the transition with the given ID, or nil.
func (n *Net) Transition(id string) *Transition {
	for _, t := range n.Transitions {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Labeled returns the transitions carrying the given activity label, in the
// order they were added.
func (n *Net) Labeled(label string) []*Transition {
	var out []*Transition
	for _, t := range n.Transitions {
		if t.Label == label {
			out = append(out, t)
		}
	}
	return out
}

// Silent returns the silent transitions in the order they were added.
func (n *Net) Silent() []*Transition {
	var out []*Transition
	for _, t := range n.Transitions {
		if t.Silent() {
			out = append(out, t)
		}
	}
	return out
}

// PlaceOrder returns the place IDs in a stable order, used to key markings.
func (n *Net) PlaceOrder() []string {
	order := make([]string, len(n.Places))
	for i, p := range n.Places {
		order[i] = p.ID
	}
	return order
}

// Enabled reports whether every input place of t holds at least its arc
// weight in m.
func (n *Net) Enabled(t *Transition, m Marking) bool {
	for _, arc := range n.inputs[t.ID] {
		if m[arc.Src.Identifier()] < arc.Weight {
			return false
		}
	}
	return true
}

// EnabledTransitions returns every transition enabled at m.
func (n *Net) EnabledTransitions(m Marking) []*Transition {
	var out []*Transition
	for _, t := range n.Transitions {
		if n.Enabled(t, m) {
			out = append(out, t)
		}
	}
	return out
}

// Fire returns the marking reached by firing t from m. The passed-in marking
// is never mutated. Firing a transition that is not enabled returns a
// NotEnabledError.
func (n *Net) Fire(t *Transition, m Marking) (Marking, error) {
	if !n.Enabled(t, m) {
		return nil, &NotEnabledError{Transition: t.String()}
	}
	next := m.Copy()
	for _, arc := range n.inputs[t.ID] {
		next[arc.Src.Identifier()] -= arc.Weight
		if next[arc.Src.Identifier()] == 0 {
			delete(next, arc.Src.Identifier())
		}
	}
	for _, arc := range n.outputs[t.ID] {
		next[arc.Dest.Identifier()] += arc.Weight
	}
	return next, nil
}

// ValidateBound caps the breadth-first reachability exploration in Validate.
const ValidateBound = 1 << 14

// Validate checks the net's structural invariants. Bipartite violations and
// markings referencing unknown places return an UnsoundNetError. Places and
// transitions that a bounded breadth-first exploration of firings from the
// initial marking never touches are returned as warnings; such nodes are
// possible debug artifacts of discovery but unusual.
func (n *Net) Validate() ([]string, error) {
	for _, arc := range n.Arcs {
		if arc.Src.Kind() == arc.Dest.Kind() {
			return nil, &UnsoundNetError{
				Reason: fmt.Sprintf("arc %s connects two nodes of the same kind", arc),
			}
		}
	}
	for _, m := range []Marking{n.Initial, n.Final} {
		for id := range m {
			if n.Place(id) == nil {
				return nil, &UnsoundNetError{
					Reason: fmt.Sprintf("marking references unknown place %s", id),
				}
			}
		}
	}

	seenPlace := make(map[string]bool, len(n.Places))
	seenTransition := make(map[string]bool, len(n.Transitions))
	visited := map[string]bool{}
	order := n.PlaceOrder()
	queue := []Marking{n.Initial}
	visited[n.Initial.Key(order)] = true
	for id := range n.Initial {
		seenPlace[id] = true
	}
	for len(queue) > 0 && len(visited) < ValidateBound {
		m := queue[0]
		queue = queue[1:]
		for _, t := range n.Transitions {
			if !n.Enabled(t, m) {
				continue
			}
			seenTransition[t.ID] = true
			next, err := n.Fire(t, m)
			if err != nil {
				return nil, err
			}
			for id := range next {
				seenPlace[id] = true
			}
			key := next.Key(order)
			if !visited[key] {
				visited[key] = true
				queue = append(queue, next)
			}
		}
	}

	var warnings []string
	for _, p := range n.Places {
		if !seenPlace[p.ID] {
			warnings = append(warnings, fmt.Sprintf("place %s is unreachable from the initial marking", p))
		}
	}
	for _, t := range n.Transitions {
		if !seenTransition[t.ID] {
			warnings = append(warnings, fmt.Sprintf("transition %s is unreachable from the initial marking", t))
		}
	}
	sort.Strings(warnings)
	return warnings, nil
}

// Loader reads a value from an interchange format.
type Loader[T any] interface {
	Load(io.Reader) (T, error)
}

// Flusher writes a value to an interchange format.
type Flusher[T any] interface {
	Flush(io.Writer, T) error
}
