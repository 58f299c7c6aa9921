package align

import (
	"gonum.org/v1/gonum/mat"

	"github.com/jt05610/pathmine"
)

// heuristic lower-bounds the remaining alignment cost at a search state. It
// combines two admissible relaxations: activities left in the trace with no
// transition in the net must each become a log move, and a state whose
// marking cannot reach the final marking even under the marking equation
// (firing counts unconstrained by ordering) can never complete.
type heuristic struct {
	net       *pathmine.Net
	order     []string
	incidence *mat.Dense
	labels    map[string]bool
	logCost   float64

	// feasibility of the marking equation depends only on the marking, so
	// results are memoized by marking key
	feasible map[string]bool
}

func newHeuristic(net *pathmine.Net, logCost float64) *heuristic {
	h := &heuristic{
		net:      net,
		order:    net.PlaceOrder(),
		labels:   make(map[string]bool, len(net.Transitions)),
		logCost:  logCost,
		feasible: make(map[string]bool),
	}
	for _, t := range net.Transitions {
		if !t.Silent() {
			h.labels[t.Label] = true
		}
	}
	h.incidence = incidence(net, h.order)
	return h
}

// incidence builds the places x transitions matrix whose entry (p, t) is the
// net token change on p when t fires.
func incidence(net *pathmine.Net, order []string) *mat.Dense {
	rows, cols := len(order), len(net.Transitions)
	if rows == 0 || cols == 0 {
		return nil
	}
	placeRow := make(map[string]int, rows)
	for i, id := range order {
		placeRow[id] = i
	}
	c := mat.NewDense(rows, cols, nil)
	for j, t := range net.Transitions {
		for _, arc := range net.Inputs(t) {
			i := placeRow[arc.Src.Identifier()]
			c.Set(i, j, c.At(i, j)-float64(arc.Weight))
		}
		for _, arc := range net.Outputs(t) {
			i := placeRow[arc.Dest.Identifier()]
			c.Set(i, j, c.At(i, j)+float64(arc.Weight))
		}
	}
	return c
}

const residualTolerance = 1e-7

// estimate returns a lower bound on the cost of completing an alignment from
// (pos, m), or infeasible=true when no completion exists.
func (h *heuristic) estimate(m pathmine.Marking, remaining []string) (float64, bool) {
	if !h.markingFeasible(m) {
		return 0, false
	}
	bound := 0.0
	for _, a := range remaining {
		if !h.labels[a] {
			bound += h.logCost
		}
	}
	return bound, true
}

// markingFeasible checks whether the marking equation C·x = final - m admits
// any real solution. A least-squares residual above tolerance proves it does
// not, and then no firing sequence whatsoever reaches the final marking.
func (h *heuristic) markingFeasible(m pathmine.Marking) bool {
	if h.incidence == nil {
		return true
	}
	key := m.Key(h.order)
	if ok, seen := h.feasible[key]; seen {
		return ok
	}
	rows, _ := h.incidence.Dims()
	delta := mat.NewVecDense(rows, nil)
	for i, id := range h.order {
		delta.SetVec(i, float64(h.net.Final[id]-m[id]))
	}
	ok := true
	var x mat.VecDense
	if err := x.SolveVec(h.incidence, delta); err != nil {
		// rank-deficient systems solve in the least-squares sense below
		ok = leastSquaresConsistent(h.incidence, delta)
	} else {
		ok = residualSmall(h.incidence, &x, delta)
	}
	h.feasible[key] = ok
	return ok
}

func residualSmall(c *mat.Dense, x *mat.VecDense, delta *mat.VecDense) bool {
	rows, _ := c.Dims()
	var got mat.VecDense
	got.MulVec(c, x)
	for i := 0; i < rows; i++ {
		if diff := got.AtVec(i) - delta.AtVec(i); diff > residualTolerance || diff < -residualTolerance {
			return false
		}
	}
	return true
}

func leastSquaresConsistent(c *mat.Dense, delta *mat.VecDense) bool {
	rows, cols := c.Dims()
	if rows < cols {
		// QR needs at least as many rows as columns; cannot decide here, so
		// stay admissible and assume feasible
		return true
	}
	var qr mat.QR
	qr.Factorize(c)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, delta); err != nil {
		// cannot decide; stay admissible and assume feasible
		return true
	}
	return residualSmall(c, &x, delta)
}
