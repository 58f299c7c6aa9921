package discover

import "sort"

// CutKind identifies the block structure found over a directly-follows graph.
// The kinds form a closed set; detection tries them in the configured
// priority order and the first structural match wins.
type CutKind int

const (
	ChoiceCut CutKind = iota
	SequenceCut
	ParallelCut
	LoopCut
)

func (k CutKind) String() string {
	switch k {
	case ChoiceCut:
		return "choice"
	case SequenceCut:
		return "sequence"
	case ParallelCut:
		return "parallel"
	case LoopCut:
		return "loop"
	}
	return "unknown"
}

// DefaultCutOrder is the documented tie-break between cut kinds when more
// than one structurally applies.
var DefaultCutOrder = []CutKind{ChoiceCut, SequenceCut, ParallelCut, LoopCut}

// cut is a partition of a sublog's activity set. Parts are ordered for
// sequence cuts; for loop cuts part 0 is the body and the rest are redos.
type cut struct {
	kind  CutKind
	parts [][]string
}

func detect(g *graph, order []CutKind) *cut {
	for _, kind := range order {
		var c *cut
		switch kind {
		case ChoiceCut:
			c = choiceCut(g)
		case SequenceCut:
			c = sequenceCut(g)
		case ParallelCut:
			c = parallelCut(g)
		case LoopCut:
			c = loopCut(g)
		}
		if c != nil {
			return c
		}
	}
	return nil
}

// choiceCut applies when the directly-follows graph splits into components
// with no edges between them in either direction.
func choiceCut(g *graph) *cut {
	comps := g.components(g.activities)
	if len(comps) < 2 {
		return nil
	}
	return &cut{kind: ChoiceCut, parts: comps}
}

// sequenceCut groups activities so that reachability between groups runs in
// one direction only, then orders the groups along that direction. Mutually
// reachable activities and mutually unreachable activities always share a
// group.
func sequenceCut(g *graph) *cut {
	reach := g.reachable()
	fwd := func(a, b []string) bool {
		for _, x := range a {
			for _, y := range b {
				if reach[edge{from: x, to: y}] {
					return true
				}
			}
		}
		return false
	}

	groups := make([][]string, len(g.activities))
	for i, a := range g.activities {
		groups[i] = []string{a}
	}
	merged := true
	for merged {
		merged = false
		for i := 0; i < len(groups) && !merged; i++ {
			for j := i + 1; j < len(groups) && !merged; j++ {
				f, b := fwd(groups[i], groups[j]), fwd(groups[j], groups[i])
				if f == b { // mutual or unrelated
					groups[i] = append(groups[i], groups[j]...)
					groups = append(groups[:j], groups[j+1:]...)
					merged = true
				}
			}
		}
		if !merged {
			// any cycle in the pairwise direction collapses into one group
			if c := directionCycle(groups, fwd); c != nil {
				joined := []string{}
				rest := [][]string{}
				for i, grp := range groups {
					if c[i] {
						joined = append(joined, grp...)
					} else {
						rest = append(rest, grp)
					}
				}
				groups = append(rest, joined)
				merged = true
			}
		}
	}
	if len(groups) < 2 {
		return nil
	}
	sort.Slice(groups, func(i, j int) bool { return fwd(groups[i], groups[j]) })
	for _, grp := range groups {
		sort.Strings(grp)
	}
	return &cut{kind: SequenceCut, parts: groups}
}

// directionCycle reports the groups on a reachability cycle, or nil.
func directionCycle(groups [][]string, fwd func(a, b []string) bool) map[int]bool {
	n := len(groups)
	// count incoming directions; a valid chain has a strict ranking
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && fwd(groups[i], groups[j]) && !fwd(groups[j], groups[i]) {
				indeg[j]++
			}
		}
	}
	removed := make([]bool, n)
	for left := n; left > 0; {
		found := -1
		for i := 0; i < n; i++ {
			if !removed[i] && indeg[i] == 0 {
				found = i
				break
			}
		}
		if found < 0 {
			cycle := map[int]bool{}
			for i := 0; i < n; i++ {
				if !removed[i] {
					cycle[i] = true
				}
			}
			return cycle
		}
		removed[found] = true
		left--
		for j := 0; j < n; j++ {
			if j != found && !removed[j] && fwd(groups[found], groups[j]) {
				indeg[j]--
			}
		}
	}
	return nil
}

// parallelCut applies when every pair of activities in different parts is
// connected in both directions, and every part holds at least one start and
// one end activity. The start/end requirement keeps a two-activity loop from
// masquerading as concurrency.
func parallelCut(g *graph) *cut {
	// join activities that are NOT doubly connected; the components of that
	// relation are the candidate parts
	linked := func(a, b string) bool { return !(g.has(a, b) && g.has(b, a)) }
	visited := map[string]bool{}
	var parts [][]string
	for _, a := range g.activities {
		if visited[a] {
			continue
		}
		var part []string
		stack := []string{a}
		visited[a] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			part = append(part, cur)
			for _, b := range g.activities {
				if !visited[b] && linked(cur, b) {
					visited[b] = true
					stack = append(stack, b)
				}
			}
		}
		sort.Strings(part)
		parts = append(parts, part)
	}
	if len(parts) < 2 {
		return nil
	}
	for _, part := range parts {
		hasStart, hasEnd := false, false
		for _, a := range part {
			if g.starts[a] > 0 {
				hasStart = true
			}
			if g.ends[a] > 0 {
				hasEnd = true
			}
		}
		if !hasStart || !hasEnd {
			return nil
		}
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i][0] < parts[j][0] })
	return &cut{kind: ParallelCut, parts: parts}
}

// loopCut designates the start and end activities as the loop body and looks
// for redo components that re-enter the body only through start activities
// and are entered only from end activities.
func loopCut(g *graph) *cut {
	body := map[string]bool{}
	for _, a := range g.activities {
		if g.starts[a] > 0 || g.ends[a] > 0 {
			body[a] = true
		}
	}
	if len(body) == len(g.activities) {
		return nil
	}

	for {
		var rest []string
		for _, a := range g.activities {
			if !body[a] {
				rest = append(rest, a)
			}
		}
		if len(rest) == 0 {
			return nil
		}
		comps := g.components(rest)
		grew := false
		var redos [][]string
		for _, comp := range comps {
			if validRedo(g, comp, body) {
				redos = append(redos, comp)
				continue
			}
			for _, a := range comp {
				body[a] = true
			}
			grew = true
		}
		if grew {
			continue
		}
		if len(redos) == 0 {
			return nil
		}
		var do []string
		for _, a := range g.activities {
			if body[a] {
				do = append(do, a)
			}
		}
		sort.Strings(do)
		return &cut{kind: LoopCut, parts: append([][]string{do}, redos...)}
	}
}

func validRedo(g *graph, comp []string, body map[string]bool) bool {
	in := map[string]bool{}
	for _, a := range comp {
		in[a] = true
	}
	for e := range g.edges {
		if in[e.from] && body[e.to] && g.starts[e.to] == 0 {
			return false
		}
		if body[e.from] && in[e.to] && g.ends[e.from] == 0 {
			return false
		}
	}
	return true
}
