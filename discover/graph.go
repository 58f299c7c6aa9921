package discover

import "sort"

type edge struct {
	from, to string
}

// graph is the directly-follows graph of a sublog: nodes are the activities
// present, an edge a->b counts the cases in which a is immediately followed
// by b. Start and end activities are tracked with the same per-case counting.
type graph struct {
	activities []string
	edges      map[edge]int
	starts     map[string]int
	ends       map[string]int
}

func buildGraph(traces [][]string, noise float64) *graph {
	g := &graph{
		edges:  make(map[edge]int),
		starts: make(map[string]int),
		ends:   make(map[string]int),
	}
	set := map[string]bool{}
	for _, trace := range traces {
		if len(trace) == 0 {
			continue
		}
		g.starts[trace[0]]++
		g.ends[trace[len(trace)-1]]++
		seen := map[edge]bool{}
		for i, a := range trace {
			set[a] = true
			if i+1 < len(trace) {
				e := edge{from: a, to: trace[i+1]}
				if !seen[e] {
					seen[e] = true
					g.edges[e]++
				}
			}
		}
	}
	g.activities = make([]string, 0, len(set))
	for a := range set {
		g.activities = append(g.activities, a)
	}
	sort.Strings(g.activities)
	if noise > 0 {
		g.filter(noise)
	}
	return g
}

// filter drops directly-follows evidence dominated by more frequent behavior:
// an edge survives only if its count reaches (1-noise) times the strongest
// edge leaving the same activity, and start/end marks are pruned the same
// way against the strongest start/end. Activities stay in the graph; an
// activity stripped of all evidence separates into its own choice branch and
// receives no traces at split time.
func (g *graph) filter(noise float64) {
	maxOut := map[string]int{}
	for e, n := range g.edges {
		if n > maxOut[e.from] {
			maxOut[e.from] = n
		}
	}
	for e, n := range g.edges {
		if float64(n) < (1-noise)*float64(maxOut[e.from]) {
			delete(g.edges, e)
		}
	}
	prune := func(marks map[string]int) {
		max := 0
		for _, n := range marks {
			if n > max {
				max = n
			}
		}
		for a, n := range marks {
			if float64(n) < (1-noise)*float64(max) {
				delete(marks, a)
			}
		}
	}
	prune(g.starts)
	prune(g.ends)
}

func (g *graph) has(from, to string) bool {
	return g.edges[edge{from: from, to: to}] > 0
}

// successors returns the directly-follows successors of a in sorted order.
func (g *graph) successors(a string) []string {
	var out []string
	for _, b := range g.activities {
		if g.has(a, b) {
			out = append(out, b)
		}
	}
	return out
}

// components returns the connected components of the undirected view of g,
// restricted to the given activities. Components and their members come back
// sorted, so downstream part ordering is deterministic.
func (g *graph) components(within []string) [][]string {
	in := map[string]bool{}
	for _, a := range within {
		in[a] = true
	}
	visited := map[string]bool{}
	var comps [][]string
	for _, a := range within {
		if visited[a] {
			continue
		}
		var comp []string
		stack := []string{a}
		visited[a] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, b := range g.activities {
				if !in[b] || visited[b] {
					continue
				}
				if g.has(cur, b) || g.has(b, cur) {
					visited[b] = true
					stack = append(stack, b)
				}
			}
		}
		sort.Strings(comp)
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// reachable computes the transitive directly-follows reachability relation.
func (g *graph) reachable() map[edge]bool {
	reach := map[edge]bool{}
	for _, a := range g.activities {
		visited := map[string]bool{}
		stack := []string{a}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, b := range g.successors(cur) {
				if !visited[b] {
					visited[b] = true
					reach[edge{from: a, to: b}] = true
					stack = append(stack, b)
				}
			}
		}
	}
	return reach
}
