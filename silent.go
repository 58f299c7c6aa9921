package pathmine

import "sort"

// SilentWalkLimit bounds the number of markings a silent-closure walk visits.
const SilentWalkLimit = 1 << 10

// SilentWalk enumerates the markings reachable from m by firing only silent
// transitions, breadth-first, visiting at most limit distinct markings. fn
// receives each marking together with the silent firing sequence that
// reached it, starting with m itself and an empty sequence; returning false
// stops the walk. Shorter firing sequences are always visited first.
func (n *Net) SilentWalk(m Marking, limit int, fn func(Marking, []*Transition) bool) {
	if limit <= 0 {
		limit = SilentWalkLimit
	}
	order := n.PlaceOrder()
	silents := n.Silent()

	type state struct {
		marking Marking
		path    []*Transition
	}
	queue := []state{{marking: m}}
	visited := map[string]bool{m.Key(order): true}
	for len(queue) > 0 && len(visited) <= limit {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur.marking, cur.path) {
			return
		}
		for _, t := range silents {
			if !n.Enabled(t, cur.marking) {
				continue
			}
			next, err := n.Fire(t, cur.marking)
			if err != nil {
				continue
			}
			key := next.Key(order)
			if visited[key] {
				continue
			}
			visited[key] = true
			path := make([]*Transition, len(cur.path)+1)
			copy(path, cur.path)
			path[len(cur.path)] = t
			queue = append(queue, state{marking: next, path: path})
		}
	}
}

// EnabledLabels returns the sorted activity labels whose transitions are
// enabled at m or at any marking silently reachable from m.
func (n *Net) EnabledLabels(m Marking, limit int) []string {
	set := map[string]bool{}
	n.SilentWalk(m, limit, func(cur Marking, _ []*Transition) bool {
		for _, t := range n.Transitions {
			if !t.Silent() && n.Enabled(t, cur) {
				set[t.Label] = true
			}
		}
		return true
	})
	out := make([]string, 0, len(set))
	for label := range set {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
