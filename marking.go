package pathmine

import (
	"sort"
	"strconv"
	"strings"
)

// Marking is a snapshot of token counts across places, keyed by place ID.
// Markings are values: Fire returns a new marking and never mutates its
// argument. Places absent from the map hold zero tokens.
type Marking map[string]int

// NewMarking builds a marking with one token on each given place.
func NewMarking(places ...*Place) Marking {
	m := make(Marking, len(places))
	for _, p := range places {
		m[p.ID]++
	}
	return m
}

// Copy returns an independent copy of the marking.
func (m Marking) Copy() Marking {
	c := make(Marking, len(m))
	for id, n := range m {
		if n != 0 {
			c[id] = n
		}
	}
	return c
}

// Total returns the number of tokens in the marking.
func (m Marking) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Covers reports whether every place holds at least as many tokens as in
// other.
func (m Marking) Covers(other Marking) bool {
	for id, n := range other {
		if m[id] < n {
			return false
		}
	}
	return true
}

// Equals reports whether two markings hold identical token counts.
func (m Marking) Equals(other Marking) bool {
	for id, n := range m {
		if other[id] != n {
			return false
		}
	}
	for id, n := range other {
		if m[id] != n {
			return false
		}
	}
	return true
}

// Key returns a canonical string for the marking given a fixed place order.
// Two markings with equal token counts produce the same key regardless of how
// they were reached, which is what state-space searches rely on.
func (m Marking) Key(order []string) string {
	var b strings.Builder
	for i, id := range order {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(m[id]))
	}
	return b.String()
}

func (m Marking) String() string {
	ids := make([]string, 0, len(m))
	for id, n := range m {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ":" + strconv.Itoa(m[id])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
