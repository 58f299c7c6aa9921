package discover

// partIndex maps every activity of a cut to its part.
func partIndex(c *cut) map[string]int {
	idx := map[string]int{}
	for i, part := range c.parts {
		for _, a := range part {
			idx[a] = i
		}
	}
	return idx
}

// split divides a sublog's traces into one sublog per part, according to the
// cut kind's projection rule.
func split(traces [][]string, c *cut) [][][]string {
	switch c.kind {
	case ChoiceCut:
		return choiceSplit(traces, c)
	case LoopCut:
		return loopSplit(traces, c)
	default:
		// sequence and parallel both project each trace onto each part,
		// preserving the part's relative order
		return projectSplit(traces, c)
	}
}

func projectSplit(traces [][]string, c *cut) [][][]string {
	subs := make([][][]string, len(c.parts))
	idx := partIndex(c)
	for _, trace := range traces {
		parts := make([][]string, len(c.parts))
		for _, a := range trace {
			i, ok := idx[a]
			if !ok {
				continue
			}
			parts[i] = append(parts[i], a)
		}
		for i := range subs {
			subs[i] = append(subs[i], parts[i])
		}
	}
	return subs
}

// choiceSplit assigns each trace to the part covering most of its events and
// projects it onto that part's activities.
func choiceSplit(traces [][]string, c *cut) [][][]string {
	subs := make([][][]string, len(c.parts))
	idx := partIndex(c)
	for _, trace := range traces {
		counts := make([]int, len(c.parts))
		for _, a := range trace {
			if i, ok := idx[a]; ok {
				counts[i]++
			}
		}
		best := 0
		for i, n := range counts {
			if n > counts[best] {
				best = i
			}
		}
		var projected []string
		for _, a := range trace {
			if i, ok := idx[a]; ok && i == best {
				projected = append(projected, a)
			}
		}
		subs[best] = append(subs[best], projected)
	}
	return subs
}

// loopSplit walks each trace and cuts it into maximal segments per part:
// body segments go to the do sublog, redo segments to their redo sublog.
func loopSplit(traces [][]string, c *cut) [][][]string {
	subs := make([][][]string, len(c.parts))
	idx := partIndex(c)
	for _, trace := range traces {
		cur := 0
		var segment []string
		for _, a := range trace {
			i, ok := idx[a]
			if !ok {
				continue
			}
			if i != cur {
				subs[cur] = append(subs[cur], segment)
				segment = nil
				cur = i
			}
			segment = append(segment, a)
		}
		subs[cur] = append(subs[cur], segment)
		// a trace must begin and end in the body; if it ended mid-redo the
		// do part still needs a closing segment
		if cur != 0 {
			subs[0] = append(subs[0], nil)
		}
	}
	return subs
}
