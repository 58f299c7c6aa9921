package eventlog

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Filter returns the sub-log of cases for which the expression evaluates to
// true. The expression sees the case id, its attributes, its trace, and its
// first/last timestamps; it is how callers partition a log into externally
// defined groups before handing each group to the core independently.
//
//	pathmine conform --where 'attrs.cohort == "2019" && len(trace) > 3'
func (l *Log) Filter(expression string) (*Log, error) {
	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	out := &Log{Skipped: l.Skipped}
	for i := range l.Cases {
		c := &l.Cases[i]
		env := map[string]any{
			"id":     c.ID,
			"attrs":  c.Attributes,
			"trace":  c.Trace(),
			"events": len(c.Events),
		}
		if len(c.Events) > 0 {
			env["start"] = c.Events[0].Time
			env["end"] = c.Events[len(c.Events)-1].Time
		}
		keep, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("filter case %q: %w", c.ID, err)
		}
		if keep.(bool) {
			out.Cases = append(out.Cases, *c)
		}
	}
	if len(out.Cases) == 0 {
		return nil, ErrEmptyLog
	}
	return out, nil
}
