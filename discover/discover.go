// Package discover mines a Petri net from an event log by recursive
// block-structured mining over the directly-follows graph. Cuts are tried in
// a fixed priority order; when none applies the affected activities collapse
// into a flower model, which keeps mining total at the cost of precision.
package discover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jt05610/pathmine"
	"github.com/jt05610/pathmine/eventlog"
)

// Config controls a discovery run. It is passed by value and never mutated;
// two runs with the same config and log produce structurally identical nets.
type Config struct {
	// CutOrder is the priority order in which cut kinds are tried. Changing
	// it is a caller-visible behavior change, not a tuning knob.
	CutOrder []CutKind
	// NoiseThreshold drops directly-follows edges whose frequency falls
	// below (1-threshold) times the strongest edge leaving the same
	// activity, so rare outliers do not grow branches of their own. Zero
	// disables filtering.
	NoiseThreshold float64
	// Name is assigned to the discovered net.
	Name   string
	Logger *zap.Logger
}

// DefaultConfig returns the documented defaults: choice > sequence >
// parallel > loop.
func DefaultConfig() Config {
	return Config{
		CutOrder:       DefaultCutOrder,
		NoiseThreshold: 0.2,
		Name:           "discovered",
		Logger:         zap.NewNop(),
	}
}

// frame is one unit of mining work: a sublog between two boundary places.
// Discovery runs on an explicit stack of frames rather than recursing, so
// deeply nested logs cannot exhaust the call stack.
type frame struct {
	traces      [][]string
	entry, exit *pathmine.Place
}

// builder accumulates the net under construction. Node IDs are sequential,
// which keeps discovery fully deterministic for a given log and config.
type builder struct {
	net         *pathmine.Net
	places      int
	transitions int
	err         error
}

func (b *builder) place() *pathmine.Place {
	p := &pathmine.Place{ID: fmt.Sprintf("p%d", b.places)}
	b.places++
	return b.net.AddPlace(p)
}

func (b *builder) namedPlace(name string) *pathmine.Place {
	p := b.place()
	p.Name = name
	return p
}

func (b *builder) transition(label string) *pathmine.Transition {
	t := &pathmine.Transition{ID: fmt.Sprintf("t%d", b.transitions), Label: label}
	b.transitions++
	return b.net.AddTransition(t)
}

func (b *builder) silent() *pathmine.Transition {
	return b.transition("")
}

func (b *builder) arc(from, to pathmine.Node) {
	if _, err := b.net.AddArc(from, to, 1); err != nil && b.err == nil {
		b.err = err
	}
}

// Discover mines a Petri net from the log. The returned net carries its
// initial and final markings and has passed structural validation;
// reachability warnings are logged, a bipartite violation is returned as an
// UnsoundNetError.
func Discover(log *eventlog.Log, cfg Config) (*pathmine.Net, error) {
	if cfg.CutOrder == nil {
		cfg.CutOrder = DefaultCutOrder
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "discovered"
	}
	if log == nil || len(log.Cases) == 0 {
		return nil, eventlog.ErrEmptyLog
	}

	b := &builder{net: pathmine.NewNet(cfg.Name)}
	source := b.namedPlace("source")
	sink := b.namedPlace("sink")
	b.net.Initial = pathmine.NewMarking(source)
	b.net.Final = pathmine.NewMarking(sink)

	stack := []frame{{traces: log.Traces(), entry: source, exit: sink}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, b.mine(f, cfg)...)
	}
	if b.err != nil {
		return nil, b.err
	}

	warnings, err := b.net.Validate()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		cfg.Logger.Warn("discovered net", zap.String("warning", w))
	}
	cfg.Logger.Info("discovery complete",
		zap.String("net", cfg.Name),
		zap.Int("places", len(b.net.Places)),
		zap.Int("transitions", len(b.net.Transitions)),
		zap.Int("arcs", len(b.net.Arcs)),
	)
	return b.net, nil
}

// mine emits the structure for one frame and returns the child frames its
// cut produced.
func (b *builder) mine(f frame, cfg Config) []frame {
	if len(f.traces) == 0 {
		// a choice branch whose activities lost all their evidence to noise
		// filtering; siblings already connect the boundary places
		return nil
	}
	var nonempty [][]string
	for _, trace := range f.traces {
		if len(trace) > 0 {
			nonempty = append(nonempty, trace)
		}
	}
	if len(nonempty) == 0 {
		skip := b.silent()
		b.arc(f.entry, skip)
		b.arc(skip, f.exit)
		return nil
	}
	if len(nonempty) < len(f.traces) {
		// some cases skip this block entirely
		skip := b.silent()
		b.arc(f.entry, skip)
		b.arc(skip, f.exit)
	}

	g := buildGraph(nonempty, cfg.NoiseThreshold)
	if len(g.activities) == 1 {
		t := b.transition(g.activities[0])
		b.arc(f.entry, t)
		b.arc(t, f.exit)
		return nil
	}

	c := detect(g, cfg.CutOrder)
	if c == nil {
		b.flower(f, g.activities)
		return nil
	}
	cfg.Logger.Debug("cut found",
		zap.String("kind", c.kind.String()),
		zap.Int("parts", len(c.parts)),
	)
	return b.compose(f, c, split(nonempty, c))
}

// compose wires the cut's composition rule between the frame's boundary
// places and returns one child frame per part.
func (b *builder) compose(f frame, c *cut, subs [][][]string) []frame {
	children := make([]frame, 0, len(c.parts))
	switch c.kind {
	case ChoiceCut:
		for i := range c.parts {
			children = append(children, frame{traces: subs[i], entry: f.entry, exit: f.exit})
		}
	case SequenceCut:
		prev := f.entry
		for i := range c.parts {
			next := f.exit
			if i < len(c.parts)-1 {
				next = b.place()
			}
			children = append(children, frame{traces: subs[i], entry: prev, exit: next})
			prev = next
		}
	case ParallelCut:
		fork, join := b.silent(), b.silent()
		b.arc(f.entry, fork)
		b.arc(join, f.exit)
		for i := range c.parts {
			in, out := b.place(), b.place()
			b.arc(fork, in)
			b.arc(out, join)
			children = append(children, frame{traces: subs[i], entry: in, exit: out})
		}
	case LoopCut:
		head, tail := b.place(), b.place()
		enter, leave := b.silent(), b.silent()
		b.arc(f.entry, enter)
		b.arc(enter, head)
		b.arc(tail, leave)
		b.arc(leave, f.exit)
		children = append(children, frame{traces: subs[0], entry: head, exit: tail})
		for i := 1; i < len(c.parts); i++ {
			children = append(children, frame{traces: subs[i], entry: tail, exit: head})
		}
	}
	return children
}

// flower emits the fallback model: every activity self-loops around a single
// place, so any trace over these activities replays perfectly even though
// the block's internal order is given up.
func (b *builder) flower(f frame, activities []string) {
	center := b.place()
	enter, leave := b.silent(), b.silent()
	b.arc(f.entry, enter)
	b.arc(enter, center)
	b.arc(center, leave)
	b.arc(leave, f.exit)
	for _, a := range activities {
		t := b.transition(a)
		b.arc(center, t)
		b.arc(t, center)
	}
}
