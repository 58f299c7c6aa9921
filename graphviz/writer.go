// Package graphviz renders a net as a graphviz figure: circles for places,
// boxes for transitions, filled boxes for silent routing transitions.
// Initial-marking places are drawn with a double border.
package graphviz

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/jt05610/pathmine"
)

var _ pathmine.Flusher[*pathmine.Net] = (*Writer)(nil)

type Font string

const (
	Helvetica Font = "Helvetica"
	Arial     Font = "Arial"
	SansSerif Font = "sans-serif"
	Serif     Font = "Serif"
	Times     Font = "Times"
)

type RankDir string

const (
	LeftToRight RankDir = "LR"
	RightToLeft RankDir = "RL"
	TopToBottom RankDir = "TB"
	BottomToTop RankDir = "BT"
)

type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
	DOT Format = "dot"
)

type Config struct {
	Name string
	Font
	RankDir
	Format
}

type Writer struct {
	*Config
	g       *cgraph.Graph
	mapping map[pathmine.Node]*cgraph.Node
}

func New(config *Config) *Writer {
	if config.Name == "" {
		config.Name = "pathmine"
	}
	if config.Font == "" {
		config.Font = Helvetica
	}
	if config.RankDir == "" {
		config.RankDir = LeftToRight
	}
	if config.Format == "" {
		config.Format = SVG
	}
	return &Writer{
		Config:  config,
		mapping: make(map[pathmine.Node]*cgraph.Node),
	}
}

func (w *Writer) writePlace(i int, p *pathmine.Place, net *pathmine.Net) error {
	node, err := w.g.CreateNode(fmt.Sprintf("p%d", i))
	if err != nil {
		return err
	}
	if net.Initial[p.ID] > 0 || net.Final[p.ID] > 0 {
		node.SetShape(cgraph.DoubleCircleShape)
	} else {
		node.SetShape(cgraph.CircleShape)
	}
	node.SetLabel(p.Name)
	node.Set("fontname", string(w.Font))
	w.mapping[p] = node
	return nil
}

func (w *Writer) writeTransition(i int, t *pathmine.Transition) error {
	node, err := w.g.CreateNode(fmt.Sprintf("t%d", i))
	if err != nil {
		return err
	}
	node.SetShape(cgraph.BoxShape)
	node.Set("fontname", string(w.Font))
	if t.Silent() {
		node.SetLabel("")
		node.SetStyle(cgraph.FilledNodeStyle)
		node.SetFillColor("black")
		node.SetWidth(0.15)
	} else {
		node.SetLabel(t.Label)
	}
	w.mapping[t] = node
	return nil
}

func (w *Writer) writeArc(i int, a *pathmine.Arc) error {
	src := w.mapping[a.Src]
	dst := w.mapping[a.Dest]
	e, err := w.g.CreateEdge(fmt.Sprintf("a%d", i), src, dst)
	if err != nil {
		return err
	}
	if a.Weight > 1 {
		e.SetLabel(fmt.Sprintf("%d", a.Weight))
	}
	return nil
}

func (w *Writer) Flush(out io.Writer, net *pathmine.Net) error {
	graph := graphviz.New()
	defer func() {
		_ = graph.Close()
	}()
	g, err := graph.Graph()
	if err != nil {
		return err
	}
	g.SetRankDir(cgraph.RankDir(w.RankDir))
	w.g = g
	for i, p := range net.Places {
		if err := w.writePlace(i, p, net); err != nil {
			return err
		}
	}
	for i, t := range net.Transitions {
		if err := w.writeTransition(i, t); err != nil {
			return err
		}
	}
	for i, a := range net.Arcs {
		if err := w.writeArc(i, a); err != nil {
			return err
		}
	}
	return graph.Render(w.g, graphviz.Format(w.Format), out)
}
