// Package netfile reads and writes the YAML interchange representation of a
// net: its places, transitions, weighted arcs, and both markings. A net
// saved and loaded back is isomorphic to the original and fires identically
// on every marking.
package netfile

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jt05610/pathmine"
)

// File is the on-disk schema.
type File struct {
	Name        string         `yaml:"name,omitempty"`
	Places      []PlaceEntry   `yaml:"places"`
	Transitions []TransEntry   `yaml:"transitions"`
	Arcs        []ArcEntry     `yaml:"arcs"`
	Initial     map[string]int `yaml:"initial"`
	Final       map[string]int `yaml:"final"`
}

type PlaceEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

type TransEntry struct {
	ID string `yaml:"id"`
	// Label is empty for silent transitions.
	Label string `yaml:"label,omitempty"`
}

type ArcEntry struct {
	Src    string `yaml:"src"`
	Dest   string `yaml:"dest"`
	Weight int    `yaml:"weight,omitempty"`
}

var (
	_ pathmine.Loader[*pathmine.Net]  = (*Service)(nil)
	_ pathmine.Flusher[*pathmine.Net] = (*Service)(nil)
)

// Service loads and flushes nets in the YAML interchange format.
type Service struct{}

// Load decodes a net. Arcs referencing unknown nodes or connecting two nodes
// of the same kind fail the load.
func (s *Service) Load(r io.Reader) (*pathmine.Net, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode net: %w", err)
	}
	return f.Net()
}

// Flush encodes a net.
func (s *Service) Flush(w io.Writer, net *pathmine.Net) error {
	enc := yaml.NewEncoder(w)
	defer func() {
		_ = enc.Close()
	}()
	return enc.Encode(FromNet(net))
}

// Net builds the runtime net from the file representation.
func (f *File) Net() (*pathmine.Net, error) {
	net := pathmine.NewNet(f.Name)
	nodes := make(map[string]pathmine.Node, len(f.Places)+len(f.Transitions))
	for _, pe := range f.Places {
		if pe.ID == "" {
			return nil, fmt.Errorf("place with empty id")
		}
		if _, dup := nodes[pe.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", pe.ID)
		}
		p := &pathmine.Place{ID: pe.ID, Name: pe.Name}
		nodes[pe.ID] = net.AddPlace(p)
	}
	for _, te := range f.Transitions {
		if te.ID == "" {
			return nil, fmt.Errorf("transition with empty id")
		}
		if _, dup := nodes[te.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", te.ID)
		}
		t := &pathmine.Transition{ID: te.ID, Label: te.Label}
		nodes[te.ID] = net.AddTransition(t)
	}
	for _, ae := range f.Arcs {
		src, ok := nodes[ae.Src]
		if !ok {
			return nil, fmt.Errorf("arc references unknown node %q", ae.Src)
		}
		dest, ok := nodes[ae.Dest]
		if !ok {
			return nil, fmt.Errorf("arc references unknown node %q", ae.Dest)
		}
		if _, err := net.AddArc(src, dest, ae.Weight); err != nil {
			return nil, err
		}
	}
	net.Initial = markingFrom(f.Initial)
	net.Final = markingFrom(f.Final)
	if _, err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}

// FromNet builds the file representation of a net.
func FromNet(net *pathmine.Net) *File {
	f := &File{
		Name:    net.Name,
		Initial: map[string]int{},
		Final:   map[string]int{},
	}
	for _, p := range net.Places {
		f.Places = append(f.Places, PlaceEntry{ID: p.ID, Name: p.Name})
	}
	for _, t := range net.Transitions {
		f.Transitions = append(f.Transitions, TransEntry{ID: t.ID, Label: t.Label})
	}
	for _, a := range net.Arcs {
		f.Arcs = append(f.Arcs, ArcEntry{
			Src:    a.Src.Identifier(),
			Dest:   a.Dest.Identifier(),
			Weight: a.Weight,
		})
	}
	for id, n := range net.Initial {
		f.Initial[id] = n
	}
	for id, n := range net.Final {
		f.Final[id] = n
	}
	return f
}

func markingFrom(m map[string]int) pathmine.Marking {
	out := make(pathmine.Marking, len(m))
	for id, n := range m {
		if n > 0 {
			out[id] = n
		}
	}
	return out
}
