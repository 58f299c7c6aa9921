package pathmine

import "github.com/google/uuid"

type NodeKind int

const (
	PlaceNode NodeKind = iota
	TransitionNode
)

// Node is either a Place or a Transition.
type Node interface {
	Kind() NodeKind
	Identifier() string
	String() string
}

// ID returns a fresh unique identifier for a node.
func ID() string {
	return uuid.New().String()
}
