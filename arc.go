package pathmine

// Arc is a weighted connection from a place to a transition or from a
// transition to a place. Weight is the number of tokens consumed or produced
// when the connected transition fires.
type Arc struct {
	Src    Node
	Dest   Node
	Weight int
}

func (a *Arc) String() string {
	return a.Src.String() + " -> " + a.Dest.String()
}
