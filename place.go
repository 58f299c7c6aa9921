package pathmine

var _ Node = (*Place)(nil)

// Place represents a place. A place carries no payload beyond its identity;
// its token count lives in a Marking, never in the place itself.
type Place struct {
	ID string
	// Name is an optional human-readable name. Discovery leaves it empty for
	// internal places and names the entry/exit boundaries.
	Name string
}

// NewPlace creates a new place with a fresh ID.
func NewPlace(name string) *Place {
	return &Place{
		ID:   ID(),
		Name: name,
	}
}

func (p *Place) Kind() NodeKind { return PlaceNode }

func (p *Place) Identifier() string { return p.ID }

func (p *Place) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
