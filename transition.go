package pathmine

var _ Node = (*Transition)(nil)

// Transition represents a transition. A transition with an empty Label is
// silent: it models internal routing and never matches a log activity.
type Transition struct {
	ID    string
	Label string
}

// NewTransition creates a labeled transition with a fresh ID.
func NewTransition(label string) *Transition {
	return &Transition{
		ID:    ID(),
		Label: label,
	}
}

// NewSilentTransition creates an unlabeled routing transition.
func NewSilentTransition() *Transition {
	return &Transition{ID: ID()}
}

// Silent reports whether the transition has no activity label.
func (t *Transition) Silent() bool { return t.Label == "" }

func (t *Transition) Kind() NodeKind { return TransitionNode }

func (t *Transition) Identifier() string { return t.ID }

func (t *Transition) String() string {
	if t.Label != "" {
		return t.Label
	}
	return "tau:" + t.ID
}
