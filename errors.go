package pathmine

import "fmt"

// NotEnabledError reports an attempt to fire a transition whose input places
// do not hold enough tokens. Token replay catches it and converts it into a
// missing-token deficit; it never surfaces from the conformance checkers.
type NotEnabledError struct {
	Transition string
}

func (e *NotEnabledError) Error() string {
	return fmt.Sprintf("transition %s is not enabled", e.Transition)
}

// UnsoundNetError reports a structural invariant violation found by Validate.
// A net carrying one must not be handed to replay or alignment.
type UnsoundNetError struct {
	Reason string
}

func (e *UnsoundNetError) Error() string {
	return "unsound net: " + e.Reason
}
