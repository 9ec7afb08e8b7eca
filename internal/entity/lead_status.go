package entity

import "fmt"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusReachedOut Status = "Reached Out"
)

// Statuses lists every lifecycle state, initial state first.
var Statuses = []Status{StatusPending, StatusReachedOut}

// leadTransitions holds the legal moves out of each state. Self-transitions
// are not listed, so they are rejected like any other unknown edge.
var leadTransitions = map[Status]map[Status]bool{
	StatusPending:    {StatusReachedOut: true},
	StatusReachedOut: {},
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func CanTransition(from, to Status) bool {
	nexts, ok := leadTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// TransitionTo moves the lead to status `to`. The lead is left untouched
// when the move is not allowed.
func (l *Lead) TransitionTo(to Status) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, l.Status, to)
	}
	l.Status = to
	return nil
}
