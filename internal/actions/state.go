package actions

import "fmt"

// State is the progress of a workflow run
type State int

const (
	NotStarted State = iota
	Fetched
	TargetUpdated
	WorkingBranchReady
	Applying
	Done
	Failed
)

var stateNames = map[State]string{
	NotStarted:         "not started",
	Fetched:            "fetched",
	TargetUpdated:      "target updated",
	WorkingBranchReady: "working branch ready",
	Applying:           "applying",
	Done:               "done",
	Failed:             "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tracker advances a workflow through its states. States only move forward
// and Failed is terminal.
type Tracker struct {
	state   State
	onEnter func(State)
}

// NewTracker creates a tracker in NotStarted. onEnter, when set, is called on every transition.
func NewTracker(onEnter func(State)) *Tracker {
	return &Tracker{state: NotStarted, onEnter: onEnter}
}

// State returns the current state
func (t *Tracker) State() State {
	return t.state
}

// Advance moves to next, which must lie ahead of the current state
func (t *Tracker) Advance(next State) {
	if t.state == Failed || t.state == Done {
		panic(fmt.Sprintf("workflow already finished (%s)", t.state))
	}
	if next <= t.state {
		panic(fmt.Sprintf("invalid workflow transition %s -> %s", t.state, next))
	}
	t.enter(next)
}

// Fail moves to Failed and returns err unchanged
func (t *Tracker) Fail(err error) error {
	if t.state != Failed {
		t.enter(Failed)
	}
	return err
}

func (t *Tracker) enter(next State) {
	t.state = next
	if t.onEnter != nil {
		t.onEnter(next)
	}
}
