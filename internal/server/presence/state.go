package presence

import (
	"errors"
	"fmt"
	"sync"
)

var ErrInvalidTransition = errors.New("invalid connection state transition")

// State is where a realtime connection is in its life.
type State int

const (
	StateConnecting State = iota // handshake accepted, identity not yet checked
	StateIdentified              // user id known
	StateOpen                    // registered, receiving frames
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdentified:
		return "identified"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Lifecycle guards a connection's state. The zero value is Connecting.
//
// Allowed moves are Connecting -> Identified -> Open, plus a move to Closed
// from any other state. Closed is final.
type Lifecycle struct {
	mu    sync.Mutex
	state State
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) Transition(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.state
	ok := false
	switch to {
	case StateIdentified:
		ok = from == StateConnecting
	case StateOpen:
		ok = from == StateIdentified
	case StateClosed:
		ok = from != StateClosed
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	l.state = to
	return nil
}
