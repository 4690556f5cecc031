package internal

import "fmt"

// ReturnID identifies the scope a Return signal targets. Return IDs are
// allocated by a Session in strictly increasing order and never reused.
type ReturnID int64

// StopKind is the reason for a flow control signal.
type StopKind int

// Control flow reasons.
const (
	// Normal indicates normal execution.
	Normal StopKind = iota
	// NextStop should be interpreted by loops and block boundaries as a
	// signal to finish the current iteration with the carried value.
	NextStop
	// ReturnStop should be interpreted by the unit whose return ID matches
	// the signal's target as a signal to exit with the carried value. Every
	// other node propagates it.
	ReturnStop
	// RetryStop should be interpreted by a begin block as a signal to run its
	// body again when it is raised from a rescue clause.
	RetryStop
	// ExceptionStop carries a raised *Exception. It is caught by rescue
	// clauses and is not a control signal in its own right.
	ExceptionStop
)

var stopNames = [...]string{"normal", "next", "return", "retry", "exception"}

// String returns a string representation of the StopKind.
func (k StopKind) String() string {
	if k < Normal || k > ExceptionStop {
		return fmt.Sprintf("StopKind(%d)", int(k))
	}
	return stopNames[k]
}

// Stop is a flow control signal. Every node evaluation produces a result and
// a Stop; anything other than NoStop unwinds enclosing nodes until a node
// that handles it is reached. Stops are comparable.
type Stop struct {
	Kind StopKind
	// Target is the return ID of the unit a ReturnStop targets.
	Target ReturnID
	// Frame is the frame of the unit a ReturnStop targets.
	Frame *Frame
}

// NoStop indicates normal execution.
var NoStop = Stop{}

// String returns a string representation of the Stop.
func (s Stop) String() string {
	if s.Kind == ReturnStop {
		return fmt.Sprintf("return(%d)", s.Target)
	}
	return s.Kind.String()
}

// Err returns nil if s is NoStop or an error value describing the signal
// otherwise. result is the value produced alongside the Stop; if it is an
// *Exception, it is returned directly. Panics if s has an invalid kind.
func (s Stop) Err(result Value) error {
	switch s.Kind {
	case Normal:
		return nil
	case ExceptionStop:
		if e, ok := result.(*Exception); ok {
			return e
		}
		return stopError(s)
	case NextStop, ReturnStop, RetryStop:
		return stopError(s)
	default:
		panic(fmt.Sprintf("rubble: invalid Stop: %v", s))
	}
}

type stopError Stop

func (err stopError) Error() string {
	return "uncaught " + Stop(err).String()
}

// invalidStop panics for a Stop with an unknown kind. Nodes which switch over
// every kind use it in their default cases.
func invalidStop(s Stop) {
	panic(fmt.Errorf("rubble: invalid Stop: %v", s))
}
