package internal

import (
	"github.com/zephyrtronium/rubble/ast"
)

// Catchers wrap every translated body, innermost first: InitFlipFlops if the
// scope has flip-flops, CatchNext, CatchReturn or CatchReturnAsError,
// CatchRetryAsError, and ShellResultNode for shell input. Next is caught
// first so that it never escapes a unit. Return is handled before Retry so
// that a Retry is never mistaken for an unmatched Return.

// InitFlipFlops resets the scope's flip-flop states before running its body.
type InitFlipFlops struct {
	Slots []int
	Body  Node
}

func (n *InitFlipFlops) Execute(f *Frame) (Value, Stop) {
	for _, s := range n.Slots {
		f.Slots[s] = false
	}
	return n.Body.Execute(f)
}

// CatchNext makes a Next signal the result of its body.
type CatchNext struct {
	Body Node
}

func (n *CatchNext) Execute(f *Frame) (Value, Stop) {
	r, stop := n.Body.Execute(f)
	if stop.Kind == NextStop {
		return r, NoStop
	}
	return r, stop
}

// CatchReturn makes a Return signal targeting this frame of the unit with
// return ID Target the result of its body.
type CatchReturn struct {
	Body   Node
	Target ReturnID
}

func (n *CatchReturn) Execute(f *Frame) (Value, Stop) {
	r, stop := n.Body.Execute(f)
	if stop.Kind == ReturnStop && stop.Target == n.Target && stop.Frame == f {
		return r, NoStop
	}
	return r, stop
}

// CatchReturnAsError converts Return signals which cannot be caught into
// LocalJumpErrors. That includes returns targeting its own unit, which is
// a top-level or module body with nothing to return from, and returns whose
// target frame has finished. Other returns propagate.
type CatchReturnAsError struct {
	Body   Node
	Target ReturnID
	Pos    ast.Pos
}

func (n *CatchReturnAsError) Execute(f *Frame) (Value, Stop) {
	r, stop := n.Body.Execute(f)
	if stop.Kind != ReturnStop {
		return r, stop
	}
	if stop.Target == n.Target || stop.Frame == nil || !stop.Frame.Active() {
		return f.VM.RaiseAt(n.Pos, "LocalJumpError", "unexpected return")
	}
	return r, stop
}

// CatchRetryAsError converts a Retry signal which escaped every begin block
// into a LocalJumpError.
type CatchRetryAsError struct {
	Body Node
	Pos  ast.Pos
}

func (n *CatchRetryAsError) Execute(f *Frame) (Value, Stop) {
	r, stop := n.Body.Execute(f)
	if stop.Kind == RetryStop {
		return f.VM.RaiseAt(n.Pos, "LocalJumpError", "unexpected retry")
	}
	return r, stop
}

// ShellResultNode wraps the result of a shell unit with the unit's frame.
type ShellResultNode struct {
	Body Node
}

func (n *ShellResultNode) Execute(f *Frame) (Value, Stop) {
	r, stop := n.Body.Execute(f)
	if stop != NoStop {
		return r, stop
	}
	return &ShellResult{Value: r, Frame: f}, NoStop
}
