package internal

import (
	"github.com/zephyrtronium/rubble/ast"
)

// IfNode is a conditional. Missing branches evaluate to nil.
type IfNode struct {
	Cond, Then, Else Node
}

func (n *IfNode) Execute(f *Frame) (Value, Stop) {
	c, stop := n.Cond.Execute(f)
	if stop != NoStop {
		return c, stop
	}
	branch := n.Else
	if Truthy(c) {
		branch = n.Then
	}
	if branch == nil {
		return nil, NoStop
	}
	return branch.Execute(f)
}

// WhileNode is a while or until loop. A Next signal from the body finishes
// the current iteration. The loop evaluates to nil.
type WhileNode struct {
	Cond, Body Node
	Until      bool
}

func (n *WhileNode) Execute(f *Frame) (Value, Stop) {
	for {
		c, stop := n.Cond.Execute(f)
		if stop != NoStop {
			return c, stop
		}
		if Truthy(c) == n.Until {
			return nil, NoStop
		}
		if n.Body == nil {
			continue
		}
		r, stop := n.Body.Execute(f)
		switch stop.Kind {
		case Normal, NextStop:
			// continue
		case ReturnStop, RetryStop, ExceptionStop:
			return r, stop
		default:
			invalidStop(stop)
		}
	}
}

// WhenClause is one arm of a CaseNode.
type WhenClause struct {
	Values []Node
	Body   Node
}

// CaseNode is a case expression. With a subject, each value is matched by
// sending it === with the subject; without one, values are tested for
// truth.
type CaseNode struct {
	Subject Node
	Whens   []WhenClause
	Else    Node
}

func (n *CaseNode) Execute(f *Frame) (Value, Stop) {
	var subj Value
	if n.Subject != nil {
		v, stop := n.Subject.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		subj = v
	}
	for _, w := range n.Whens {
		for _, vn := range w.Values {
			vals, r, stop := evalList(f, []Node{vn})
			if stop != NoStop {
				return r, stop
			}
			for _, v := range vals {
				match := Truthy(v)
				if n.Subject != nil {
					r, stop := f.VM.Send(f, v, "===", nil, subj)
					if stop != NoStop {
						return r, stop
					}
					match = Truthy(r)
				}
				if match {
					return exec(w.Body, f)
				}
			}
		}
	}
	return exec(n.Else, f)
}

// exec executes n, or evaluates to nil if n is nil.
func exec(n Node, f *Frame) (Value, Stop) {
	if n == nil {
		return nil, NoStop
	}
	return n.Execute(f)
}

// FlipFlopNode is a range in a condition. It becomes true when Lo is true
// and stays true until Hi is true. An inclusive flip-flop tests Hi on the
// same evaluation that turns it on. Its state lives in a hidden slot.
type FlipFlopNode struct {
	Lo, Hi      Node
	Exclusive   bool
	Depth, Slot int
}

func (n *FlipFlopNode) Execute(f *Frame) (Value, Stop) {
	if !Truthy(f.Get(n.Depth, n.Slot)) {
		v, stop := n.Lo.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		if !Truthy(v) {
			return false, NoStop
		}
		f.Set(n.Depth, n.Slot, true)
		if n.Exclusive {
			return true, NoStop
		}
	}
	v, stop := n.Hi.Execute(f)
	if stop != NoStop {
		return v, stop
	}
	if Truthy(v) {
		f.Set(n.Depth, n.Slot, false)
	}
	return true, NoStop
}

// RescueClause is one rescue arm of a BeginNode. An empty class list
// rescues StandardError. If HasVar is set, the exception is assigned to the
// local at Depth and Slot.
type RescueClause struct {
	Classes     []Node
	HasVar      bool
	Depth, Slot int
	Body        Node
}

// BeginNode is a begin block. The ensure clause runs however the block
// finishes; if the ensure clause is itself interrupted, its signal replaces
// the block's. A retry signal from a rescue clause runs the body again.
type BeginNode struct {
	Body    Node
	Rescues []RescueClause
	Else    Node
	Ensure  Node
}

func (n *BeginNode) Execute(f *Frame) (result Value, stop Stop) {
	if n.Ensure != nil {
		defer func() {
			r, s := n.Ensure.Execute(f)
			if s != NoStop {
				result, stop = r, s
			}
		}()
	}
	for {
		result, stop = exec(n.Body, f)
		switch stop.Kind {
		case Normal:
			if n.Else != nil {
				return n.Else.Execute(f)
			}
			return result, stop
		case NextStop, ReturnStop, RetryStop:
			return result, stop
		case ExceptionStop:
			// handled below
		default:
			invalidStop(stop)
		}
		exc, _ := result.(*Exception)
		clause, r, s := n.rescuer(f, exc)
		if s != NoStop {
			return r, s
		}
		if clause == nil {
			return result, stop
		}
		if clause.HasVar {
			f.Set(clause.Depth, clause.Slot, exc)
		}
		result, stop = exec(clause.Body, f)
		if stop.Kind != RetryStop {
			return result, stop
		}
	}
}

// rescuer finds the clause which rescues exc.
func (n *BeginNode) rescuer(f *Frame, exc *Exception) (*RescueClause, Value, Stop) {
	if exc == nil {
		return nil, nil, NoStop
	}
	for i := range n.Rescues {
		c := &n.Rescues[i]
		if len(c.Classes) == 0 {
			if exc.IsA(f.VM.Classes["StandardError"]) {
				return c, nil, NoStop
			}
			continue
		}
		classes, r, stop := evalList(f, c.Classes)
		if stop != NoStop {
			return nil, r, stop
		}
		for _, v := range classes {
			m, ok := v.(*Module)
			if !ok {
				r, stop := f.VM.Raise("TypeError", "class or module required for rescue clause")
				return nil, r, stop
			}
			if exc.IsA(m) {
				return c, nil, NoStop
			}
		}
	}
	return nil, nil, NoStop
}

// NextNode raises a Next signal carrying its value.
type NextNode struct {
	Value Node
}

func (n *NextNode) Execute(f *Frame) (Value, Stop) {
	v, stop := exec(n.Value, f)
	if stop != NoStop {
		return v, stop
	}
	return v, Stop{Kind: NextStop}
}

// ReturnNode raises a Return signal targeting the frame Depth frames out,
// which belongs to the unit with return ID Target. If that frame has
// finished, the return is an error instead.
type ReturnNode struct {
	Value  Node
	Depth  int
	Target ReturnID
	Pos    ast.Pos
}

func (n *ReturnNode) Execute(f *Frame) (Value, Stop) {
	v, stop := exec(n.Value, f)
	if stop != NoStop {
		return v, stop
	}
	target := f.Outer(n.Depth)
	if target == nil || !target.Active() {
		return f.VM.RaiseAt(n.Pos, "LocalJumpError", "unexpected return")
	}
	return v, Stop{Kind: ReturnStop, Target: n.Target, Frame: target}
}

// RetryNode raises a Retry signal.
type RetryNode struct{}

func (RetryNode) Execute(f *Frame) (Value, Stop) {
	return nil, Stop{Kind: RetryStop}
}
