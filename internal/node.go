package internal

import (
	"github.com/zephyrtronium/rubble/ast"
)

// Node is an executable node. Execute evaluates the node in a frame and
// returns its result and the signal that ended evaluation, if any. When the
// Stop is not NoStop, the result is the value the signal carries.
type Node interface {
	Execute(f *Frame) (Value, Stop)
}

type (
	// NilNode evaluates to nil.
	NilNode struct{}
	// TrueNode evaluates to true.
	TrueNode struct{}
	// FalseNode evaluates to false.
	FalseNode struct{}
	// SelfNode evaluates to the frame's receiver.
	SelfNode struct{}
)

func (NilNode) Execute(f *Frame) (Value, Stop)   { return nil, NoStop }
func (TrueNode) Execute(f *Frame) (Value, Stop)  { return true, NoStop }
func (FalseNode) Execute(f *Frame) (Value, Stop) { return false, NoStop }
func (SelfNode) Execute(f *Frame) (Value, Stop)  { return f.Self, NoStop }

// IntNode is an integer literal.
type IntNode struct {
	Value int64
}

func (n *IntNode) Execute(f *Frame) (Value, Stop) { return n.Value, NoStop }

// FloatNode is a float literal.
type FloatNode struct {
	Value float64
}

func (n *FloatNode) Execute(f *Frame) (Value, Stop) { return n.Value, NoStop }

// StrNode is a string literal.
type StrNode struct {
	Value string
}

func (n *StrNode) Execute(f *Frame) (Value, Stop) { return n.Value, NoStop }

// SymbolNode is a symbol literal.
type SymbolNode struct {
	Name Symbol
}

func (n *SymbolNode) Execute(f *Frame) (Value, Stop) { return n.Name, NoStop }

// InterpNode builds a string from its parts. Parts which do not evaluate to
// strings are converted with to_s.
type InterpNode struct {
	Parts []Node
}

func (n *InterpNode) Execute(f *Frame) (Value, Stop) {
	var b []byte
	for _, p := range n.Parts {
		v, stop := p.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		if s, ok := v.(string); ok {
			b = append(b, s...)
			continue
		}
		r, stop := f.VM.Send(f, v, "to_s", nil)
		if stop != NoStop {
			return r, stop
		}
		if s, ok := r.(string); ok {
			b = append(b, s...)
		} else {
			b = append(b, Inspect(v)...)
		}
	}
	return string(b), NoStop
}

// ArrayNode is an array literal.
type ArrayNode struct {
	Elems []Node
}

func (n *ArrayNode) Execute(f *Frame) (Value, Stop) {
	elems, r, stop := evalList(f, n.Elems)
	if stop != NoStop {
		return r, stop
	}
	return NewArray(elems...), NoStop
}

// SplatNode expands its value into an enclosing argument or element list.
// Outside a list it evaluates to its value.
type SplatNode struct {
	Value Node
}

func (n *SplatNode) Execute(f *Frame) (Value, Stop) {
	return n.Value.Execute(f)
}

// evalList evaluates a list of nodes, expanding splats. If evaluation is
// interrupted, the result and signal are returned instead.
func evalList(f *Frame, nodes []Node) ([]Value, Value, Stop) {
	vals := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		s, splat := n.(*SplatNode)
		if splat {
			n = s.Value
		}
		v, stop := n.Execute(f)
		if stop != NoStop {
			return nil, v, stop
		}
		if !splat {
			vals = append(vals, v)
			continue
		}
		switch v := v.(type) {
		case *Array:
			vals = append(vals, v.Elems...)
		case *Range:
			vals = append(vals, v.ToArray().Elems...)
		case nil:
			// Splatting nil adds nothing.
		default:
			vals = append(vals, v)
		}
	}
	return vals, nil, NoStop
}

// RangeNode is a range literal outside a condition.
type RangeNode struct {
	Lo, Hi    Node
	Exclusive bool
	Pos       ast.Pos
}

func (n *RangeNode) Execute(f *Frame) (Value, Stop) {
	lo, stop := n.Lo.Execute(f)
	if stop != NoStop {
		return lo, stop
	}
	hi, stop := n.Hi.Execute(f)
	if stop != NoStop {
		return hi, stop
	}
	l, ok1 := lo.(int64)
	h, ok2 := hi.(int64)
	if !ok1 || !ok2 {
		return f.VM.RaiseAt(n.Pos, "ArgumentError", "bad value for range")
	}
	return &Range{Lo: l, Hi: h, Exclusive: n.Exclusive}, NoStop
}

// SeqNode evaluates statements in order. Its result is that of the last.
type SeqNode struct {
	Stmts []Node
}

func (n *SeqNode) Execute(f *Frame) (Value, Stop) {
	var r Value
	for _, s := range n.Stmts {
		var stop Stop
		r, stop = s.Execute(f)
		if stop != NoStop {
			return r, stop
		}
	}
	return r, NoStop
}

// ReadLocal reads a local variable Depth frames out.
type ReadLocal struct {
	Name        string
	Depth, Slot int
}

func (n *ReadLocal) Execute(f *Frame) (Value, Stop) {
	return f.Get(n.Depth, n.Slot), NoStop
}

// WriteLocal assigns a local variable Depth frames out.
type WriteLocal struct {
	Name        string
	Depth, Slot int
	Value       Node
}

func (n *WriteLocal) Execute(f *Frame) (Value, Stop) {
	v, stop := n.Value.Execute(f)
	if stop != NoStop {
		return v, stop
	}
	f.Set(n.Depth, n.Slot, v)
	return v, NoStop
}

// ConstNode reads a constant through the lexical module chain, then the
// ancestors of the lexical module, then Object.
type ConstNode struct {
	Name string
	Pos  ast.Pos
}

func (n *ConstNode) Execute(f *Frame) (Value, Stop) {
	if v, ok := f.VM.LookupConst(f.Module, n.Name); ok {
		return v, NoStop
	}
	return f.VM.RaiseAt(n.Pos, "NameError", "uninitialized constant %s", n.Name)
}

// ScopedConstNode reads a constant from an explicit module.
type ScopedConstNode struct {
	Scope Node
	Name  string
	Pos   ast.Pos
}

func (n *ScopedConstNode) Execute(f *Frame) (Value, Stop) {
	v, stop := n.Scope.Execute(f)
	if stop != NoStop {
		return v, stop
	}
	m, ok := v.(*Module)
	if !ok {
		return f.VM.RaiseAt(n.Pos, "TypeError", "%s is not a class/module", Inspect(v))
	}
	for _, a := range m.Ancestors() {
		if c, ok := a.Const(n.Name); ok {
			return c, NoStop
		}
	}
	return f.VM.RaiseAt(n.Pos, "NameError", "uninitialized constant %s::%s", m.Name, n.Name)
}

// ConstAssignNode defines a constant. If OnSelf is true, the constant is
// defined on self, which must be a module; otherwise it is defined on the
// lexical module.
type ConstAssignNode struct {
	Name   string
	Value  Node
	OnSelf bool
	Pos    ast.Pos
}

func (n *ConstAssignNode) Execute(f *Frame) (Value, Stop) {
	target := f.Module
	if n.OnSelf {
		m, ok := f.Self.(*Module)
		if !ok {
			return f.VM.RaiseAt(n.Pos, "TypeError", "%s is not a class/module", Inspect(f.Self))
		}
		target = m
	}
	v, stop := n.Value.Execute(f)
	if stop != NoStop {
		return v, stop
	}
	target.SetConst(n.Name, v)
	return v, NoStop
}

// AndNode is short-circuit conjunction.
type AndNode struct {
	Left, Right Node
}

func (n *AndNode) Execute(f *Frame) (Value, Stop) {
	v, stop := n.Left.Execute(f)
	if stop != NoStop || !Truthy(v) {
		return v, stop
	}
	return n.Right.Execute(f)
}

// OrNode is short-circuit disjunction.
type OrNode struct {
	Left, Right Node
}

func (n *OrNode) Execute(f *Frame) (Value, Stop) {
	v, stop := n.Left.Execute(f)
	if stop != NoStop || Truthy(v) {
		return v, stop
	}
	return n.Right.Execute(f)
}

// NotNode is logical negation.
type NotNode struct {
	Value Node
}

func (n *NotNode) Execute(f *Frame) (Value, Stop) {
	v, stop := n.Value.Execute(f)
	if stop != NoStop {
		return v, stop
	}
	return !Truthy(v), NoStop
}
