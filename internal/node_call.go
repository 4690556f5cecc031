package internal

import (
	"fmt"

	"github.com/zephyrtronium/rubble/ast"
)

// CallNode is a method call. A nil Receiver calls self implicitly. VCall is
// set for bare identifiers which might have been variables.
type CallNode struct {
	Pos      ast.Pos
	Receiver Node
	Name     string
	Args     []Node
	BlockArg Node
	Block    *BlockNode
	VCall    bool
}

func (n *CallNode) Execute(f *Frame) (Value, Stop) {
	site := CallSite{Pos: n.Pos, VCall: n.VCall}
	recv := f.Self
	switch n.Receiver.(type) {
	case nil, SelfNode:
		site.Implicit = true
	default:
		v, stop := n.Receiver.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		recv = v
	}
	args, r, stop := evalList(f, n.Args)
	if stop != NoStop {
		return r, stop
	}
	var block *Proc
	switch {
	case n.Block != nil:
		block = n.Block.proc(f)
	case n.BlockArg != nil:
		v, stop := n.BlockArg.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		p, r, stop := f.VM.ToProc(v)
		if stop != NoStop {
			return r, stop
		}
		block = p
	}
	r, stop = f.VM.dispatch(f, site, recv, n.Name, block, args)
	if stop.Kind == ExceptionStop {
		if e, ok := r.(*Exception); ok && e.Pos.Line == 0 {
			e.Pos = n.Pos
		}
	}
	return r, stop
}

// YieldNode calls the block of the frame Depth frames out, which is the
// nearest method, module, or top-level frame.
type YieldNode struct {
	Args  []Node
	Depth int
	Pos   ast.Pos
}

func (n *YieldNode) Execute(f *Frame) (Value, Stop) {
	b := f.Outer(n.Depth).Block
	if b == nil {
		return f.VM.RaiseAt(n.Pos, "LocalJumpError", "no block given (yield)")
	}
	args, r, stop := evalList(f, n.Args)
	if stop != NoStop {
		return r, stop
	}
	return b.Call(f.VM, f, nil, args...)
}

// BlockNode creates a proc over the current frame.
type BlockNode struct {
	Unit   *RootUnit
	Lambda bool
}

func (n *BlockNode) Execute(f *Frame) (Value, Stop) {
	return n.proc(f), NoStop
}

func (n *BlockNode) proc(f *Frame) *Proc {
	return &Proc{Closure: &Closure{Unit: n.Unit, Snapshot: f}, Self: f.Self, Lambda: n.Lambda}
}

// DefNode defines a method on the lexical module. The method's visibility
// comes from the scope's visibility slot, if it has one; when the slot is
// unset, DefaultPrivate decides.
type DefNode struct {
	Name              string
	Unit              *RootUnit
	HasVis            bool
	VisDepth, VisSlot int
	DefaultPrivate    bool
	Pos               ast.Pos
}

func (n *DefNode) Execute(f *Frame) (Value, Stop) {
	vis := Public
	if n.DefaultPrivate {
		vis = Private
	}
	if n.HasVis {
		switch f.Get(n.VisDepth, n.VisSlot) {
		case Symbol("private"):
			vis = Private
		case Symbol("public"):
			vis = Public
		}
	}
	owner := f.Module
	m := &Method{Name: n.Name, Owner: owner, Visibility: vis, Closure: &Closure{Unit: n.Unit}}
	m.Closure.Rebind(m)
	owner.Define(m)
	if log := f.VM.Log; log != nil {
		log.Debug("defined method", "name", n.Name, "owner", owner.Name, "visibility", vis)
	}
	return Symbol(n.Name), NoStop
}

// ModuleNode opens a module, creating it if needed, and runs its body with
// the module as self.
type ModuleNode struct {
	Name string
	Unit *RootUnit
	Pos  ast.Pos
}

func (n *ModuleNode) Execute(f *Frame) (Value, Stop) {
	outer := f.Module
	var mod *Module
	if v, ok := outer.Const(n.Name); ok {
		mod, ok = v.(*Module)
		if !ok {
			return f.VM.RaiseAt(n.Pos, "TypeError", "%s is not a module", n.Name)
		}
	} else {
		name := n.Name
		if outer != f.VM.Object {
			name = outer.Name + "::" + n.Name
		}
		mod = NewModule(name, nil, outer)
		outer.SetConst(n.Name, mod)
	}
	c := &Closure{Unit: n.Unit}
	return c.Invoke(f.VM, f, mod, nil)
}

// OptionalArg is an optional parameter and its default.
type OptionalArg struct {
	Slot    int
	Default Node
}

// LoadArgs binds a frame's arguments to its parameter slots. Strict binding
// is for methods and lambdas, which raise ArgumentError on the wrong number
// of arguments. Lenient binding is for blocks, which fill missing
// parameters with nil, drop extra arguments, and spread a lone Array
// argument across multiple parameters. Rest and Block are -1 when absent.
type LoadArgs struct {
	Required []int
	Optional []OptionalArg
	Rest     int
	Block    int
	Strict   bool
	Pos      ast.Pos
}

func (n *LoadArgs) Execute(f *Frame) (Value, Stop) {
	args := f.Args
	req, opt := len(n.Required), len(n.Optional)
	if !n.Strict && len(args) == 1 && (req+opt > 1 || (req+opt > 0 && n.Rest >= 0)) {
		if a, ok := args[0].(*Array); ok {
			args = a.Elems
		}
	}
	if n.Strict && (len(args) < req || (n.Rest < 0 && len(args) > req+opt)) {
		return f.VM.RaiseAt(n.Pos, "ArgumentError", "wrong number of arguments (given %d, expected %s)", len(args), n.expected())
	}
	i := 0
	for _, s := range n.Required {
		if i < len(args) {
			f.Slots[s] = args[i]
			i++
		}
	}
	for _, o := range n.Optional {
		if i < len(args) {
			f.Slots[o.Slot] = args[i]
			i++
			continue
		}
		v, stop := o.Default.Execute(f)
		if stop != NoStop {
			return v, stop
		}
		f.Slots[o.Slot] = v
	}
	if n.Rest >= 0 {
		rest := NewArray()
		if i < len(args) {
			rest.Elems = append(rest.Elems, args[i:]...)
		}
		f.Slots[n.Rest] = rest
	}
	if n.Block >= 0 && f.Block != nil {
		f.Slots[n.Block] = f.Block
	}
	return nil, NoStop
}

func (n *LoadArgs) expected() string {
	req, opt := len(n.Required), len(n.Optional)
	switch {
	case n.Rest >= 0:
		return fmt.Sprintf("%d+", req)
	case opt > 0:
		return fmt.Sprintf("%d..%d", req, req+opt)
	}
	return fmt.Sprint(req)
}
