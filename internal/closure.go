package internal

// Closure pairs a unit with the frame it was created in. The snapshot is
// shared, not copied: every closure created over the same frame sees the
// others' writes to captured variables. Neither field changes after
// construction.
type Closure struct {
	Unit *RootUnit
	// Snapshot is the lexically enclosing frame, or nil for units with no
	// enclosing scope.
	Snapshot *Frame
}

// Invoke runs the closure's unit in a fresh frame. A return targeting the
// unit's own frame becomes the result; every other signal is returned to the
// caller.
func (c *Closure) Invoke(vm *VM, caller *Frame, self Value, block *Proc, args ...Value) (Value, Stop) {
	return c.invoke(vm, caller, self, block, args, c.Unit.Method())
}

// Rebind attaches a method identity to the closure's unit. It is a no-op for
// units which are not method bodies.
func (c *Closure) Rebind(m *Method) {
	c.Unit.Rebind(m)
}

func (c *Closure) invoke(vm *VM, caller *Frame, self Value, block *Proc, args []Value, method *Method) (Value, Stop) {
	u := c.Unit
	f := &Frame{
		VM:          vm,
		Unit:        u,
		Slots:       make([]Value, u.Layout.Size()),
		Self:        self,
		Block:       block,
		Args:        args,
		Declaration: c.Snapshot,
		Method:      method,
		Caller:      caller,
		active:      1,
	}
	switch {
	case u.Kind == ModuleUnit:
		f.Module, _ = self.(*Module)
	case method != nil:
		f.Module = method.Owner
	case c.Snapshot != nil:
		f.Module = c.Snapshot.Module
		if f.Method == nil {
			f.Method = c.Snapshot.Method
		}
	}
	if f.Module == nil {
		f.Module = vm.Object
	}
	result, stop := u.Entry.Execute(f)
	if u.Kind.returnBoundary() {
		f.deactivate()
	}
	if stop.Kind == ReturnStop && stop.Target == u.ReturnID && stop.Frame == f {
		return result, NoStop
	}
	return result, stop
}

// Proc is a block or lambda value.
type Proc struct {
	*Closure
	// Self is the receiver the block runs with.
	Self Value
	// Lambda is true for lambdas, which check their arguments strictly and
	// catch their own returns.
	Lambda bool
	// Symbol, if not empty, makes the proc call the named method on its
	// first argument.
	Symbol Symbol
}

// Call runs the proc.
func (p *Proc) Call(vm *VM, caller *Frame, block *Proc, args ...Value) (Value, Stop) {
	if p.Symbol != "" {
		if len(args) == 0 {
			return vm.Raise("ArgumentError", "no receiver given")
		}
		return vm.Send(caller, args[0], string(p.Symbol), block, args[1:]...)
	}
	return p.Invoke(vm, caller, p.Self, block, args...)
}

// Arity returns the proc's arity. Non-lambda procs whose only extra
// parameters are optional report just their required count.
func (p *Proc) Arity() int {
	if p.Symbol != "" {
		return -2
	}
	a := p.Unit.Arity
	if !p.Lambda && a.Optional > 0 && !a.Rest {
		return a.Required
	}
	return a.Value()
}
