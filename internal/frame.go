package internal

import "sync/atomic"

// FrameLayout describes the slots of the frames a unit creates. Layouts are
// immutable.
type FrameLayout struct {
	// Names holds the name of each slot. Hidden slots have names beginning
	// with %.
	Names []string
}

// Size returns the number of slots in the layout.
func (l *FrameLayout) Size() int {
	if l == nil {
		return 0
	}
	return len(l.Names)
}

// Find returns the slot holding name.
func (l *FrameLayout) Find(name string) (int, bool) {
	if l == nil {
		return 0, false
	}
	for i, n := range l.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Frame is the state of one invocation of a unit. A frame captured by a
// block is shared by every closure created over it, so writes through one
// are visible through all of them. Frames are not synchronized.
type Frame struct {
	VM   *VM
	Unit *RootUnit
	// Slots holds local variables and hidden state, as laid out by
	// Unit.Layout.
	Slots []Value
	Self  Value
	// Block is the block passed to the invocation, if any.
	Block *Proc
	// Args is the argument list of the invocation.
	Args []Value
	// Declaration is the frame in which the invoked closure was created,
	// i.e. the lexically enclosing frame.
	Declaration *Frame
	// Module is the lexical module for constants and method definitions.
	Module *Module
	// Method is the method being run, for __method__.
	Method *Method
	// Caller is the frame which invoked this one.
	Caller *Frame

	// active is nonzero until a frame which can be the target of a return
	// finishes.
	active int32
}

// Outer returns the frame depth levels out along the declaration chain.
func (f *Frame) Outer(depth int) *Frame {
	for ; depth > 0 && f != nil; depth-- {
		f = f.Declaration
	}
	return f
}

// Get returns the value of a slot depth frames out.
func (f *Frame) Get(depth, slot int) Value {
	return f.Outer(depth).Slots[slot]
}

// Set sets the value of a slot depth frames out.
func (f *Frame) Set(depth, slot int, v Value) {
	f.Outer(depth).Slots[slot] = v
}

// Active reports whether a return targeting this frame can still be
// caught.
func (f *Frame) Active() bool {
	return atomic.LoadInt32(&f.active) != 0
}

func (f *Frame) deactivate() {
	atomic.StoreInt32(&f.active, 0)
}

// MethodFrame returns the nearest frame, following the declaration chain,
// which belongs to a method, module body, or top-level unit. Blocks yield to
// and report the block of that frame.
func (f *Frame) MethodFrame() *Frame {
	for p := f; p != nil; p = p.Declaration {
		if p.Unit == nil || p.Unit.Kind.methodBoundary() {
			return p
		}
	}
	return f
}

// Lookup returns the value of the named local variable visible from f, if
// there is one.
func (f *Frame) Lookup(name string) (Value, bool) {
	for p := f; p != nil && p.Unit != nil; p = p.Declaration {
		if s, ok := p.Unit.Layout.Find(name); ok {
			return p.Slots[s], true
		}
		if k := p.Unit.Kind; k == MethodUnit || k == ModuleUnit {
			break
		}
	}
	return nil, false
}
