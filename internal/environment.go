package internal

import (
	"fmt"
	"strings"
)

// EnvKind is the kind of scope an Environment describes.
type EnvKind int

// Environment kinds.
const (
	// TopLevelEnv is the scope of a top-level or shell unit. It is a method
	// boundary unless it has a parent, which happens for shell input
	// evaluated against earlier bindings.
	TopLevelEnv EnvKind = iota
	// MethodEnv is the scope of a method body.
	MethodEnv
	// ModuleEnv is the scope of a module body.
	ModuleEnv
	// BlockEnv is the scope of a block literal.
	BlockEnv
	// LambdaEnv is the scope of a lambda. Lambdas catch their own returns.
	LambdaEnv
	// EvalEnv is a scope rebuilt from a live frame.
	EvalEnv
)

var envKindNames = [...]string{"top-level", "method", "module", "block", "lambda", "eval"}

func (k EnvKind) String() string {
	if k < TopLevelEnv || k > EvalEnv {
		return fmt.Sprintf("EnvKind(%d)", int(k))
	}
	return envKindNames[k]
}

// visibilitySlot is the hidden slot holding the default visibility for
// methods defined in a scope.
const visibilitySlot = "%visibility"

// Environment is the translation-time record of one lexical scope. It maps
// variable names to frame slots and carries the scope's return ID. An
// Environment may be the parent of any number of others. It lives only as
// long as the translation of its scope; the unit produced keeps a copy of its
// layout.
type Environment struct {
	parent *Environment
	kind   EnvKind
	id     ReturnID

	names []string
	slots map[string]int
	// flipFlops holds the slots of flip-flop states registered in this
	// scope.
	flipFlops []int
}

// NewEnvironment creates a scope whose return ID is drawn from the session.
// If declarationSlots is true, the scope reserves hidden slots for method
// definition state.
func (s *Session) NewEnvironment(parent *Environment, kind EnvKind, declarationSlots bool) *Environment {
	e := &Environment{
		parent: parent,
		kind:   kind,
		id:     s.AllocateReturnID(),
		slots:  make(map[string]int),
	}
	if declarationSlots {
		e.Declare(visibilitySlot)
	}
	return e
}

// Parent returns the enclosing scope, or nil.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Kind returns the kind of scope.
func (e *Environment) Kind() EnvKind {
	return e.kind
}

// ReturnID returns the scope's return ID.
func (e *Environment) ReturnID() ReturnID {
	return e.id
}

// Declare allocates a slot for name in this scope. If name is already
// declared here, its existing slot is returned.
func (e *Environment) Declare(name string) int {
	if s, ok := e.slots[name]; ok {
		return s
	}
	s := len(e.names)
	e.names = append(e.names, name)
	e.slots[name] = s
	return s
}

// methodBoundary reports whether name resolution stops at this scope.
func (e *Environment) methodBoundary() bool {
	switch e.kind {
	case MethodEnv, ModuleEnv:
		return true
	case TopLevelEnv:
		return e.parent == nil
	}
	return false
}

// returnBoundary reports whether a return within this scope exits this
// scope's unit.
func (e *Environment) returnBoundary() bool {
	switch e.kind {
	case TopLevelEnv, MethodEnv, ModuleEnv, LambdaEnv:
		return true
	}
	return false
}

// Resolve finds the slot holding name. depth is the number of scopes out
// from e at which the name was found. Resolution crosses block scopes but
// stops after the first method boundary.
func (e *Environment) Resolve(name string) (depth, slot int, ok bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.slots[name]; ok {
			return depth, s, true
		}
		if env.methodBoundary() {
			break
		}
		depth++
	}
	return 0, 0, false
}

// ResolveOrDeclare resolves name, declaring it in e if it is not visible.
func (e *Environment) ResolveOrDeclare(name string) (depth, slot int) {
	if depth, slot, ok := e.Resolve(name); ok {
		return depth, slot
	}
	return 0, e.Declare(name)
}

// ReturnTarget returns the depth and return ID of the nearest scope which a
// return exits.
func (e *Environment) ReturnTarget() (depth int, id ReturnID) {
	env := e
	for ; env.parent != nil; env = env.parent {
		if env.returnBoundary() {
			break
		}
		depth++
	}
	return depth, env.id
}

// MethodDepth returns the depth of the nearest method boundary, whose frame
// holds the block that yield calls.
func (e *Environment) MethodDepth() int {
	depth := 0
	for env := e; env.parent != nil && !env.methodBoundary(); env = env.parent {
		depth++
	}
	return depth
}

// AddFlipFlop registers a flip-flop state in the nearest return boundary so
// that the state persists across calls to inner blocks. Returns the depth
// and slot of the state.
func (e *Environment) AddFlipFlop() (depth, slot int) {
	env := e
	for ; env.parent != nil && !env.returnBoundary(); env = env.parent {
		depth++
	}
	slot = env.Declare(fmt.Sprintf("%%flipflop%d", len(env.flipFlops)))
	env.flipFlops = append(env.flipFlops, slot)
	return depth, slot
}

// Layout returns a snapshot of the scope's slots.
func (e *Environment) Layout() *FrameLayout {
	return &FrameLayout{Names: append([]string(nil), e.names...)}
}

// Locals returns the names of source-visible variables in this scope and
// every enclosing scope up to the method boundary.
func (e *Environment) Locals() []string {
	var r []string
	for env := e; env != nil; env = env.parent {
		for _, name := range env.names {
			if !strings.HasPrefix(name, "%") {
				r = append(r, name)
			}
		}
		if env.methodBoundary() {
			break
		}
	}
	return r
}
