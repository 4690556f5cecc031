package internal

import (
	"fmt"
	"sync/atomic"

	"github.com/zephyrtronium/rubble/ast"
)

// UnitKind is the syntactic form a unit was translated from.
type UnitKind int

// Unit kinds.
const (
	TopLevelUnit UnitKind = iota
	ModuleUnit
	MethodUnit
	BlockUnit
	LambdaUnit
)

var unitKindNames = [...]string{"top-level", "module", "method", "block", "lambda"}

func (k UnitKind) String() string {
	if k < TopLevelUnit || k > LambdaUnit {
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
	return unitKindNames[k]
}

// methodBoundary reports whether frames of the unit hold the block that
// yield calls.
func (k UnitKind) methodBoundary() bool {
	return k == TopLevelUnit || k == ModuleUnit || k == MethodUnit
}

// returnBoundary reports whether frames of the unit are return targets.
func (k UnitKind) returnBoundary() bool {
	return k != BlockUnit
}

// Arity summarizes a unit's parameters.
type Arity struct {
	Required, Optional int
	Rest               bool
}

// Value returns the arity in the usual encoding: the number of required
// parameters, or its one's complement if more are accepted.
func (a Arity) Value() int {
	if a.Optional > 0 || a.Rest {
		return -a.Required - 1
	}
	return a.Required
}

// RootUnit is the immutable product of translating one body. It may be
// invoked any number of times concurrently; all per-call state lives in the
// frames its invocations create.
type RootUnit struct {
	Kind UnitKind
	// Name is the indicative name of the unit, e.g. (main) or a method name.
	Name     string
	Pos      ast.Pos
	ReturnID ReturnID
	Layout   *FrameLayout
	Entry    Node
	Arity    Arity
	// Data is the text following __END__ in a top-level source.
	Data *string

	// method is the method identity of a method unit, attached once by
	// Rebind.
	method atomic.Pointer[Method]
}

// Method returns the method identity attached to the unit, or nil.
func (u *RootUnit) Method() *Method {
	return u.method.Load()
}

// Rebind attaches a method identity to a method unit. It does nothing if
// the unit is not a method body or already has an identity.
func (u *RootUnit) Rebind(m *Method) {
	if u.Kind != MethodUnit {
		return
	}
	u.method.CompareAndSwap(nil, m)
}

func (u *RootUnit) String() string {
	return fmt.Sprintf("%s unit %s at %v", u.Kind, u.Name, u.Pos)
}

// ShellResult is the result of a shell unit. It carries the unit's frame so
// that later input can be evaluated against the same bindings.
type ShellResult struct {
	Value Value
	Frame *Frame
}
