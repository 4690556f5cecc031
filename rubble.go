package rubble

import (
	"github.com/zephyrtronium/rubble/internal"
	"github.com/zephyrtronium/rubble/parser"
)

// Core types, re-exported for embedders.
type (
	VM          = internal.VM
	Value       = internal.Value
	Stop        = internal.Stop
	StopKind    = internal.StopKind
	Frame       = internal.Frame
	Proc        = internal.Proc
	Module      = internal.Module
	Method      = internal.Method
	Array       = internal.Array
	Range       = internal.Range
	Symbol      = internal.Symbol
	Exception   = internal.Exception
	Primitive   = internal.Primitive
	RootUnit    = internal.RootUnit
	ShellResult = internal.ShellResult

	ParserContext = internal.ParserContext
	DebugManager  = internal.DebugManager
	LoadLogger    = internal.LoadLogger
)

// Translation contexts.
const (
	TopLevelContext = internal.TopLevelContext
	ShellContext    = internal.ShellContext
	ModuleContext   = internal.ModuleContext
)

// Control flow reasons.
const (
	Normal        = internal.Normal
	NextStop      = internal.NextStop
	ReturnStop    = internal.ReturnStop
	RetryStop     = internal.RetryStop
	ExceptionStop = internal.ExceptionStop
)

// NoStop indicates normal execution.
var NoStop = internal.NoStop

// Version is the interpreter version.
const Version = internal.Version

// NewVM creates a VM which parses source with the standard parser.
func NewVM() *VM {
	return internal.NewVM(parser.Parser{})
}

// NewArray creates an array value.
func NewArray(elems ...Value) *Array {
	return internal.NewArray(elems...)
}

// Inspect returns the developer-facing string form of a value.
func Inspect(v Value) string {
	return internal.Inspect(v)
}
