package internal

import (
	"fmt"

	"github.com/zephyrtronium/rubble/ast"
)

// PlaceholderMessage is the message of errors whose cause has none.
const PlaceholderMessage = "(no message)"

// Exception is a raised language error. It implements error so that it can
// be returned from Go APIs unchanged.
type Exception struct {
	Class   *Module
	Message string
	// Pos is where the exception was raised, if known.
	Pos ast.Pos
}

func (e *Exception) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Class.Name, e.Message)
	}
	return fmt.Sprintf("%v: %s: %s", e.Pos, e.Class.Name, e.Message)
}

// IsA reports whether the exception is an instance of class or one of its
// subclasses.
func (e *Exception) IsA(class *Module) bool {
	return e.Class.IsA(class)
}

// exceptionClasses lists the built-in exception hierarchy, parents first.
var exceptionClasses = [...][2]string{
	{"Exception", "Object"},
	{"StandardError", "Exception"},
	{"RuntimeError", "StandardError"},
	{"ArgumentError", "StandardError"},
	{"NameError", "StandardError"},
	{"NoMethodError", "NameError"},
	{"TypeError", "StandardError"},
	{"ZeroDivisionError", "StandardError"},
	{"LocalJumpError", "StandardError"},
	{"IndexError", "StandardError"},
	{"ScriptError", "Exception"},
	{"SyntaxError", "ScriptError"},
}

// NewException creates an exception of the named class. If the class does
// not exist, the exception is a RuntimeError. An empty message becomes
// PlaceholderMessage.
func (vm *VM) NewException(class, msg string) *Exception {
	c := vm.Classes[class]
	if c == nil {
		c = vm.Classes["RuntimeError"]
	}
	if msg == "" {
		msg = PlaceholderMessage
	}
	return &Exception{Class: c, Message: msg}
}

// Raise creates an exception and returns it with ExceptionStop.
func (vm *VM) Raise(class, format string, args ...interface{}) (Value, Stop) {
	return vm.NewException(class, fmt.Sprintf(format, args...)), Stop{Kind: ExceptionStop}
}

// RaiseAt is like Raise, but records the position of the exception.
func (vm *VM) RaiseAt(pos ast.Pos, class, format string, args ...interface{}) (Value, Stop) {
	e := vm.NewException(class, fmt.Sprintf(format, args...))
	e.Pos = pos
	return e, Stop{Kind: ExceptionStop}
}

// RaiseException raises an existing exception.
func RaiseException(e *Exception) (Value, Stop) {
	return e, Stop{Kind: ExceptionStop}
}
