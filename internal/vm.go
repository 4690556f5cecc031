package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/zephyrtronium/contains"

	"github.com/zephyrtronium/rubble/ast"
)

// Version is the interpreter version, used for the RUBBLE_VERSION constant.
const Version = "1"

// builtinClasses lists the classes of built-in values. Each inherits from
// Object.
var builtinClasses = [...]string{
	"Module", "NilClass", "TrueClass", "FalseClass", "Integer", "Float",
	"String", "Symbol", "Array", "Range", "Proc", "Method",
}

// VM is an object for running programs. A VM may run any number of units
// concurrently, but programs which share mutable values across goroutines
// must synchronize those values themselves.
type VM struct {
	// Session translates source units for the VM.
	Session *Session
	// Object is the root module. It holds top-level constants and methods.
	Object *Module
	// Main is the receiver of top-level code.
	Main *Object
	// Classes holds the built-in classes by name. It must not be modified
	// after NewVM returns.
	Classes map[string]*Module
	// Primitives holds the built-in methods.
	Primitives *Primitives
	// Parser parses source text for DoString and friends.
	Parser Parser
	// Log receives debug output.
	Log *log.Logger
	// Stdout is where puts and friends write.
	Stdout io.Writer
}

// NewVM prepares a new VM which parses source with p.
func NewVM(p Parser) *VM {
	vm := &VM{
		Parser:     p,
		Log:        log.NewWithOptions(io.Discard, log.Options{}),
		Stdout:     os.Stdout,
		Primitives: NewPrimitives(),
	}
	vm.Session = NewSession(vm)
	// Classes must exist before anything can raise exceptions, and the
	// primitives refer to classes by name.
	vm.initClasses()
	vm.initKernel()
	vm.initObject()
	vm.initNumber()
	vm.initString()
	vm.initSymbol()
	vm.initArray()
	vm.initRange()
	vm.initProc()
	vm.initModule()
	vm.initException()
	vm.initBool()
	vm.initSystem()
	return vm
}

// SetLogger sets the logger for the VM and its session.
func (vm *VM) SetLogger(l *log.Logger) {
	vm.Log = l
	vm.Session.Log = l
}

// initClasses creates the built-in classes and binds each to a constant on
// Object.
func (vm *VM) initClasses() {
	vm.Object = NewModule("Object", nil, nil)
	vm.Classes = map[string]*Module{"Object": vm.Object}
	vm.Object.SetConst("Object", vm.Object)
	for _, name := range builtinClasses {
		c := NewModule(name, vm.Object, nil)
		vm.Classes[name] = c
		vm.Object.SetConst(name, c)
	}
	for _, e := range exceptionClasses {
		c := NewModule(e[0], vm.Classes[e[1]], nil)
		vm.Classes[e[0]] = c
		vm.Object.SetConst(e[0], c)
	}
	vm.Main = &Object{Class: vm.Object, Name: "main"}
}

// ClassOf returns the class of a value.
func (vm *VM) ClassOf(v Value) *Module {
	var name string
	switch v := v.(type) {
	case nil:
		name = "NilClass"
	case bool:
		if v {
			name = "TrueClass"
		} else {
			name = "FalseClass"
		}
	case int64:
		name = "Integer"
	case float64:
		name = "Float"
	case string:
		name = "String"
	case Symbol:
		name = "Symbol"
	case *Array:
		name = "Array"
	case *Range:
		name = "Range"
	case *Proc:
		name = "Proc"
	case *Method:
		name = "Method"
	case *Module:
		name = "Module"
	case *Exception:
		return v.Class
	case *Object:
		if v.Class != nil {
			return v.Class
		}
	case *ShellResult:
		return vm.ClassOf(v.Value)
	}
	if c := vm.Classes[name]; c != nil {
		return c
	}
	return vm.Object
}

// LookupConst finds a constant visible from the lexical module m. The
// lexical chain is searched first, then the ancestors of m, then Object.
func (vm *VM) LookupConst(m *Module, name string) (Value, bool) {
	set := contains.Set{}
	for p := m; p != nil && set.Add(p.UniqueID()); p = p.Lexical {
		if v, ok := p.Const(name); ok {
			return v, true
		}
	}
	if m != nil {
		for _, a := range m.Ancestors() {
			if v, ok := a.Const(name); ok {
				return v, true
			}
		}
	}
	return vm.Object.Const(name)
}

// CallSite describes how a call was written.
type CallSite struct {
	Pos ast.Pos
	// Implicit is true when the receiver is self, written or not. Only
	// implicit calls can reach private methods.
	Implicit bool
	// VCall is true when the call was a bare identifier.
	VCall bool
}

// Send calls a method on recv. Like the send method, it ignores visibility.
func (vm *VM) Send(caller *Frame, recv Value, name string, block *Proc, args ...Value) (Value, Stop) {
	return vm.dispatch(caller, CallSite{Implicit: true}, recv, name, block, args)
}

// dispatch finds and calls a method. User methods on a module receiver are
// consulted first, then user methods on Object, then primitives by the
// receiver's class ancestry, and finally Kernel primitives for implicit
// calls.
func (vm *VM) dispatch(caller *Frame, site CallSite, recv Value, name string, block *Proc, args []Value) (Value, Stop) {
	if m := vm.FindMethod(recv, name); m != nil {
		if m.Visibility == Private && !site.Implicit {
			return vm.RaiseAt(site.Pos, "NoMethodError", "private method '%s' called for %s", name, vm.describe(recv))
		}
		return m.Call(vm, caller, recv, block, args...)
	}
	if p := vm.FindPrimitive(recv, name, site.Implicit); p != nil {
		return p(vm, caller, recv, block, args)
	}
	if site.VCall {
		return vm.RaiseAt(site.Pos, "NameError", "undefined local variable or method '%s' for %s", name, vm.describe(recv))
	}
	return vm.RaiseAt(site.Pos, "NoMethodError", "undefined method '%s' for %s", name, vm.describe(recv))
}

// FindMethod returns the user method that a call to name on recv runs, or
// nil if there is none.
func (vm *VM) FindMethod(recv Value, name string) *Method {
	if mod, ok := recv.(*Module); ok {
		for _, a := range mod.Ancestors() {
			if m := a.Method(name); m != nil {
				return m
			}
		}
	}
	return vm.Object.Method(name)
}

// FindPrimitive returns the primitive that a call to name on recv runs, or
// nil if there is none.
func (vm *VM) FindPrimitive(recv Value, name string, implicit bool) Primitive {
	if mod, ok := recv.(*Module); ok {
		for _, a := range mod.Ancestors() {
			if p := vm.Primitives.Lookup(SingletonKey(a.Name), name); p != nil {
				return p
			}
		}
	}
	for _, c := range vm.ClassOf(recv).Ancestors() {
		if p := vm.Primitives.Lookup(c.Name, name); p != nil {
			return p
		}
	}
	if implicit {
		return vm.Primitives.Lookup("Kernel", name)
	}
	return nil
}

// RespondTo reports whether recv has a public method named name.
func (vm *VM) RespondTo(recv Value, name string) bool {
	if m := vm.FindMethod(recv, name); m != nil {
		return m.Visibility == Public
	}
	return vm.FindPrimitive(recv, name, false) != nil
}

// describe formats a receiver for error messages.
func (vm *VM) describe(recv Value) string {
	switch v := recv.(type) {
	case nil:
		return "nil"
	case *Module:
		return "module " + v.Name
	}
	return fmt.Sprintf("%s:%s", Inspect(recv), vm.ClassOf(recv).Name)
}

// ToProc converts the value of a &arg argument to a block.
func (vm *VM) ToProc(v Value) (*Proc, Value, Stop) {
	switch v := v.(type) {
	case nil:
		return nil, nil, NoStop
	case *Proc:
		return v, nil, NoStop
	case Symbol:
		return &Proc{Lambda: true, Symbol: v}, nil, NoStop
	}
	r, stop := vm.Raise("TypeError", "wrong argument type %s (expected Proc)", vm.ClassOf(v).Name)
	return nil, r, stop
}

// Load runs a unit with no enclosing frame. If the unit is a top-level unit
// with data following __END__, the data becomes the DATA constant first.
func (vm *VM) Load(unit *RootUnit, self Value) (Value, Stop) {
	if unit.Data != nil && unit.Kind == TopLevelUnit {
		vm.Object.SetConst("DATA", *unit.Data)
	}
	c := &Closure{Unit: unit}
	return c.Invoke(vm, nil, self, nil)
}

// Eval runs a unit translated against parent's bindings.
func (vm *VM) Eval(unit *RootUnit, parent *Frame) (Value, Stop) {
	c := &Closure{Unit: unit, Snapshot: parent}
	return c.Invoke(vm, parent, parent.Self, nil)
}

// DoString parses and runs source text. Top-level and shell code runs with
// Main as self; module context code runs with Object as self.
func (vm *VM) DoString(src, label string, ctx ParserContext) (Value, error) {
	unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: label, Text: src}, ctx, nil)
	if err != nil {
		return nil, err
	}
	var self Value = vm.Main
	if ctx == ModuleContext {
		self = vm.Object
	}
	return result(vm.Load(unit, self))
}

// DoReader reads all of r and runs it as top-level code.
func (vm *VM) DoReader(r io.Reader, label string) (Value, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return vm.DoString(string(b), label, TopLevelContext)
}

// Shell runs one piece of interactive input. If parent is not nil, the input
// sees the bindings of the frame of an earlier result.
func (vm *VM) Shell(src, label string, parent *Frame) (*ShellResult, error) {
	unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: label, Text: src}, ShellContext, parent)
	if err != nil {
		return nil, err
	}
	var r Value
	var stop Stop
	if parent == nil {
		r, stop = vm.Load(unit, vm.Main)
	} else {
		r, stop = vm.Eval(unit, parent)
	}
	if err := stop.Err(r); err != nil {
		return nil, err
	}
	return r.(*ShellResult), nil
}

// ModuleEval runs source text in module context with mod as self, so that
// constants it assigns are defined on mod.
func (vm *VM) ModuleEval(mod *Module, src, label string) (Value, error) {
	unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: label, Text: src}, ModuleContext, nil)
	if err != nil {
		return nil, err
	}
	return result(vm.Load(unit, mod))
}

// result converts an escaped signal into an error.
func result(r Value, stop Stop) (Value, error) {
	if err := stop.Err(r); err != nil {
		return nil, err
	}
	return r, nil
}
