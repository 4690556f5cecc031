package internal

import (
	"sort"
	"sync"
)

// Primitive is a built-in method implemented in Go.
type Primitive func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop)

// Primitives is a registry of built-in methods by class name and method
// name. Calls consult it only at execution time.
type Primitives struct {
	mu sync.RWMutex
	m  map[string]map[string]Primitive
}

// NewPrimitives creates an empty registry.
func NewPrimitives() *Primitives {
	return &Primitives{m: make(map[string]map[string]Primitive)}
}

// SingletonKey returns the registry class name for methods of the module
// itself, such as Symbol.all_symbols.
func SingletonKey(module string) string {
	return "#<Class:" + module + ">"
}

// Register adds or replaces a primitive.
func (p *Primitives) Register(class, name string, f Primitive) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.m[class]
	if c == nil {
		c = make(map[string]Primitive)
		p.m[class] = c
	}
	c[name] = f
}

// RegisterAll adds or replaces several primitives of one class.
func (p *Primitives) RegisterAll(class string, fns map[string]Primitive) {
	for name, f := range fns {
		p.Register(class, name, f)
	}
}

// Lookup returns the primitive for a method, or nil if there is none.
func (p *Primitives) Lookup(class, name string) Primitive {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.m[class][name]
}

// Names returns the sorted names of the primitives of a class.
func (p *Primitives) Names(class string) []string {
	p.mu.RLock()
	r := make([]string, 0, len(p.m[class]))
	for name := range p.m[class] {
		r = append(r, name)
	}
	p.mu.RUnlock()
	sort.Strings(r)
	return r
}

// CheckArgs raises an ArgumentError unless the number of arguments is
// between min and max inclusive. A negative max means no upper limit.
func (vm *VM) CheckArgs(args []Value, min, max int) (Value, Stop) {
	n := len(args)
	if n >= min && (max < 0 || n <= max) {
		return nil, NoStop
	}
	switch {
	case max < 0:
		return vm.Raise("ArgumentError", "wrong number of arguments (given %d, expected %d+)", n, min)
	case min == max:
		return vm.Raise("ArgumentError", "wrong number of arguments (given %d, expected %d)", n, min)
	}
	return vm.Raise("ArgumentError", "wrong number of arguments (given %d, expected %d..%d)", n, min, max)
}

// IntArg returns args[i] as an integer, or raises a TypeError if it is not
// one. The caller must have checked the argument count.
func (vm *VM) IntArg(args []Value, i int) (int64, Value, Stop) {
	n, ok := args[i].(int64)
	if !ok {
		r, stop := vm.Raise("TypeError", "no implicit conversion of %s into Integer", vm.ClassOf(args[i]).Name)
		return 0, r, stop
	}
	return n, nil, NoStop
}

// StringArg returns args[i] as a string, or raises a TypeError if it is not
// one. The caller must have checked the argument count.
func (vm *VM) StringArg(args []Value, i int) (string, Value, Stop) {
	s, ok := args[i].(string)
	if !ok {
		r, stop := vm.Raise("TypeError", "no implicit conversion of %s into String", vm.ClassOf(args[i]).Name)
		return "", r, stop
	}
	return s, nil, NoStop
}

// NameArg returns args[i] as a method or constant name, accepting symbols
// and strings.
func (vm *VM) NameArg(args []Value, i int) (string, Value, Stop) {
	switch v := args[i].(type) {
	case Symbol:
		return string(v), nil, NoStop
	case string:
		return v, nil, NoStop
	}
	r, stop := vm.Raise("TypeError", "%s is not a symbol nor a string", Inspect(args[i]))
	return "", r, stop
}

// needBlock raises a LocalJumpError if block is nil.
func (vm *VM) needBlock(block *Proc) (Value, Stop) {
	if block == nil {
		return vm.Raise("LocalJumpError", "no block given (yield)")
	}
	return nil, NoStop
}
