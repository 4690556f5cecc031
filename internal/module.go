package internal

import (
	"sort"
	"sync"

	"github.com/zephyrtronium/contains"
)

// Visibility controls whether a method may be called with an explicit
// receiver.
type Visibility int

// Method visibilities.
const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// Module is a namespace of constants and user-defined methods. Classes of
// built-in values are also Modules; their behavior comes from primitives
// registered under their names.
//
// Method and constant tables may be modified while programs run, so they are
// guarded by a lock.
type Module struct {
	// Name is the qualified name of the module.
	Name string
	// Super is the module's superclass, or nil for Object.
	Super *Module
	// Lexical is the module in which this module was defined.
	Lexical *Module

	mu      sync.RWMutex
	methods map[string]*Method
	consts  map[string]Value
	order   []string
}

// NewModule creates a new module.
func NewModule(name string, super, lexical *Module) *Module {
	return &Module{
		Name:    name,
		Super:   super,
		Lexical: lexical,
		methods: make(map[string]*Method),
		consts:  make(map[string]Value),
	}
}

// Method returns the method defined directly on the module with the given
// name, or nil if there is none.
func (m *Module) Method(name string) *Method {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.methods[name]
}

// Define adds a method to the module, replacing any method of the same name.
func (m *Module) Define(meth *Method) {
	m.mu.Lock()
	m.methods[meth.Name] = meth
	m.mu.Unlock()
}

// SetVisibility changes the visibility of a method defined on the module.
// Returns false if there is no such method.
func (m *Module) SetVisibility(name string, vis Visibility) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	meth := m.methods[name]
	if meth == nil {
		return false
	}
	// Methods are shared with anything that looked them up already, so
	// replace rather than modify.
	cp := *meth
	cp.Visibility = vis
	m.methods[name] = &cp
	return true
}

// Methods returns the names of the module's methods in sorted order.
func (m *Module) Methods() []string {
	m.mu.RLock()
	r := make([]string, 0, len(m.methods))
	for name := range m.methods {
		r = append(r, name)
	}
	m.mu.RUnlock()
	sort.Strings(r)
	return r
}

// Const returns the constant defined directly on the module.
func (m *Module) Const(name string) (Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.consts[name]
	return v, ok
}

// SetConst defines or redefines a constant on the module.
func (m *Module) SetConst(name string, v Value) {
	m.mu.Lock()
	if _, ok := m.consts[name]; !ok {
		m.order = append(m.order, name)
	}
	m.consts[name] = v
	m.mu.Unlock()
}

// Constants returns the names of the module's constants in definition order.
func (m *Module) Constants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// IsA reports whether m is other or inherits from it.
func (m *Module) IsA(other *Module) bool {
	set := contains.Set{}
	for p := m; p != nil; p = p.Super {
		if !set.Add(p.UniqueID()) {
			// Cyclic ancestry, only possible by assigning Super directly.
			return false
		}
		if p == other {
			return true
		}
	}
	return false
}

// Ancestors returns m followed by its superclasses.
func (m *Module) Ancestors() []*Module {
	set := contains.Set{}
	var r []*Module
	for p := m; p != nil && set.Add(p.UniqueID()); p = p.Super {
		r = append(r, p)
	}
	return r
}

// Method is a named, user-defined method.
type Method struct {
	Name       string
	Owner      *Module
	Visibility Visibility
	Closure    *Closure
}

// Call invokes the method with the given receiver.
func (m *Method) Call(vm *VM, caller *Frame, self Value, block *Proc, args ...Value) (Value, Stop) {
	return m.Closure.invoke(vm, caller, self, block, args, m)
}

// Arity returns the method's arity in the usual encoding: the number of
// required parameters, or its one's complement if more are accepted.
func (m *Method) Arity() int {
	return m.Closure.Unit.Arity.Value()
}
