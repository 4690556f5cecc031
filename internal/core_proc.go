package internal

// initProc registers Proc and Method primitives.
func (vm *VM) initProc() {
	vm.Primitives.RegisterAll("Proc", map[string]Primitive{
		"call":    ProcCall,
		"yield":   ProcCall,
		"[]":      ProcCall,
		"===":     ProcCall,
		"arity":   ProcArity,
		"lambda?": ProcIsLambda,
		"to_proc": ProcToProc,
	})
	vm.Primitives.RegisterAll("Method", map[string]Primitive{
		"name":  MethodName,
		"owner": MethodOwner,
		"arity": MethodArity,
	})
}

// ProcCall is a Proc method.
//
// call runs the proc with the given arguments and block.
func ProcCall(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Proc).Call(vm, caller, block, args...)
}

// ProcArity is a Proc method.
//
// arity returns the number of arguments the proc takes, or its one's
// complement if it takes optional arguments.
func ProcArity(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return int64(self.(*Proc).Arity()), NoStop
}

// ProcIsLambda is a Proc method.
//
// lambda? reports whether the proc is a lambda.
func ProcIsLambda(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Proc).Lambda, NoStop
}

// ProcToProc is a Proc method.
//
// to_proc returns the receiver.
func ProcToProc(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self, NoStop
}

// MethodName is a Method method.
//
// name returns the method's name as a symbol.
func MethodName(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return Symbol(self.(*Method).Name), NoStop
}

// MethodOwner is a Method method.
//
// owner returns the module defining the method.
func MethodOwner(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Method).Owner, NoStop
}

// MethodArity is a Method method.
//
// arity returns the method's arity.
func MethodArity(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return int64(self.(*Method).Arity()), NoStop
}

// initModule registers Module primitives.
func (vm *VM) initModule() {
	vm.Primitives.RegisterAll("Module", map[string]Primitive{
		"name":             ModuleName,
		"to_s":             ModuleName,
		"===":              ModuleCaseEqual,
		"const_get":        ModuleConstGet,
		"const_set":        ModuleConstSet,
		"constants":        ModuleConstants,
		"instance_methods": ModuleInstanceMethods,
		"instance_method":  ModuleInstanceMethod,
		"method_defined?":  ModuleMethodDefined,
		"module_eval":      ModuleEval,
		"class_eval":       ModuleEval,
	})
}

// ModuleName is a Module method.
//
// name returns the module's qualified name.
func ModuleName(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Module).Name, NoStop
}

// ModuleCaseEqual is a Module method.
//
// === reports whether the argument is an instance of the module.
func ModuleCaseEqual(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return vm.ClassOf(args[0]).IsA(self.(*Module)), NoStop
}

// ModuleConstGet is a Module method.
//
// const_get returns the value of a constant defined on the module or its
// ancestors.
func ModuleConstGet(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	m := self.(*Module)
	for _, a := range m.Ancestors() {
		if v, ok := a.Const(name); ok {
			return v, NoStop
		}
	}
	if v, ok := vm.Object.Const(name); ok {
		return v, NoStop
	}
	return vm.Raise("NameError", "uninitialized constant %s::%s", m.Name, name)
}

// ModuleConstSet is a Module method.
//
// const_set defines a constant on the module.
func ModuleConstSet(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 2, 2); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return vm.Raise("NameError", "wrong constant name %s", name)
	}
	self.(*Module).SetConst(name, args[1])
	return args[1], NoStop
}

// ModuleConstants is a Module method.
//
// constants returns the names of the module's constants as symbols, in
// definition order.
func ModuleConstants(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return symbolArray(self.(*Module).Constants()), NoStop
}

// ModuleInstanceMethods is a Module method.
//
// instance_methods returns the names of the public methods defined on the
// module as symbols, in sorted order.
func ModuleInstanceMethods(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	m := self.(*Module)
	var names []string
	for _, name := range m.Methods() {
		if meth := m.Method(name); meth != nil && meth.Visibility == Public {
			names = append(names, name)
		}
	}
	return symbolArray(names), NoStop
}

// ModuleInstanceMethod is a Module method.
//
// instance_method returns the named method defined on the module.
func ModuleInstanceMethod(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	m := self.(*Module)
	if meth := m.Method(name); meth != nil {
		return meth, NoStop
	}
	return vm.Raise("NameError", "undefined method '%s' for module '%s'", name, m.Name)
}

// ModuleMethodDefined is a Module method.
//
// method_defined? reports whether the module defines a public method of the
// given name.
func ModuleMethodDefined(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	meth := self.(*Module).Method(name)
	return meth != nil && meth.Visibility == Public, NoStop
}

// ModuleEval is a Module method.
//
// module_eval evaluates a string in module context with the module as self.
// Constants it assigns are defined on the module.
func ModuleEval(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 2); stop != NoStop {
		return r, stop
	}
	src, r, stop := vm.StringArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	label := "(eval)"
	if len(args) == 2 {
		if label, r, stop = vm.StringArg(args, 1); stop != NoStop {
			return r, stop
		}
	}
	r, err := vm.ModuleEval(self.(*Module), src, label)
	if err != nil {
		if e, ok := err.(*Exception); ok {
			return RaiseException(e)
		}
		return vm.Raise("RuntimeError", "%v", err)
	}
	return r, NoStop
}

func symbolArray(names []string) *Array {
	r := make([]Value, len(names))
	for i, name := range names {
		r[i] = Symbol(name)
	}
	return NewArray(r...)
}

// initException registers Exception primitives.
func (vm *VM) initException() {
	vm.Primitives.RegisterAll("Exception", map[string]Primitive{
		"message": ExceptionMessage,
		"to_s":    ExceptionMessage,
	})
	vm.Primitives.Register(SingletonKey("Exception"), "new", ExceptionNew)
}

// ExceptionMessage is an Exception method.
//
// message returns the exception's message.
func ExceptionMessage(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Exception).Message, NoStop
}

// ExceptionNew is a method of Exception and its subclasses.
//
// new creates an exception of the receiving class. The message defaults to
// the class name.
func ExceptionNew(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 0, 1); stop != NoStop {
		return r, stop
	}
	class := self.(*Module)
	msg := class.Name
	if len(args) == 1 {
		s, r, stop := vm.AsString(caller, args[0])
		if stop != NoStop {
			return r, stop
		}
		msg = s
	}
	return &Exception{Class: class, Message: msg}, NoStop
}
