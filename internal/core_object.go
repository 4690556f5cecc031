package internal

// initObject registers the primitives every value has.
func (vm *VM) initObject() {
	vm.Primitives.RegisterAll("Object", map[string]Primitive{
		"==":          ObjectEqual,
		"===":         ObjectEqual,
		"!=":          ObjectNotEqual,
		"!":           ObjectNot,
		"equal?":      ObjectIdentical,
		"nil?":        ObjectIsNil,
		"to_s":        ObjectToS,
		"inspect":     ObjectInspect,
		"class":       ObjectClass,
		"is_a?":       ObjectIsA,
		"kind_of?":    ObjectIsA,
		"respond_to?": ObjectRespondTo,
		"send":        ObjectSend,
		"__send__":    ObjectSend,
		"tap":         ObjectTap,
	})
}

// ObjectEqual is an Object method.
//
// == reports whether two values are equal.
func ObjectEqual(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return Equal(self, args[0]), NoStop
}

// ObjectNotEqual is an Object method.
//
// != is the negation of ==.
func ObjectNotEqual(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	r, stop := vm.Send(caller, self, "==", nil, args[0])
	if stop != NoStop {
		return r, stop
	}
	return !Truthy(r), NoStop
}

// ObjectNot is an Object method.
//
// ! is logical negation.
func ObjectNot(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return !Truthy(self), NoStop
}

// ObjectIdentical is an Object method.
//
// equal? reports whether two values are the same object.
func ObjectIdentical(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return self == args[0], NoStop
}

// ObjectIsNil is an Object method.
//
// nil? reports whether the receiver is nil.
func ObjectIsNil(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self == nil, NoStop
}

// ObjectToS is an Object method.
//
// to_s returns the default string form of the receiver.
func ObjectToS(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return ToS(self), NoStop
}

// ObjectInspect is an Object method.
//
// inspect returns a developer-facing string form of the receiver.
func ObjectInspect(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return Inspect(self), NoStop
}

// ObjectClass is an Object method.
//
// class returns the class of the receiver.
func ObjectClass(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return vm.ClassOf(self), NoStop
}

// ObjectIsA is an Object method.
//
// is_a? reports whether the receiver's class is the argument or inherits
// from it.
func ObjectIsA(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	m, ok := args[0].(*Module)
	if !ok {
		return vm.Raise("TypeError", "class or module required")
	}
	return vm.ClassOf(self).IsA(m), NoStop
}

// ObjectRespondTo is an Object method.
//
// respond_to? reports whether the receiver has a public method of the
// given name.
func ObjectRespondTo(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	return vm.RespondTo(self, name), NoStop
}

// ObjectSend is an Object method.
//
// send calls the named method with the remaining arguments and the block,
// regardless of the method's visibility.
func ObjectSend(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, -1); stop != NoStop {
		return r, stop
	}
	name, r, stop := vm.NameArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	return vm.Send(caller, self, name, block, args[1:]...)
}

// ObjectTap is an Object method.
//
// tap calls its block with the receiver and returns the receiver.
func ObjectTap(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	if r, stop := block.Call(vm, caller, nil, self); stop != NoStop {
		return r, stop
	}
	return self, NoStop
}

// initBool registers the primitives of nil, true, and false.
func (vm *VM) initBool() {
	vm.Primitives.RegisterAll("NilClass", map[string]Primitive{
		"to_s": ObjectToS,
		"to_a": NilToA,
		"&":    BoolAnd,
		"|":    BoolOr,
	})
	vm.Primitives.RegisterAll("TrueClass", map[string]Primitive{
		"&": BoolAnd,
		"|": BoolOr,
		"^": BoolXor,
	})
	vm.Primitives.RegisterAll("FalseClass", map[string]Primitive{
		"&": BoolAnd,
		"|": BoolOr,
		"^": BoolXor,
	})
}

// NilToA is a NilClass method.
//
// to_a returns an empty array.
func NilToA(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return NewArray(), NoStop
}

// BoolAnd is a NilClass, TrueClass, and FalseClass method.
//
// & is logical conjunction without short-circuiting.
func BoolAnd(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return Truthy(self) && Truthy(args[0]), NoStop
}

// BoolOr is a NilClass, TrueClass, and FalseClass method.
//
// | is logical disjunction without short-circuiting.
func BoolOr(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return Truthy(self) || Truthy(args[0]), NoStop
}

// BoolXor is a TrueClass and FalseClass method.
//
// ^ is logical exclusive or.
func BoolXor(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return Truthy(self) != Truthy(args[0]), NoStop
}
