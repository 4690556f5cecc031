package internal

import (
	"fmt"
	"io"
)

// initKernel registers the Kernel primitives, which are reachable only by
// calls with an implicit receiver.
func (vm *VM) initKernel() {
	vm.Primitives.RegisterAll("Kernel", map[string]Primitive{
		"puts":         KernelPuts,
		"print":        KernelPrint,
		"p":            KernelP,
		"raise":        KernelRaise,
		"proc":         KernelProc,
		"lambda":       KernelLambda,
		"loop":         KernelLoop,
		"block_given?": KernelBlockGiven,
		"private":      KernelVisibility(Private),
		"public":       KernelVisibility(Public),
		"__method__":   KernelMethod,
	})
}

// AsString converts a value to a string by calling its to_s method. If
// to_s does not produce a string, the value's inspection is used.
func (vm *VM) AsString(caller *Frame, v Value) (string, Value, Stop) {
	if s, ok := v.(string); ok {
		return s, nil, NoStop
	}
	r, stop := vm.Send(caller, v, "to_s", nil)
	if stop != NoStop {
		return "", r, stop
	}
	if s, ok := r.(string); ok {
		return s, nil, NoStop
	}
	return Inspect(v), nil, NoStop
}

// KernelPuts is a Kernel method.
//
// puts writes each argument followed by a newline. Arrays are written one
// element per line.
func KernelPuts(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if len(args) == 0 {
		io.WriteString(vm.Stdout, "\n")
		return nil, NoStop
	}
	for _, arg := range args {
		if r, stop := vm.putsOne(caller, arg); stop != NoStop {
			return r, stop
		}
	}
	return nil, NoStop
}

func (vm *VM) putsOne(caller *Frame, v Value) (Value, Stop) {
	if a, ok := v.(*Array); ok {
		if len(a.Elems) == 0 {
			io.WriteString(vm.Stdout, "\n")
		}
		for _, e := range a.Elems {
			if e == v {
				io.WriteString(vm.Stdout, "[...]\n")
				continue
			}
			if r, stop := vm.putsOne(caller, e); stop != NoStop {
				return r, stop
			}
		}
		return nil, NoStop
	}
	s := ""
	if v != nil {
		var r Value
		var stop Stop
		s, r, stop = vm.AsString(caller, v)
		if stop != NoStop {
			return r, stop
		}
	}
	if len(s) == 0 || s[len(s)-1] != '\n' {
		s += "\n"
	}
	io.WriteString(vm.Stdout, s)
	return nil, NoStop
}

// KernelPrint is a Kernel method.
//
// print writes each argument without separators.
func KernelPrint(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	for _, arg := range args {
		s, r, stop := vm.AsString(caller, arg)
		if stop != NoStop {
			return r, stop
		}
		io.WriteString(vm.Stdout, s)
	}
	return nil, NoStop
}

// KernelP is a Kernel method.
//
// p writes the inspection of each argument on its own line. It returns its
// argument, or an array of its arguments if there are several.
func KernelP(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	for _, arg := range args {
		fmt.Fprintln(vm.Stdout, Inspect(arg))
	}
	switch len(args) {
	case 0:
		return nil, NoStop
	case 1:
		return args[0], NoStop
	}
	return NewArray(append([]Value(nil), args...)...), NoStop
}

// KernelRaise is a Kernel method.
//
// raise raises an exception. With no arguments or a string, it raises a
// RuntimeError. With an exception class and optional message, it raises a
// new instance of the class. With an exception, it raises that exception.
func KernelRaise(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 0, 2); stop != NoStop {
		return r, stop
	}
	if len(args) == 0 {
		return vm.Raise("RuntimeError", "unhandled exception")
	}
	msg := ""
	if len(args) == 2 {
		s, r, stop := vm.AsString(caller, args[1])
		if stop != NoStop {
			return r, stop
		}
		msg = s
	}
	switch v := args[0].(type) {
	case string:
		if len(args) == 1 {
			return vm.Raise("RuntimeError", "%s", v)
		}
	case *Module:
		if v.IsA(vm.Classes["Exception"]) {
			if msg == "" {
				msg = v.Name
			}
			return RaiseException(&Exception{Class: v, Message: msg})
		}
	case *Exception:
		if len(args) == 2 {
			return RaiseException(&Exception{Class: v.Class, Message: msg})
		}
		return RaiseException(v)
	}
	return vm.Raise("TypeError", "exception class/object expected")
}

// KernelProc is a Kernel method.
//
// proc returns its block.
func KernelProc(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	return block, NoStop
}

// KernelLambda is a Kernel method.
//
// lambda returns its block, which must be a lambda. Literal blocks given to
// lambda are translated as lambdas, so this accepts them and &arg lambdas.
func KernelLambda(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	if !block.Lambda {
		return vm.Raise("ArgumentError", "the lambda method requires a literal block")
	}
	return block, NoStop
}

// KernelLoop is a Kernel method.
//
// loop calls its block until the block returns or raises.
func KernelLoop(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	for {
		r, stop := block.Call(vm, caller, nil)
		if stop != NoStop {
			return r, stop
		}
	}
}

// KernelBlockGiven is a Kernel method.
//
// block_given? reports whether the current method was called with a block.
func KernelBlockGiven(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if caller == nil {
		return false, NoStop
	}
	return caller.MethodFrame().Block != nil, NoStop
}

// KernelVisibility returns the Kernel method private or public.
//
// Without arguments, it sets the visibility of methods defined later in the
// current scope. With method names, it sets the visibility of those methods.
func KernelVisibility(vis Visibility) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		if caller == nil {
			return nil, NoStop
		}
		if len(args) == 0 {
			for p := caller; p != nil; p = p.Declaration {
				if s, ok := p.Unit.Layout.Find(visibilitySlot); ok {
					p.Slots[s] = Symbol(vis.String())
					break
				}
				if p.Unit.Kind.methodBoundary() {
					break
				}
			}
			return nil, NoStop
		}
		for i := range args {
			name, r, stop := vm.NameArg(args, i)
			if stop != NoStop {
				return r, stop
			}
			if !caller.Module.SetVisibility(name, vis) && !vm.Object.SetVisibility(name, vis) {
				return vm.Raise("NameError", "undefined method '%s' for %s", name, vm.describe(caller.Module))
			}
		}
		if len(args) == 1 {
			return args[0], NoStop
		}
		return NewArray(append([]Value(nil), args...)...), NoStop
	}
}

// KernelMethod is a Kernel method.
//
// __method__ returns the name of the current method as a symbol, or nil
// outside a method.
func KernelMethod(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if caller == nil || caller.Method == nil {
		return nil, NoStop
	}
	return Symbol(caller.Method.Name), NoStop
}
