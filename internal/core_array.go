package internal

import (
	"strings"
)

// initArray registers Array primitives.
func (vm *VM) initArray() {
	vm.Primitives.RegisterAll("Array", map[string]Primitive{
		"each":            ArrayEach,
		"each_with_index": ArrayEachWithIndex,
		"map":             ArrayMap,
		"collect":         ArrayMap,
		"select":          ArraySelect(true),
		"filter":          ArraySelect(true),
		"reject":          ArraySelect(false),
		"inject":          ArrayInject,
		"reduce":          ArrayInject,
		"<<":              ArrayPush,
		"push":            ArrayPush,
		"pop":             ArrayPop,
		"[]":              ArrayAt,
		"[]=":             ArrayAtPut,
		"size":            ArraySize,
		"length":          ArraySize,
		"empty?":          ArrayEmpty,
		"first":           ArrayFirst,
		"last":            ArrayLast,
		"include?":        ArrayInclude,
		"join":            ArrayJoin,
		"reverse":         ArrayReverse,
		"to_a":            ArrayToA,
	})
}

// ArrayEach is an Array method.
//
// each calls its block with each element and returns the receiver. Elements
// appended by the block are visited too.
func ArrayEach(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	a := self.(*Array)
	for i := 0; i < len(a.Elems); i++ {
		if r, stop := block.Call(vm, caller, nil, a.Elems[i]); stop != NoStop {
			return r, stop
		}
	}
	return self, NoStop
}

// ArrayEachWithIndex is an Array method.
//
// each_with_index calls its block with each element and its index.
func ArrayEachWithIndex(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	a := self.(*Array)
	for i := 0; i < len(a.Elems); i++ {
		if r, stop := block.Call(vm, caller, nil, a.Elems[i], int64(i)); stop != NoStop {
			return r, stop
		}
	}
	return self, NoStop
}

// ArrayMap is an Array method.
//
// map returns a new array of the results of calling its block with each
// element.
func ArrayMap(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	a := self.(*Array)
	r := make([]Value, 0, len(a.Elems))
	for i := 0; i < len(a.Elems); i++ {
		v, stop := block.Call(vm, caller, nil, a.Elems[i])
		if stop != NoStop {
			return v, stop
		}
		r = append(r, v)
	}
	return NewArray(r...), NoStop
}

// ArraySelect returns the Array method select, or reject if keep is false.
//
// select returns a new array of the elements for which the block is true.
// reject returns those for which it is false.
func ArraySelect(keep bool) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		if r, stop := vm.needBlock(block); stop != NoStop {
			return r, stop
		}
		a := self.(*Array)
		var r []Value
		for i := 0; i < len(a.Elems); i++ {
			e := a.Elems[i]
			v, stop := block.Call(vm, caller, nil, e)
			if stop != NoStop {
				return v, stop
			}
			if Truthy(v) == keep {
				r = append(r, e)
			}
		}
		return NewArray(r...), NoStop
	}
}

// ArrayInject is an Array method.
//
// inject combines the elements with its block, starting from the argument
// if given or the first element otherwise.
func ArrayInject(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 0, 1); stop != NoStop {
		return r, stop
	}
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	elems := self.(*Array).Elems
	var acc Value
	if len(args) == 1 {
		acc = args[0]
	} else if len(elems) > 0 {
		acc, elems = elems[0], elems[1:]
	}
	for _, e := range elems {
		v, stop := block.Call(vm, caller, nil, acc, e)
		if stop != NoStop {
			return v, stop
		}
		acc = v
	}
	return acc, NoStop
}

// ArrayPush is an Array method.
//
// push appends its arguments to the receiver and returns the receiver.
func ArrayPush(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	a := self.(*Array)
	a.Elems = append(a.Elems, args...)
	return self, NoStop
}

// ArrayPop is an Array method.
//
// pop removes and returns the last element, or nil if the array is empty.
func ArrayPop(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	a := self.(*Array)
	if len(a.Elems) == 0 {
		return nil, NoStop
	}
	v := a.Elems[len(a.Elems)-1]
	a.Elems = a.Elems[:len(a.Elems)-1]
	return v, NoStop
}

// arrayIndex converts a possibly negative index into a slice index.
func arrayIndex(i int64, n int) (int, bool) {
	if i < 0 {
		i += int64(n)
	}
	return int(i), i >= 0 && i < int64(n)
}

// ArrayAt is an Array method.
//
// [] returns the element at an index, counting from the end if negative, or
// nil if the index is out of range.
func ArrayAt(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	i, r, stop := vm.IntArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	a := self.(*Array)
	k, ok := arrayIndex(i, len(a.Elems))
	if !ok {
		return nil, NoStop
	}
	return a.Elems[k], NoStop
}

// ArrayAtPut is an Array method.
//
// []= sets the element at an index. Setting past the end pads the array with
// nil.
func ArrayAtPut(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 2, 2); stop != NoStop {
		return r, stop
	}
	i, r, stop := vm.IntArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	a := self.(*Array)
	k, ok := arrayIndex(i, len(a.Elems))
	if !ok {
		if k < 0 {
			return vm.Raise("IndexError", "index %d too small for array; minimum: -%d", i, len(a.Elems))
		}
		for len(a.Elems) <= k {
			a.Elems = append(a.Elems, nil)
		}
	}
	a.Elems[k] = args[1]
	return args[1], NoStop
}

// ArraySize is an Array method.
//
// size returns the number of elements.
func ArraySize(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return int64(len(self.(*Array).Elems)), NoStop
}

// ArrayEmpty is an Array method.
//
// empty? reports whether the array has no elements.
func ArrayEmpty(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return len(self.(*Array).Elems) == 0, NoStop
}

// ArrayFirst is an Array method.
//
// first returns the first element, or nil.
func ArrayFirst(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	a := self.(*Array)
	if len(a.Elems) == 0 {
		return nil, NoStop
	}
	return a.Elems[0], NoStop
}

// ArrayLast is an Array method.
//
// last returns the last element, or nil.
func ArrayLast(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	a := self.(*Array)
	if len(a.Elems) == 0 {
		return nil, NoStop
	}
	return a.Elems[len(a.Elems)-1], NoStop
}

// ArrayInclude is an Array method.
//
// include? reports whether any element is equal to the argument.
func ArrayInclude(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	for _, e := range self.(*Array).Elems {
		if Equal(e, args[0]) {
			return true, NoStop
		}
	}
	return false, NoStop
}

// ArrayJoin is an Array method.
//
// join converts each element to a string and joins them with the separator,
// default empty. Nested arrays are joined recursively.
func ArrayJoin(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 0, 1); stop != NoStop {
		return r, stop
	}
	sep := ""
	if len(args) == 1 && args[0] != nil {
		s, r, stop := vm.StringArg(args, 0)
		if stop != NoStop {
			return r, stop
		}
		sep = s
	}
	var b strings.Builder
	if r, stop := vm.join(caller, &b, self.(*Array), sep, nil); stop != NoStop {
		return r, stop
	}
	return b.String(), NoStop
}

// join writes the elements of a to b. path holds the arrays being joined
// which contain a.
func (vm *VM) join(caller *Frame, b *strings.Builder, a *Array, sep string, path []*Array) (Value, Stop) {
	for _, p := range path {
		if p == a {
			return vm.Raise("ArgumentError", "recursive array join")
		}
	}
	path = append(path, a)
	for i, e := range a.Elems {
		if i > 0 {
			b.WriteString(sep)
		}
		if inner, ok := e.(*Array); ok {
			if r, stop := vm.join(caller, b, inner, sep, path); stop != NoStop {
				return r, stop
			}
			continue
		}
		s, r, stop := vm.AsString(caller, e)
		if stop != NoStop {
			return r, stop
		}
		b.WriteString(s)
	}
	return nil, NoStop
}

// ArrayReverse is an Array method.
//
// reverse returns a new array with the elements in reverse order.
func ArrayReverse(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	elems := self.(*Array).Elems
	r := make([]Value, len(elems))
	for i, e := range elems {
		r[len(elems)-1-i] = e
	}
	return NewArray(r...), NoStop
}

// ArrayToA is an Array method.
//
// to_a returns the receiver.
func ArrayToA(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self, NoStop
}

// initRange registers Range primitives.
func (vm *VM) initRange() {
	vm.Primitives.RegisterAll("Range", map[string]Primitive{
		"each":     RangeEach,
		"to_a":     RangeToA,
		"map":      RangeMap,
		"include?": RangeInclude,
		"member?":  RangeInclude,
		"===":      RangeInclude,
		"first":    RangeFirst,
		"last":     RangeLast,
		"size":     RangeSize,
	})
}

// RangeEach is a Range method.
//
// each calls its block with each integer in the range.
func RangeEach(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	rg := self.(*Range)
	last, ok := rg.Last()
	if !ok {
		return self, NoStop
	}
	for i := rg.Lo; i <= last; i++ {
		if r, stop := block.Call(vm, caller, nil, i); stop != NoStop {
			return r, stop
		}
	}
	return self, NoStop
}

// RangeToA is a Range method.
//
// to_a returns an array of the integers in the range.
func RangeToA(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Range).ToArray(), NoStop
}

// RangeMap is a Range method.
//
// map returns an array of the results of calling its block with each
// integer in the range.
func RangeMap(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return ArrayMap(vm, caller, self.(*Range).ToArray(), block, args)
}

// RangeInclude is a Range method.
//
// include? reports whether the argument is an integer in the range.
func RangeInclude(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	n, ok := args[0].(int64)
	return ok && self.(*Range).Contains(n), NoStop
}

// RangeFirst is a Range method.
//
// first returns the low end of the range.
func RangeFirst(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Range).Lo, NoStop
}

// RangeLast is a Range method.
//
// last returns the high end of the range.
func RangeLast(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(*Range).Hi, NoStop
}

// RangeSize is a Range method.
//
// size returns the number of integers in the range.
func RangeSize(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	rg := self.(*Range)
	last, ok := rg.Last()
	if !ok {
		return int64(0), NoStop
	}
	return last - rg.Lo + 1, NoStop
}
