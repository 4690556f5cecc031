package internal

import (
	"math"
	"strconv"
)

// initNumber registers Integer and Float primitives.
func (vm *VM) initNumber() {
	shared := map[string]Primitive{
		"+":    NumberArith("+"),
		"-":    NumberArith("-"),
		"*":    NumberArith("*"),
		"/":    NumberArith("/"),
		"%":    NumberArith("%"),
		"**":   NumberArith("**"),
		"==":   NumberEqual,
		"<":    NumberCompare("<"),
		"<=":   NumberCompare("<="),
		">":    NumberCompare(">"),
		">=":   NumberCompare(">="),
		"<=>":  NumberCmp,
		"-@":   NumberNeg,
		"+@":   NumberPos,
		"abs":  NumberAbs,
		"to_i": NumberToI,
		"to_f": NumberToF,
	}
	vm.Primitives.RegisterAll("Integer", shared)
	vm.Primitives.RegisterAll("Float", shared)
	vm.Primitives.RegisterAll("Integer", map[string]Primitive{
		"times":  IntegerTimes,
		"upto":   IntegerUpto,
		"downto": IntegerDownto,
		"succ":   IntegerSucc,
		"zero?":  IntegerZero,
		"even?":  IntegerEven,
		"odd?":   IntegerOdd,
		"to_s":   IntegerToS,
	})
}

// NumberArith returns the Integer and Float arithmetic operator op. Integer
// operands give an Integer result; any Float operand makes the result a
// Float. Integer division and modulus round toward negative infinity.
func NumberArith(op string) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
			return r, stop
		}
		x, xf, ok1 := numeric(self)
		y, yf, ok2 := numeric(args[0])
		if !ok1 || !ok2 {
			return vm.Raise("TypeError", "%s can't be coerced into %s", vm.ClassOf(args[0]).Name, vm.ClassOf(self).Name)
		}
		if xf || yf {
			return floatArith(op, x, y), NoStop
		}
		return intArith(vm, op, self.(int64), args[0].(int64))
	}
}

// numeric converts a number to float64, reporting whether it was a Float.
func numeric(v Value) (x float64, isFloat, ok bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), false, true
	case float64:
		return v, true, true
	}
	return 0, false, false
}

func intArith(vm *VM, op string, x, y int64) (Value, Stop) {
	switch op {
	case "+":
		return x + y, NoStop
	case "-":
		return x - y, NoStop
	case "*":
		return x * y, NoStop
	case "/":
		if y == 0 {
			return vm.Raise("ZeroDivisionError", "divided by 0")
		}
		q := x / y
		if x%y != 0 && (x < 0) != (y < 0) {
			q--
		}
		return q, NoStop
	case "%":
		if y == 0 {
			return vm.Raise("ZeroDivisionError", "divided by 0")
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m, NoStop
	case "**":
		if y < 0 {
			return math.Pow(float64(x), float64(y)), NoStop
		}
		r := int64(1)
		for ; y > 0; y >>= 1 {
			if y&1 != 0 {
				r *= x
			}
			x *= x
		}
		return r, NoStop
	}
	panic("rubble: unknown arithmetic operator " + op)
}

func floatArith(op string, x, y float64) float64 {
	switch op {
	case "+":
		return x + y
	case "-":
		return x - y
	case "*":
		return x * y
	case "/":
		return x / y
	case "%":
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return m
	case "**":
		return math.Pow(x, y)
	}
	panic("rubble: unknown arithmetic operator " + op)
}

// NumberEqual is an Integer and Float method.
//
// == compares numbers by value across Integer and Float.
func NumberEqual(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	return Equal(self, args[0]), NoStop
}

// NumberCompare returns the Integer and Float comparison operator op.
func NumberCompare(op string) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
			return r, stop
		}
		c, ok := compareNumbers(self, args[0])
		if !ok {
			return vm.Raise("ArgumentError", "comparison of %s with %s failed", vm.ClassOf(self).Name, Inspect(args[0]))
		}
		switch op {
		case "<":
			return c < 0, NoStop
		case "<=":
			return c <= 0, NoStop
		case ">":
			return c > 0, NoStop
		case ">=":
			return c >= 0, NoStop
		}
		panic("rubble: unknown comparison operator " + op)
	}
}

// compareNumbers returns -1, 0, or 1 as x is less than, equal to, or
// greater than y.
func compareNumbers(x, y Value) (int, bool) {
	if a, ok := x.(int64); ok {
		if b, ok := y.(int64); ok {
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			}
			return 0, true
		}
	}
	a, _, ok1 := numeric(x)
	b, _, ok2 := numeric(y)
	if !ok1 || !ok2 || math.IsNaN(a) || math.IsNaN(b) {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

// NumberCmp is an Integer and Float method.
//
// <=> returns -1, 0, or 1 as the receiver is less than, equal to, or greater
// than the argument, or nil if they are not comparable.
func NumberCmp(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	c, ok := compareNumbers(self, args[0])
	if !ok {
		return nil, NoStop
	}
	return int64(c), NoStop
}

// NumberNeg is an Integer and Float method.
//
// -@ is unary negation.
func NumberNeg(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if n, ok := self.(int64); ok {
		return -n, NoStop
	}
	return -self.(float64), NoStop
}

// NumberPos is an Integer and Float method.
//
// +@ returns the receiver.
func NumberPos(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self, NoStop
}

// NumberAbs is an Integer and Float method.
//
// abs returns the absolute value of the receiver.
func NumberAbs(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if n, ok := self.(int64); ok {
		if n < 0 {
			return -n, NoStop
		}
		return n, NoStop
	}
	return math.Abs(self.(float64)), NoStop
}

// NumberToI is an Integer and Float method.
//
// to_i truncates the receiver to an Integer.
func NumberToI(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if n, ok := self.(int64); ok {
		return n, NoStop
	}
	f := self.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return vm.Raise("ArgumentError", "%s cannot be converted to Integer", FormatFloat(f))
	}
	return int64(f), NoStop
}

// NumberToF is an Integer and Float method.
//
// to_f converts the receiver to a Float.
func NumberToF(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	x, _, _ := numeric(self)
	return x, NoStop
}

// IntegerTimes is an Integer method.
//
// times calls its block with each integer from zero up to but excluding the
// receiver and returns the receiver.
func IntegerTimes(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	n := self.(int64)
	for i := int64(0); i < n; i++ {
		if r, stop := block.Call(vm, caller, nil, i); stop != NoStop {
			return r, stop
		}
	}
	return self, NoStop
}

// IntegerUpto is an Integer method.
//
// upto calls its block with each integer from the receiver up to and
// including the argument.
func IntegerUpto(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return intStep(vm, caller, self, block, args, 1)
}

// IntegerDownto is an Integer method.
//
// downto calls its block with each integer from the receiver down to and
// including the argument.
func IntegerDownto(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return intStep(vm, caller, self, block, args, -1)
}

func intStep(vm *VM, caller *Frame, self Value, block *Proc, args []Value, step int64) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	if r, stop := vm.needBlock(block); stop != NoStop {
		return r, stop
	}
	limit, r, stop := vm.IntArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	for i := self.(int64); (step > 0 && i <= limit) || (step < 0 && i >= limit); i += step {
		if r, stop := block.Call(vm, caller, nil, i); stop != NoStop {
			return r, stop
		}
	}
	return self, NoStop
}

// IntegerSucc is an Integer method.
//
// succ returns the next integer.
func IntegerSucc(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(int64) + 1, NoStop
}

// IntegerZero is an Integer method.
//
// zero? reports whether the receiver is zero.
func IntegerZero(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(int64) == 0, NoStop
}

// IntegerEven is an Integer method.
//
// even? reports whether the receiver is even.
func IntegerEven(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(int64)%2 == 0, NoStop
}

// IntegerOdd is an Integer method.
//
// odd? reports whether the receiver is odd.
func IntegerOdd(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(int64)%2 != 0, NoStop
}

// IntegerToS is an Integer method.
//
// to_s formats the receiver in the given base, default 10.
func IntegerToS(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 0, 1); stop != NoStop {
		return r, stop
	}
	base := int64(10)
	if len(args) == 1 {
		b, r, stop := vm.IntArg(args, 0)
		if stop != NoStop {
			return r, stop
		}
		if b < 2 || b > 36 {
			return vm.Raise("ArgumentError", "invalid radix %d", b)
		}
		base = b
	}
	return strconv.FormatInt(self.(int64), int(base)), NoStop
}
