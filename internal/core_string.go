package internal

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// initString registers String primitives.
func (vm *VM) initString() {
	vm.Primitives.RegisterAll("String", map[string]Primitive{
		"+":        StringAdd,
		"*":        StringRepeat,
		"==":       ObjectEqual,
		"<=>":      StringCmp,
		"length":   StringLength,
		"size":     StringLength,
		"to_s":     StringToS,
		"to_sym":   StringToSym,
		"to_i":     StringToI,
		"upcase":   StringCase(cases.Upper),
		"downcase": StringCase(cases.Lower),
		"empty?":   StringEmpty,
		"include?": StringInclude,
		"reverse":  StringReverse,
	})
}

// StringAdd is a String method.
//
// + concatenates two strings.
func StringAdd(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	s, r, stop := vm.StringArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	return self.(string) + s, NoStop
}

// StringRepeat is a String method.
//
// * repeats the receiver.
func StringRepeat(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	n, r, stop := vm.IntArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	if n < 0 {
		return vm.Raise("ArgumentError", "negative argument")
	}
	return strings.Repeat(self.(string), int(n)), NoStop
}

// StringCmp is a String method.
//
// <=> compares strings bytewise, or returns nil for a non-string.
func StringCmp(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, NoStop
	}
	return int64(strings.Compare(self.(string), s)), NoStop
}

// StringLength is a String method.
//
// length returns the number of characters in the string.
func StringLength(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return int64(utf8.RuneCountInString(self.(string))), NoStop
}

// StringToS is a String method.
//
// to_s returns the receiver.
func StringToS(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self, NoStop
}

// StringToSym is a String method.
//
// to_sym returns the symbol with the receiver's text.
func StringToSym(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return vm.Session.Intern(self.(string)), NoStop
}

// StringToI is a String method.
//
// to_i parses a leading decimal integer, ignoring leading whitespace and
// anything after the digits. It returns 0 if there is no integer.
func StringToI(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	s := strings.TrimLeft(self.(string), " \t\r\n\f\v")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && ('0' <= s[end] && s[end] <= '9' || s[end] == '_' && end > digits) {
		end++
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s[:end], "_", ""), 10, 64)
	if err != nil {
		return int64(0), NoStop
	}
	return n, NoStop
}

// caser creates a language-neutral case mapping, e.g. cases.Upper.
type caser func(language.Tag, ...cases.Option) cases.Caser

// StringCase returns a String method which maps the string's case, e.g.
// upcase and downcase.
func StringCase(mapping caser) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		// Casers are stateful, so each call needs its own.
		return mapping(language.Und).String(self.(string)), NoStop
	}
}

// StringEmpty is a String method.
//
// empty? reports whether the string has no characters.
func StringEmpty(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(string) == "", NoStop
}

// StringInclude is a String method.
//
// include? reports whether the argument is a substring of the receiver.
func StringInclude(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	s, r, stop := vm.StringArg(args, 0)
	if stop != NoStop {
		return r, stop
	}
	return strings.Contains(self.(string), s), NoStop
}

// StringReverse is a String method.
//
// reverse returns the receiver's characters in reverse order.
func StringReverse(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	r := []rune(self.(string))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r), NoStop
}

// initSymbol registers Symbol primitives.
func (vm *VM) initSymbol() {
	vm.Primitives.RegisterAll("Symbol", map[string]Primitive{
		"==":       ObjectEqual,
		"===":      ObjectEqual,
		"empty?":   SymbolEmpty,
		"to_proc":  SymbolToProc,
		"to_sym":   SymbolToSym,
		"to_s":     SymbolToS,
		"id2name":  SymbolToS,
		"name":     SymbolToS,
		"inspect":  ObjectInspect,
		"length":   SymbolLength,
		"size":     SymbolLength,
		"<=>":      SymbolCmp,
		"upcase":   SymbolCase(cases.Upper),
		"downcase": SymbolCase(cases.Lower),
	})
	vm.Primitives.Register(SingletonKey("Symbol"), "all_symbols", SymbolAllSymbols)
}

// SymbolEmpty is a Symbol method.
//
// empty? reports whether the symbol's name is empty.
func SymbolEmpty(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self.(Symbol) == "", NoStop
}

// SymbolToProc is a Symbol method.
//
// to_proc returns a lambda which calls the named method on its first
// argument with the rest.
func SymbolToProc(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	p, r, stop := vm.ToProc(self)
	if stop != NoStop {
		return r, stop
	}
	return p, NoStop
}

// SymbolToSym is a Symbol method.
//
// to_sym returns the receiver.
func SymbolToSym(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return self, NoStop
}

// SymbolToS is a Symbol method.
//
// to_s returns the symbol's name.
func SymbolToS(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return string(self.(Symbol)), NoStop
}

// SymbolLength is a Symbol method.
//
// length returns the number of characters in the symbol's name.
func SymbolLength(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	return int64(utf8.RuneCountInString(string(self.(Symbol)))), NoStop
}

// SymbolCmp is a Symbol method.
//
// <=> compares symbol names, or returns nil for a non-symbol.
func SymbolCmp(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	if r, stop := vm.CheckArgs(args, 1, 1); stop != NoStop {
		return r, stop
	}
	s, ok := args[0].(Symbol)
	if !ok {
		return nil, NoStop
	}
	return int64(strings.Compare(string(self.(Symbol)), string(s))), NoStop
}

// SymbolCase returns a Symbol method which maps the case of the symbol's
// name.
func SymbolCase(mapping caser) Primitive {
	return func(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
		return vm.Session.Intern(mapping(language.Und).String(string(self.(Symbol)))), NoStop
	}
}

// SymbolAllSymbols is a method of the Symbol class.
//
// all_symbols returns every symbol the program has used.
func SymbolAllSymbols(vm *VM, caller *Frame, self Value, block *Proc, args []Value) (Value, Stop) {
	syms := vm.Session.AllSymbols()
	r := make([]Value, len(syms))
	for i, s := range syms {
		r[i] = s
	}
	return NewArray(r...), NoStop
}
