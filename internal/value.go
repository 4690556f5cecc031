package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zephyrtronium/contains"
)

// Value is a language value. Go values represent the atomic types directly:
//
//	nil       nil
//	bool      true and false
//	int64     Integer
//	float64   Float
//	string    String (immutable)
//	Symbol    Symbol
//
// Everything else is a pointer to one of the types in this package.
type Value = interface{}

// Symbol is an interned name.
type Symbol string

// Array is a mutable list of values. Arrays are not synchronized.
type Array struct {
	Elems []Value
}

// NewArray creates an array holding the given elements.
func NewArray(elems ...Value) *Array {
	return &Array{Elems: elems}
}

// Range is an integer range.
type Range struct {
	Lo, Hi    int64
	Exclusive bool
}

// Last returns the largest integer in the range and whether there is one.
func (r *Range) Last() (int64, bool) {
	if r.Exclusive {
		if r.Hi <= r.Lo {
			return 0, false
		}
		return r.Hi - 1, true
	}
	return r.Hi, r.Hi >= r.Lo
}

// Contains reports whether n is in the range.
func (r *Range) Contains(n int64) bool {
	last, ok := r.Last()
	return ok && r.Lo <= n && n <= last
}

// ToArray returns the integers in the range.
func (r *Range) ToArray() *Array {
	last, ok := r.Last()
	if !ok {
		return NewArray()
	}
	elems := make([]Value, 0, last-r.Lo+1)
	for i := r.Lo; i <= last; i++ {
		elems = append(elems, i)
	}
	return NewArray(elems...)
}

// Object is a plain object with no state of its own. The top-level self is an
// Object.
type Object struct {
	Class *Module
	// Name is the object's display name, e.g. main.
	Name string
}

// Truthy reports whether v counts as true in a condition. Only nil and false
// are falsy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}

// Equal reports whether two values are equal under ==. Arrays compare
// elementwise and Integers compare equal to Floats of the same value.
func Equal(a, b Value) bool {
	return equal(a, b, contains.Set{})
}

func equal(a, b Value, seen contains.Set) bool {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return a == b
		case float64:
			return float64(a) == b
		}
		return false
	case float64:
		switch b := b.(type) {
		case int64:
			return a == float64(b)
		case float64:
			return a == b
		}
		return false
	case *Array:
		b, ok := b.(*Array)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		if a == b || !seen.Add(a.UniqueID()) {
			return true
		}
		for i := range a.Elems {
			if !equal(a.Elems[i], b.Elems[i], seen) {
				return false
			}
		}
		return true
	case *Range:
		b, ok := b.(*Range)
		return ok && *a == *b
	}
	return a == b
}

// FormatFloat formats a float the way Float#to_s does.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	case f == math.Trunc(f) && math.Abs(f) < 1e16:
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToS returns the default string form of a value, as used by puts and string
// interpolation.
func ToS(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case Symbol:
		return string(v)
	case *Exception:
		return v.Message
	}
	return Inspect(v)
}

// Inspect returns the developer-facing string form of a value, as used by p.
func Inspect(v Value) string {
	var b strings.Builder
	inspect(&b, v, contains.Set{})
	return b.String()
}

func inspect(b *strings.Builder, v Value, seen contains.Set) {
	switch v := v.(type) {
	case nil:
		b.WriteString("nil")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(FormatFloat(v))
	case string:
		b.WriteString(strconv.Quote(v))
	case Symbol:
		b.WriteByte(':')
		b.WriteString(string(v))
	case *Array:
		if !seen.Add(v.UniqueID()) {
			b.WriteString("[...]")
			return
		}
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, e, seen)
		}
		b.WriteByte(']')
	case *Range:
		fmt.Fprintf(b, "%d", v.Lo)
		if v.Exclusive {
			b.WriteString("...")
		} else {
			b.WriteString("..")
		}
		fmt.Fprintf(b, "%d", v.Hi)
	case *Proc:
		if v.Lambda {
			fmt.Fprintf(b, "#<Proc:%#x (lambda)>", v.UniqueID())
		} else {
			fmt.Fprintf(b, "#<Proc:%#x>", v.UniqueID())
		}
	case *Method:
		fmt.Fprintf(b, "#<Method: %s#%s>", v.Owner.Name, v.Name)
	case *Module:
		b.WriteString(v.Name)
	case *Exception:
		fmt.Fprintf(b, "#<%s: %s>", v.Class.Name, v.Message)
	case *Object:
		b.WriteString(v.Name)
	case *ShellResult:
		inspect(b, v.Value, seen)
	default:
		fmt.Fprintf(b, "#<%T>", v)
	}
}
