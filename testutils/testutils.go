// Package testutils provides utilities for testing rubble code in Go.
package testutils

import (
	"bytes"
	"sync"
	"testing"

	"github.com/zephyrtronium/rubble/ast"
	"github.com/zephyrtronium/rubble/internal"
	"github.com/zephyrtronium/rubble/parser"
)

// testVM is the VM used for all tests.
var testVM *internal.VM

var testVMInit sync.Once

// TestingVM returns a VM for testing. The VM is shared by all tests that use
// this package, so tests which define methods or constants should use names
// no other test uses, or use NewTestingVM.
func TestingVM() *internal.VM {
	testVMInit.Do(ResetTestingVM)
	return testVM
}

// ResetTestingVM reinitializes the VM returned by TestingVM. It is not safe
// to call this in parallel tests.
func ResetTestingVM() {
	testVM, _ = NewTestingVM()
}

// NewTestingVM creates a VM which is not shared with any other test. Output
// from puts and friends goes to the returned buffer.
func NewTestingVM() (*internal.VM, *bytes.Buffer) {
	vm := internal.NewVM(parser.Parser{})
	out := new(bytes.Buffer)
	vm.Stdout = out
	return vm, out
}

// Run parses and runs source text as a top-level program.
func Run(vm *internal.VM, name, src string) (internal.Value, internal.Stop, error) {
	unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: name, Text: src}, internal.TopLevelContext, nil)
	if err != nil {
		return nil, internal.NoStop, err
	}
	r, stop := vm.Load(unit, vm.Main)
	return r, stop, nil
}

// A SourceTestCase is a test case containing source code and a predicate to
// check the result.
type SourceTestCase struct {
	// Source is the source code to execute.
	Source string
	// Pass is a predicate taking the result of executing Source. If Pass
	// returns false, then the test fails.
	Pass func(result internal.Value, control internal.Stop) bool
	// Fresh runs the case in a VM of its own rather than TestingVM.
	Fresh bool
}

// TestFunc returns a test function for the test case.
func (c SourceTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		vm := TestingVM()
		if c.Fresh {
			vm, _ = NewTestingVM()
		}
		r, s, err := Run(vm, name, c.Source)
		if err != nil {
			t.Fatalf("could not translate %q: %v", c.Source, err)
		}
		if !c.Pass(r, s) {
			if e, ok := r.(*internal.Exception); ok && s.Kind == internal.ExceptionStop {
				t.Errorf("%q produced wrong result; an exception occurred:\n\t%v", c.Source, e)
			} else {
				t.Errorf("%q produced wrong result; got %s (%v)", c.Source, internal.Inspect(r), s)
			}
		}
	}
}

// PassEqual returns a Pass function for a SourceTestCase that predicates on
// equality as by ==. If the Stop is not NoStop, then the predicate returns
// false.
func PassEqual(want internal.Value) func(internal.Value, internal.Stop) bool {
	return func(result internal.Value, control internal.Stop) bool {
		if control != internal.NoStop {
			return false
		}
		return internal.Equal(want, result)
	}
}

// PassIdentical returns a Pass function for a SourceTestCase that predicates
// on identity, i.e. the result must be exactly the given value. If the Stop
// is not NoStop, then the predicate returns false.
func PassIdentical(want internal.Value) func(internal.Value, internal.Stop) bool {
	return func(result internal.Value, control internal.Stop) bool {
		if control != internal.NoStop {
			return false
		}
		return want == result
	}
}

// PassFailure returns a Pass function for a SourceTestCase that returns true
// iff the result is a raised exception of the named class or a subclass.
func PassFailure(class string) func(internal.Value, internal.Stop) bool {
	return func(result internal.Value, control internal.Stop) bool {
		if control.Kind != internal.ExceptionStop {
			return false
		}
		e, ok := result.(*internal.Exception)
		if !ok {
			return false
		}
		// Compare by name so that exceptions from any VM match.
		for m := e.Class; m != nil; m = m.Super {
			if m.Name == class {
				return true
			}
		}
		return false
	}
}

// PassMessage returns a Pass function for a SourceTestCase that returns true
// iff the result is a raised exception of the named class with the given
// message.
func PassMessage(class, msg string) func(internal.Value, internal.Stop) bool {
	isA := PassFailure(class)
	return func(result internal.Value, control internal.Stop) bool {
		return isA(result, control) && result.(*internal.Exception).Message == msg
	}
}

// PassSuccess returns a Pass function for a SourceTestCase that returns true
// iff the control flow status is NoStop.
func PassSuccess() func(internal.Value, internal.Stop) bool {
	return func(result internal.Value, control internal.Stop) bool {
		return control == internal.NoStop
	}
}
