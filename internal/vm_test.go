package internal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/rubble/internal"
	"github.com/zephyrtronium/rubble/testutils"
)

// TestNewVMClasses tests that a new VM has the classes we expect.
func TestNewVMClasses(t *testing.T) {
	vm := testutils.TestingVM()
	classes := []string{
		"Object", "Module", "NilClass", "TrueClass", "FalseClass", "Integer",
		"Float", "String", "Symbol", "Array", "Range", "Proc", "Method",
		"Exception", "StandardError", "SyntaxError", "LocalJumpError",
	}
	for _, name := range classes {
		t.Run(name, func(t *testing.T) {
			c := vm.Classes[name]
			require.NotNil(t, c)
			v, ok := vm.Object.Const(name)
			require.True(t, ok, "class must be bound to a constant")
			require.Same(t, c, v)
		})
	}
	require.True(t, vm.Classes["NoMethodError"].IsA(vm.Classes["NameError"]))
	require.True(t, vm.Classes["SyntaxError"].IsA(vm.Classes["ScriptError"]))
	require.False(t, vm.Classes["SyntaxError"].IsA(vm.Classes["StandardError"]))
}

func TestSystemConstants(t *testing.T) {
	vm := testutils.TestingVM()
	v, ok := vm.Object.Const("RUBBLE_VERSION")
	require.True(t, ok)
	require.Equal(t, internal.Version, v)
	p, ok := vm.Object.Const("PLATFORM")
	require.True(t, ok)
	require.Contains(t, p, "-")
}

func TestClassOf(t *testing.T) {
	vm := testutils.TestingVM()
	cases := map[string]struct {
		v    internal.Value
		want string
	}{
		"Nil":       {nil, "NilClass"},
		"True":      {true, "TrueClass"},
		"False":     {false, "FalseClass"},
		"Integer":   {int64(1), "Integer"},
		"Float":     {1.5, "Float"},
		"String":    {"s", "String"},
		"Symbol":    {internal.Symbol("s"), "Symbol"},
		"Array":     {internal.NewArray(), "Array"},
		"Range":     {&internal.Range{Lo: 1, Hi: 2}, "Range"},
		"Module":    {vm.Object, "Module"},
		"Main":      {vm.Main, "Object"},
		"Exception": {vm.NewException("TypeError", "x"), "TypeError"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			require.Equal(t, c.want, vm.ClassOf(c.v).Name)
		})
	}
}

func TestShell(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	r1, err := vm.Shell("x = 1", "(shell)", nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), r1.Value)
	require.NotNil(t, r1.Frame)
	r2, err := vm.Shell("y = x + 1", "(shell)", r1.Frame)
	require.NoError(t, err)
	require.Equal(t, int64(2), r2.Value)
	r3, err := vm.Shell("x + y", "(shell)", r2.Frame)
	require.NoError(t, err)
	require.Equal(t, int64(3), r3.Value)

	// Closures from earlier lines share the earlier frames.
	r4, err := vm.Shell("inc = -> { x += 10 }", "(shell)", r3.Frame)
	require.NoError(t, err)
	_, err = vm.Shell("inc.call", "(shell)", r4.Frame)
	require.NoError(t, err)
	r5, err := vm.Shell("x", "(shell)", r4.Frame)
	require.NoError(t, err)
	require.Equal(t, int64(11), r5.Value)

	_, err = vm.Shell("return 1", "(shell)", r5.Frame)
	var e *internal.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "LocalJumpError", e.Class.Name)

	_, err = vm.Shell("z +", "(shell)", r5.Frame)
	require.ErrorAs(t, err, &e)
	require.Equal(t, "SyntaxError", e.Class.Name)
}

func TestShellVisibilityPerLine(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	r, err := vm.Shell("public", "(shell)", nil)
	require.NoError(t, err)
	r, err = vm.Shell("def rb_shell_m\n  1\nend", "(shell)", r.Frame)
	require.NoError(t, err)
	m := vm.Object.Method("rb_shell_m")
	require.NotNil(t, m)
	require.Equal(t, internal.Private, m.Visibility, "each line starts with the default visibility")
}

func TestModuleEval(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	mod := internal.NewModule("RbEval", nil, vm.Object)
	vm.Object.SetConst("RbEval", mod)
	r, err := vm.ModuleEval(mod, "C = 1\nself", "eval")
	require.NoError(t, err)
	require.Same(t, mod, r)
	v, ok := mod.Const("C")
	require.True(t, ok)
	require.Equal(t, int64(1), v)
	_, ok = vm.Object.Const("C")
	require.False(t, ok)

	_, err = vm.ModuleEval(mod, "return 1", "eval")
	var e *internal.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "LocalJumpError", e.Class.Name)
}

func TestDoStringContexts(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	r, err := vm.DoString("self", "top", internal.TopLevelContext)
	require.NoError(t, err)
	require.Same(t, vm.Main, r)
	r, err = vm.DoString("self", "module", internal.ModuleContext)
	require.NoError(t, err)
	require.Same(t, vm.Object, r)
	r, err = vm.DoString("1", "shell", internal.ShellContext)
	require.NoError(t, err)
	require.IsType(t, &internal.ShellResult{}, r)
}

func TestDoReader(t *testing.T) {
	vm, out := testutils.NewTestingVM()
	_, err := vm.DoReader(strings.NewReader("puts 1, \"two\"\nprint :three\np([4])"), "reader")
	require.NoError(t, err)
	require.Equal(t, "1\ntwo\nthree[4]\n", out.String())
}

func TestUncaughtError(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	_, err := vm.DoString("\n  raise ArgumentError, \"bad\"", "errs", internal.TopLevelContext)
	var e *internal.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "ArgumentError", e.Class.Name)
	require.Equal(t, "bad", e.Message)
	require.Equal(t, 2, e.Pos.Line, "exceptions record where they were raised")
}

func TestStopErr(t *testing.T) {
	cases := map[string]struct {
		stop internal.Stop
		err  bool
	}{
		"Normal": {internal.NoStop, false},
		"Next":   {internal.Stop{Kind: internal.NextStop}, true},
		"Return": {internal.Stop{Kind: internal.ReturnStop, Target: 3}, true},
		"Retry":  {internal.Stop{Kind: internal.RetryStop}, true},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			err := c.stop.Err(nil)
			if c.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
	require.Panics(t, func() { internal.Stop{Kind: 99}.Err(nil) })
}
