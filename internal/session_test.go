package internal_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/rubble/ast"
	"github.com/zephyrtronium/rubble/internal"
	"github.com/zephyrtronium/rubble/parser"
	"github.com/zephyrtronium/rubble/testutils"
)

// fakeParser returns a fixed result regardless of its input.
type fakeParser struct {
	root *ast.Root
	err  error
}

func (p fakeParser) Parse(src *ast.Source, locals []string) (*ast.Root, error) {
	return p.root, p.err
}

// debugEvents records load notifications.
type debugEvents struct {
	events []string
}

func (d *debugEvents) NotifyStartLoading(name string) {
	d.events = append(d.events, "start "+name)
}

func (d *debugEvents) NotifyFinishedLoading(name string) {
	d.events = append(d.events, "finish "+name)
}

func translate(t *testing.T, vm *internal.VM, src string, ctx internal.ParserContext) *internal.RootUnit {
	t.Helper()
	unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: t.Name(), Text: src}, ctx, nil)
	require.NoError(t, err)
	return unit
}

func TestSyntaxErrors(t *testing.T) {
	cases := map[string]struct {
		p   internal.Parser
		msg string
	}{
		"Message":     {fakeParser{err: errors.New("unexpected end of input")}, "unexpected end of input"},
		"NoMessage":   {fakeParser{err: errors.New("")}, internal.PlaceholderMessage},
		"NoTree":      {fakeParser{}, internal.PlaceholderMessage},
		"ParserError": {parser.Parser{}, ""},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			vm := internal.NewVM(c.p)
			src := "def f(\n"
			_, err := vm.DoString(src, "syntax", internal.TopLevelContext)
			require.Error(t, err)
			var e *internal.Exception
			require.ErrorAs(t, err, &e)
			require.Equal(t, "SyntaxError", e.Class.Name)
			require.True(t, e.IsA(vm.Classes["ScriptError"]))
			msg := c.msg
			if msg == "" {
				_, perr := parser.Parse(&ast.Source{Name: "syntax", Text: src})
				require.Error(t, perr)
				msg = perr.Error()
			}
			require.Equal(t, msg, e.Message)
		})
	}
}

func TestTranslationErrors(t *testing.T) {
	cases := map[string]struct {
		src string
		msg string
	}{
		"ConstInMethod":  {"def f\n  X = 1\nend", "dynamic constant assignment"},
		"ConstInBlock":   {"def f\n  [1].each { Y = 1 }\nend", "dynamic constant assignment"},
		"ModuleInMethod": {"def f\n  module M\n  end\nend", "module definition in method body"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			vm, _ := testutils.NewTestingVM()
			unit, err := vm.Session.Parse(vm.Parser, &ast.Source{Name: name, Text: c.src}, internal.TopLevelContext, nil)
			require.Nil(t, unit, "failed translations must not produce units")
			var e *internal.Exception
			require.ErrorAs(t, err, &e)
			require.Equal(t, "SyntaxError", e.Class.Name)
			require.Equal(t, c.msg, e.Message)
		})
	}
}

func TestCatcherOrder(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	cases := map[string]struct {
		ctx   internal.ParserContext
		src   string
		name  string
		shell bool
		flip  bool
	}{
		"TopLevel": {internal.TopLevelContext, "1", "(main)", false, false},
		"Shell":    {internal.ShellContext, "1", "(shell)", true, false},
		"Module":   {internal.ModuleContext, "1", "(module)", false, false},
		"FlipFlop": {internal.TopLevelContext, "1 if true..false", "(main)", false, true},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			unit := translate(t, vm, c.src, c.ctx)
			require.Equal(t, c.name, unit.Name)
			n := unit.Entry
			if c.shell {
				require.IsType(t, &internal.ShellResultNode{}, n)
				n = n.(*internal.ShellResultNode).Body
			}
			require.IsType(t, &internal.CatchRetryAsError{}, n)
			n = n.(*internal.CatchRetryAsError).Body
			require.IsType(t, &internal.CatchReturnAsError{}, n)
			require.Equal(t, unit.ReturnID, n.(*internal.CatchReturnAsError).Target)
			n = n.(*internal.CatchReturnAsError).Body
			require.IsType(t, &internal.CatchNext{}, n)
			n = n.(*internal.CatchNext).Body
			if c.flip {
				require.IsType(t, &internal.InitFlipFlops{}, n)
				require.Len(t, n.(*internal.InitFlipFlops).Slots, 1)
			} else {
				require.IsType(t, &internal.IntNode{}, n)
			}
		})
	}
}

func TestMethodCatchers(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	unit := translate(t, vm, "def f(a)\n  a\nend", internal.TopLevelContext)
	def, ok := unit.Entry.(*internal.CatchRetryAsError).Body.(*internal.CatchReturnAsError).Body.(*internal.CatchNext).Body.(*internal.DefNode)
	require.True(t, ok)
	m := def.Unit
	require.Equal(t, internal.MethodUnit, m.Kind)
	require.Equal(t, "f", m.Name)
	require.Equal(t, 1, m.Arity.Value())
	n := m.Entry.(*internal.CatchRetryAsError).Body
	require.IsType(t, &internal.CatchReturn{}, n)
	require.Equal(t, m.ReturnID, n.(*internal.CatchReturn).Target)
	require.Greater(t, m.ReturnID, unit.ReturnID, "nested scopes are allocated after their parents")
}

func TestTranslateDeterministic(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	src := "x = 0\n[1, 2, 3].each { |y| x += y if (y == 1)..(y == 2) }\ndef g(a, b = 1, *c)\n  return a\nend\nx"
	a := translate(t, vm, src, internal.TopLevelContext)
	b := translate(t, vm, src, internal.TopLevelContext)
	require.Greater(t, b.ReturnID, a.ReturnID)
	// Return IDs differ between translations; everything else must not.
	opts := cmp.Options{
		cmpopts.IgnoreTypes(internal.ReturnID(0)),
		cmpopts.IgnoreUnexported(internal.RootUnit{}),
	}
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("translations differ (-first +second):\n%s", diff)
	}
}

func TestReturnIDsConcurrent(t *testing.T) {
	s := internal.NewSession(nil)
	const n = 8
	ids := make([][]internal.ReturnID, n)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ids[i] = append(ids[i], s.AllocateReturnID())
			}
		}(i)
	}
	wg.Wait()
	seen := make(map[internal.ReturnID]bool)
	for _, l := range ids {
		for j, id := range l {
			require.False(t, seen[id], "duplicate return ID %d", id)
			seen[id] = true
			if j > 0 {
				require.Greater(t, id, l[j-1])
			}
		}
	}
}

func TestUnitConcurrentInvoke(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	src := `def fib(n)
  if n < 2
    n
  else
    fib(n - 1) + fib(n - 2)
  end
end
def first_even(a)
  a.each { |x| return x if x.even? }
  nil
end
r = [1, 2, 3].map { |x| fib(x + 10) }
r << first_even([1, 3, 4, 6])
r`
	unit := translate(t, vm, src, internal.TopLevelContext)
	const n = 8
	results := make([]internal.Value, n)
	stops := make([]internal.Stop, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], stops[i] = vm.Load(unit, vm.Main)
		}(i)
	}
	wg.Wait()
	want := internal.NewArray(int64(89), int64(144), int64(233), int64(4))
	for i := range results {
		require.Equal(t, internal.NoStop, stops[i], "run %d: %v", i, results[i])
		require.True(t, internal.Equal(want, results[i]), "run %d: got %s", i, internal.Inspect(results[i]))
	}
}

func TestTranslateConcurrent(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	const n = 8
	units := make([]*internal.RootUnit, n)
	errs := make([]error, n)
	results := make([]internal.Value, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := fmt.Sprintf("def sq%d(x)\n  [x].map { |y| y * y }.first\nend\nsq%d(%d)", i, i, i)
			units[i], errs[i] = vm.Session.Parse(vm.Parser, &ast.Source{Name: fmt.Sprintf("unit%d", i), Text: src}, internal.TopLevelContext, nil)
			if errs[i] != nil {
				return
			}
			results[i], errs[i] = vm.DoString(fmt.Sprintf("%d + 0", i), "again", internal.TopLevelContext)
			if errs[i] != nil {
				return
			}
			var stop internal.Stop
			results[i], stop = vm.Load(units[i], vm.Main)
			errs[i] = stop.Err(results[i])
		}(i)
	}
	wg.Wait()
	seen := make(map[internal.ReturnID]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, int64(i*i), results[i])
		require.False(t, seen[units[i].ReturnID], "duplicate return ID %d", units[i].ReturnID)
		seen[units[i].ReturnID] = true
	}
}

func TestTranslateNilTree(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	unit, err := vm.Session.Translate(nil, internal.TopLevelContext, nil)
	require.Nil(t, unit)
	var e *internal.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "SyntaxError", e.Class.Name)
	require.Equal(t, internal.PlaceholderMessage, e.Message)
}

func TestDebugNotifications(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	d := new(debugEvents)
	vm.Session.Debug = d
	_, err := vm.DoString("1", "first", internal.TopLevelContext)
	require.NoError(t, err)
	_, err = vm.DoString("X = ", "second", internal.TopLevelContext)
	require.Error(t, err)
	_, err = vm.DoString("def f\n  X = 1\nend", "third", internal.TopLevelContext)
	require.Error(t, err)
	want := []string{"start first", "finish first", "start third", "finish third"}
	require.Equal(t, want, d.events, "notifications surround translation, not parsing")
}

func TestTranslateMethod(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	params := &ast.Params{Required: []string{"a"}}
	body := &ast.Call{Receiver: &ast.Ident{Name: "a"}, Name: "+", Args: []ast.Node{&ast.Int{Value: 1}}}
	def, err := vm.Session.TranslateMethod(params, body, &ast.Source{Name: "native"})
	require.NoError(t, err)
	require.Equal(t, "(unknown)", def.Unit.Name)
	require.Nil(t, def.Unit.Method())
	m := def.Bind("rubble_inc", vm.Object)
	require.Same(t, m, def.Unit.Method())
	require.Same(t, m, vm.Object.Method("rubble_inc"))
	r, stop := vm.Send(nil, vm.Main, "rubble_inc", nil, int64(41))
	require.Equal(t, internal.NoStop, stop)
	require.Equal(t, int64(42), r)
	// A second binding does not replace the identity.
	def.Bind("rubble_inc2", vm.Object)
	require.Same(t, m, def.Unit.Method())
}

func TestTranslateMethodError(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	body := &ast.ConstAsgn{Name: "X", Value: &ast.Int{Value: 1}}
	def, err := vm.Session.TranslateMethod(nil, body, nil)
	require.Nil(t, def)
	var e *internal.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "dynamic constant assignment", e.Message)
}

func TestIntern(t *testing.T) {
	s := internal.NewSession(nil)
	a := s.Intern("a")
	b := s.Intern("b")
	require.Equal(t, a, s.Intern("a"))
	require.Equal(t, []internal.Symbol{a, b}, s.AllSymbols())
}

func TestDataConstant(t *testing.T) {
	vm, _ := testutils.NewTestingVM()
	_, err := vm.DoString("1\n__END__\nhello\n", "data", internal.TopLevelContext)
	require.NoError(t, err)
	data, ok := vm.Object.Const("DATA")
	require.True(t, ok)
	require.Contains(t, data, "hello")
}

func testSource(t *testing.T, text string) *ast.Source {
	return &ast.Source{Name: t.Name(), Text: text}
}
