package rubble_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/rubble"
)

func TestEmbedding(t *testing.T) {
	vm := rubble.NewVM()
	vm.Primitives.Register("Integer", "double", func(vm *rubble.VM, caller *rubble.Frame, self rubble.Value, block *rubble.Proc, args []rubble.Value) (rubble.Value, rubble.Stop) {
		return self.(int64) * 2, rubble.NoStop
	})
	v, err := vm.DoString("[1, 2, 3].map { |x| x.double }", "embed", rubble.TopLevelContext)
	require.NoError(t, err)
	require.Equal(t, "[2, 4, 6]", rubble.Inspect(v))
}

func TestEmbeddingErrors(t *testing.T) {
	vm := rubble.NewVM()
	_, err := vm.DoString("def", "embed", rubble.TopLevelContext)
	var e *rubble.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, "SyntaxError", e.Class.Name)
}

func TestDocExamples(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"Closures": {"count = 0\ninc = -> { count += 1 }\ninc.call\ninc.call\ncount", "2"},
		"Return":   {"def first_even(a)\n  a.each { |x| return x if x.even? }\n  nil\nend\nfirst_even([1, 3, 4, 6])", "4"},
		"FlipFlop": {"(1..10).to_a.select { |i| true if (i == 3)..(i == 5) }", "[3, 4, 5]"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			v, err := rubble.NewVM().DoString(c.src, name, rubble.TopLevelContext)
			require.NoError(t, err)
			require.Equal(t, c.want, rubble.Inspect(v))
		})
	}
}
