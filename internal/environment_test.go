package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/rubble/internal"
)

func TestEnvironmentDeclare(t *testing.T) {
	s := internal.NewSession(nil)
	env := s.NewEnvironment(nil, internal.TopLevelEnv, false)
	a := env.Declare("a")
	b := env.Declare("b")
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
	require.Equal(t, a, env.Declare("a"), "redeclaring must reuse the slot")
	require.Equal(t, []string{"a", "b"}, env.Layout().Names)
}

func TestEnvironmentDeclarationSlots(t *testing.T) {
	s := internal.NewSession(nil)
	env := s.NewEnvironment(nil, internal.MethodEnv, true)
	require.Equal(t, 1, env.Layout().Size())
	require.Empty(t, env.Locals(), "hidden slots must not be visible to the parser")
	env.Declare("x")
	require.Equal(t, []string{"x"}, env.Locals())
}

func TestEnvironmentResolve(t *testing.T) {
	s := internal.NewSession(nil)
	top := s.NewEnvironment(nil, internal.TopLevelEnv, true)
	top.Declare("outer")
	method := s.NewEnvironment(top, internal.MethodEnv, true)
	method.Declare("m")
	block := s.NewEnvironment(method, internal.BlockEnv, false)
	block.Declare("b")
	inner := s.NewEnvironment(block, internal.BlockEnv, false)

	cases := map[string]struct {
		env   *internal.Environment
		name  string
		depth int
		ok    bool
	}{
		"Local":           {block, "b", 0, true},
		"ThroughBlock":    {inner, "m", 2, true},
		"BlockVar":        {inner, "b", 1, true},
		"StopsAtMethod":   {inner, "outer", 0, false},
		"MethodItself":    {method, "outer", 0, false},
		"Missing":         {top, "nope", 0, false},
		"TopLevelOwnVars": {top, "outer", 0, true},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			depth, _, ok := c.env.Resolve(c.name)
			require.Equal(t, c.ok, ok)
			if ok {
				require.Equal(t, c.depth, depth)
			}
		})
	}
}

func TestEnvironmentResolveOrDeclare(t *testing.T) {
	s := internal.NewSession(nil)
	method := s.NewEnvironment(nil, internal.MethodEnv, false)
	method.Declare("x")
	block := s.NewEnvironment(method, internal.BlockEnv, false)
	depth, slot := block.ResolveOrDeclare("x")
	require.Equal(t, 1, depth)
	require.Equal(t, 0, slot)
	depth, slot = block.ResolveOrDeclare("y")
	require.Equal(t, 0, depth)
	require.Equal(t, 0, slot)
	_, _, ok := method.Resolve("y")
	require.False(t, ok, "block-local variables must not leak outward")
}

func TestEnvironmentReturnTarget(t *testing.T) {
	s := internal.NewSession(nil)
	top := s.NewEnvironment(nil, internal.TopLevelEnv, true)
	method := s.NewEnvironment(top, internal.MethodEnv, true)
	block := s.NewEnvironment(method, internal.BlockEnv, false)
	lambda := s.NewEnvironment(block, internal.LambdaEnv, false)
	inLambda := s.NewEnvironment(lambda, internal.BlockEnv, false)

	cases := map[string]struct {
		env   *internal.Environment
		depth int
		id    internal.ReturnID
	}{
		"TopLevel":       {top, 0, top.ReturnID()},
		"Method":         {method, 0, method.ReturnID()},
		"BlockInMethod":  {block, 1, method.ReturnID()},
		"Lambda":         {lambda, 0, lambda.ReturnID()},
		"BlockInLambda":  {inLambda, 1, lambda.ReturnID()},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			depth, id := c.env.ReturnTarget()
			require.Equal(t, c.depth, depth)
			require.Equal(t, c.id, id)
		})
	}
}

func TestEnvironmentMethodDepth(t *testing.T) {
	s := internal.NewSession(nil)
	method := s.NewEnvironment(nil, internal.MethodEnv, true)
	block := s.NewEnvironment(method, internal.BlockEnv, false)
	lambda := s.NewEnvironment(block, internal.LambdaEnv, false)
	require.Equal(t, 0, method.MethodDepth())
	require.Equal(t, 1, block.MethodDepth())
	require.Equal(t, 2, lambda.MethodDepth(), "lambdas yield to the enclosing method's block")
}

func TestEnvironmentFlipFlops(t *testing.T) {
	s := internal.NewSession(nil)
	method := s.NewEnvironment(nil, internal.MethodEnv, true)
	block := s.NewEnvironment(method, internal.BlockEnv, false)
	d1, s1 := block.AddFlipFlop()
	d2, s2 := block.AddFlipFlop()
	require.Equal(t, 1, d1, "flip-flop state belongs to the enclosing method")
	require.Equal(t, 1, d2)
	require.NotEqual(t, s1, s2)
	require.Empty(t, block.Layout().Names)
	require.Equal(t, 3, method.Layout().Size())
}

func TestEnvironmentShellParent(t *testing.T) {
	s := internal.NewSession(nil)
	eval := s.NewEnvironment(nil, internal.EvalEnv, false)
	eval.Declare("earlier")
	line := s.NewEnvironment(eval, internal.TopLevelEnv, true)
	depth, _, ok := line.Resolve("earlier")
	require.True(t, ok, "shell input must see earlier bindings")
	require.Equal(t, 1, depth)
	require.Equal(t, []string{"earlier"}, line.Locals())
}

func TestEnvironmentReturnIDs(t *testing.T) {
	s := internal.NewSession(nil)
	var last internal.ReturnID
	for i := 0; i < 100; i++ {
		env := s.NewEnvironment(nil, internal.BlockEnv, false)
		require.Greater(t, env.ReturnID(), last)
		last = env.ReturnID()
	}
}
