package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/rubble/ast"
)

func parseString(t *testing.T, text string, locals ...string) ast.Node {
	t.Helper()
	root, err := Parse(&ast.Source{Name: t.Name(), Text: text}, locals...)
	require.NoError(t, err, "parsing %q", text)
	return root.Body
}

func TestParseLiterals(t *testing.T) {
	cases := map[string]struct {
		text string
		want ast.Node
	}{
		"Nil":      {"nil", &ast.Nil{}},
		"True":     {"true", &ast.True{}},
		"Int":      {"42", &ast.Int{Value: 42}},
		"NegInt":   {"-42", &ast.Int{Value: -42}},
		"MinInt":   {"-9223372036854775808", &ast.Int{Value: -9223372036854775808}},
		"Float":    {"2.5", &ast.Float{Value: 2.5}},
		"Str":      {`"a\tb"`, &ast.Str{Value: "a\tb"}},
		"RawStr":   {`'a\tb'`, &ast.Str{Value: `a\tb`}},
		"Sym":      {":foo", &ast.Sym{Name: "foo"}},
		"EmptyArr": {"[]", &ast.Array{}},
		"Paren":    {"()", &ast.Nil{}},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			got := parseString(t, c.text)
			require.IsType(t, c.want, got)
			switch w := c.want.(type) {
			case *ast.Int:
				require.Equal(t, w.Value, got.(*ast.Int).Value)
			case *ast.Float:
				require.Equal(t, w.Value, got.(*ast.Float).Value)
			case *ast.Str:
				require.Equal(t, w.Value, got.(*ast.Str).Value)
			case *ast.Sym:
				require.Equal(t, w.Name, got.(*ast.Sym).Name)
			}
		})
	}
}

func TestParseCommandCalls(t *testing.T) {
	t.Run("UnknownIdentIsBare", func(t *testing.T) {
		got := parseString(t, "foo")
		require.Equal(t, "foo", got.(*ast.Ident).Name)
	})
	t.Run("CommandArgs", func(t *testing.T) {
		got := parseString(t, "puts 1, 2")
		call := got.(*ast.Call)
		require.Nil(t, call.Receiver)
		require.Equal(t, "puts", call.Name)
		require.Len(t, call.Args, 2)
	})
	t.Run("NegativeArg", func(t *testing.T) {
		call := parseString(t, "foo -1").(*ast.Call)
		require.Equal(t, "foo", call.Name)
		require.Equal(t, int64(-1), call.Args[0].(*ast.Int).Value)
	})
	t.Run("LocalMinus", func(t *testing.T) {
		call := parseString(t, "foo -1", "foo").(*ast.Call)
		require.Equal(t, "-", call.Name)
		require.Equal(t, "foo", call.Receiver.(*ast.Ident).Name)
	})
	t.Run("SpacedMinus", func(t *testing.T) {
		call := parseString(t, "foo - 1").(*ast.Call)
		require.Equal(t, "-", call.Name)
	})
	t.Run("DoBindsToCommand", func(t *testing.T) {
		call := parseString(t, "foo bar do 1 end").(*ast.Call)
		require.Equal(t, "foo", call.Name)
		require.NotNil(t, call.Block)
		inner := call.Args[0].(*ast.Ident)
		require.Equal(t, "bar", inner.Name)
	})
	t.Run("BraceBindsToArgument", func(t *testing.T) {
		call := parseString(t, "foo bar { 1 }").(*ast.Call)
		require.Nil(t, call.Block)
		inner := call.Args[0].(*ast.Call)
		require.Equal(t, "bar", inner.Name)
		require.NotNil(t, inner.Block)
	})
	t.Run("SplatAndBlockArg", func(t *testing.T) {
		call := parseString(t, "foo(*a, &b)", "a", "b").(*ast.Call)
		require.Len(t, call.Args, 1)
		require.IsType(t, &ast.Splat{}, call.Args[0])
		require.Equal(t, "b", call.BlockArg.(*ast.Ident).Name)
	})
	t.Run("LeadingDot", func(t *testing.T) {
		call := parseString(t, "x\n  .foo\n  .bar", "x").(*ast.Call)
		require.Equal(t, "bar", call.Name)
		require.Equal(t, "foo", call.Receiver.(*ast.Call).Name)
	})
	t.Run("CallShorthand", func(t *testing.T) {
		call := parseString(t, "f.(1)", "f").(*ast.Call)
		require.Equal(t, "call", call.Name)
	})
}

func TestParseAssignment(t *testing.T) {
	t.Run("Local", func(t *testing.T) {
		seq := parseString(t, "x = 1\nx").(*ast.Seq)
		require.Equal(t, "x", seq.Stmts[0].(*ast.Asgn).Name)
		require.Equal(t, "x", seq.Stmts[1].(*ast.Ident).Name)
	})
	t.Run("AssignmentDeclaresForLaterCommands", func(t *testing.T) {
		seq := parseString(t, "x = 1\nx -1").(*ast.Seq)
		require.Equal(t, "-", seq.Stmts[1].(*ast.Call).Name)
	})
	t.Run("OpAsgn", func(t *testing.T) {
		n := parseString(t, "x ||= 2").(*ast.OpAsgn)
		require.Equal(t, "||", n.Op)
	})
	t.Run("Setter", func(t *testing.T) {
		call := parseString(t, "a.b = 1", "a").(*ast.Call)
		require.Equal(t, "b=", call.Name)
		require.Len(t, call.Args, 1)
	})
	t.Run("IndexSetter", func(t *testing.T) {
		call := parseString(t, "a[0] = 1", "a").(*ast.Call)
		require.Equal(t, "[]=", call.Name)
		require.Len(t, call.Args, 2)
	})
	t.Run("Const", func(t *testing.T) {
		n := parseString(t, "X = 1").(*ast.ConstAsgn)
		require.Equal(t, "X", n.Name)
	})
	t.Run("BlockLocalsDoNotLeak", func(t *testing.T) {
		seq := parseString(t, "f { y = 1 }\ny -1").(*ast.Seq)
		call := seq.Stmts[1].(*ast.Call)
		require.Equal(t, "y", call.Name)
	})
	t.Run("MethodDoesNotSeeOuterLocals", func(t *testing.T) {
		def := parseString(t, "def f\n  x -1\nend", "x").(*ast.Def)
		call := def.Body.(*ast.Call)
		require.Equal(t, "x", call.Name)
	})
}

func TestParsePrecedence(t *testing.T) {
	call := parseString(t, "1 + 2 * 3").(*ast.Call)
	require.Equal(t, "+", call.Name)
	require.Equal(t, "*", call.Args[0].(*ast.Call).Name)

	and := parseString(t, "a || b && c", "a", "b", "c").(*ast.Or)
	require.IsType(t, &ast.And{}, and.Right)

	not := parseString(t, "not a == b", "a", "b").(*ast.Not)
	require.Equal(t, "==", not.Value.(*ast.Call).Name)

	tern := parseString(t, "a ? 1 : 2", "a").(*ast.If)
	require.IsType(t, &ast.Int{}, tern.Else)

	rng := parseString(t, "1...2 + 3").(*ast.Range)
	require.True(t, rng.Exclusive)
	require.IsType(t, &ast.Call{}, rng.Hi)
}

func TestParsePositions(t *testing.T) {
	seq := parseString(t, "x = 1\n  x.abs\ndef f\nend").(*ast.Seq)
	require.Len(t, seq.Stmts, 3)
	require.Equal(t, ast.Pos{Label: t.Name(), Line: 1, Col: 1}, seq.Stmts[0].Position())
	require.Equal(t, ast.Pos{Label: t.Name(), Line: 2, Col: 5}, seq.Stmts[1].Position())
	require.Equal(t, ast.Pos{Label: t.Name(), Line: 3, Col: 1}, seq.Stmts[2].Position())
}

func TestParsePower(t *testing.T) {
	t.Run("RightAssoc", func(t *testing.T) {
		call := parseString(t, "2 ** 3 ** 2").(*ast.Call)
		require.Equal(t, "**", call.Name)
		require.Equal(t, int64(2), call.Receiver.(*ast.Int).Value)
		require.Equal(t, "**", call.Args[0].(*ast.Call).Name)
	})
	t.Run("TighterThanMul", func(t *testing.T) {
		call := parseString(t, "2 * 3 ** 2").(*ast.Call)
		require.Equal(t, "*", call.Name)
		require.Equal(t, "**", call.Args[0].(*ast.Call).Name)
	})
	t.Run("NegLiteralBase", func(t *testing.T) {
		neg := parseString(t, "-2 ** 2").(*ast.Call)
		require.Equal(t, "-@", neg.Name)
		pow := neg.Receiver.(*ast.Call)
		require.Equal(t, "**", pow.Name)
		require.Equal(t, int64(2), pow.Receiver.(*ast.Int).Value)
	})
	t.Run("NegLocalBase", func(t *testing.T) {
		neg := parseString(t, "-x ** 2", "x").(*ast.Call)
		require.Equal(t, "-@", neg.Name)
		require.Equal(t, "**", neg.Receiver.(*ast.Call).Name)
	})
	t.Run("NegExponent", func(t *testing.T) {
		call := parseString(t, "2 ** -1").(*ast.Call)
		require.Equal(t, "**", call.Name)
		require.Equal(t, int64(-1), call.Args[0].(*ast.Int).Value)
	})
	t.Run("OpAsgn", func(t *testing.T) {
		asgn := parseString(t, "x **= 2", "x").(*ast.OpAsgn)
		require.Equal(t, "**", asgn.Op)
	})
}

func TestParseControl(t *testing.T) {
	t.Run("IfElsifElse", func(t *testing.T) {
		n := parseString(t, "if a\n1\nelsif b\n2\nelse\n3\nend", "a", "b").(*ast.If)
		elsif := n.Else.(*ast.If)
		require.IsType(t, &ast.Int{}, elsif.Else)
	})
	t.Run("Unless", func(t *testing.T) {
		n := parseString(t, "unless a then 1 else 2 end", "a").(*ast.If)
		require.Equal(t, int64(2), n.Then.(*ast.Int).Value)
		require.Equal(t, int64(1), n.Else.(*ast.Int).Value)
	})
	t.Run("Modifiers", func(t *testing.T) {
		n := parseString(t, "x = 1 if a unless b", "a", "b").(*ast.If)
		require.Nil(t, n.Then)
		inner := n.Else.(*ast.If)
		require.IsType(t, &ast.Asgn{}, inner.Then)
	})
	t.Run("WhileDo", func(t *testing.T) {
		n := parseString(t, "while a do b end", "a", "b").(*ast.While)
		require.False(t, n.Until)
		require.Equal(t, "b", n.Body.(*ast.Ident).Name)
	})
	t.Run("UntilModifier", func(t *testing.T) {
		n := parseString(t, "a until b", "a", "b").(*ast.While)
		require.True(t, n.Until)
	})
	t.Run("Case", func(t *testing.T) {
		n := parseString(t, "case x\nwhen 1, 2 then :a\nwhen 3\n:b\nelse :c\nend", "x").(*ast.Case)
		require.Len(t, n.Whens, 2)
		require.Len(t, n.Whens[0].Values, 2)
		require.NotNil(t, n.Else)
	})
	t.Run("Begin", func(t *testing.T) {
		n := parseString(t, "begin\n  a\nrescue ArgumentError, TypeError => e\n  retry\nelse\n  b\nensure\n  c\nend", "a", "b", "c").(*ast.Begin)
		require.Len(t, n.Rescues, 1)
		require.Len(t, n.Rescues[0].Classes, 2)
		require.Equal(t, "e", n.Rescues[0].Var)
		require.IsType(t, &ast.Retry{}, n.Rescues[0].Body)
		require.NotNil(t, n.Else)
		require.NotNil(t, n.Ensure)
	})
	t.Run("RescueModifier", func(t *testing.T) {
		n := parseString(t, "a rescue 1", "a").(*ast.Begin)
		require.Len(t, n.Rescues, 1)
	})
	t.Run("ReturnValue", func(t *testing.T) {
		n := parseString(t, "return -1").(*ast.Return)
		require.Equal(t, int64(-1), n.Value.(*ast.Int).Value)
	})
	t.Run("BareNext", func(t *testing.T) {
		n := parseString(t, "next if a", "a").(*ast.If)
		require.Nil(t, n.Then.(*ast.Next).Value)
	})
}

func TestParseDefinitions(t *testing.T) {
	t.Run("Def", func(t *testing.T) {
		def := parseString(t, "def f(a, b = 1, *c, &d)\n  a\nend").(*ast.Def)
		require.Equal(t, "f", def.Name)
		require.Equal(t, []string{"a", "b", "c", "d"}, def.Params.Names())
		require.Equal(t, "a", def.Body.(*ast.Ident).Name)
	})
	t.Run("BareParams", func(t *testing.T) {
		def := parseString(t, "def f a, b\nend").(*ast.Def)
		require.Equal(t, []string{"a", "b"}, def.Params.Required)
	})
	t.Run("Operator", func(t *testing.T) {
		def := parseString(t, "def ==(o) end").(*ast.Def)
		require.Equal(t, "==", def.Name)
	})
	t.Run("Setter", func(t *testing.T) {
		def := parseString(t, "def x=(v) end").(*ast.Def)
		require.Equal(t, "x=", def.Name)
	})
	t.Run("IndexSetter", func(t *testing.T) {
		def := parseString(t, "def []=(i, v) end").(*ast.Def)
		require.Equal(t, "[]=", def.Name)
	})
	t.Run("ImplicitBegin", func(t *testing.T) {
		def := parseString(t, "def f\n  1\nrescue\n  2\nend").(*ast.Def)
		require.IsType(t, &ast.Begin{}, def.Body)
	})
	t.Run("Module", func(t *testing.T) {
		mod := parseString(t, "module M\n  X = 1\nend").(*ast.Module)
		require.Equal(t, "M", mod.Name)
		require.IsType(t, &ast.ConstAsgn{}, mod.Body)
	})
	t.Run("BlockParams", func(t *testing.T) {
		call := parseString(t, "f { |a, b| a }").(*ast.Call)
		require.Equal(t, []string{"a", "b"}, call.Block.Params.Required)
		require.IsType(t, &ast.Ident{}, call.Block.Body)
	})
	t.Run("EmptyBlockParams", func(t *testing.T) {
		call := parseString(t, "f { || 1 }").(*ast.Call)
		require.NotNil(t, call.Block.Params)
		require.Empty(t, call.Block.Params.Names())
	})
	t.Run("Lambda", func(t *testing.T) {
		l := parseString(t, "->(x) { x }").(*ast.Lambda)
		require.Equal(t, []string{"x"}, l.Params.Required)
	})
	t.Run("LambdaBare", func(t *testing.T) {
		l := parseString(t, "-> x do x end").(*ast.Lambda)
		require.Equal(t, []string{"x"}, l.Params.Required)
	})
	t.Run("ScopedConst", func(t *testing.T) {
		c := parseString(t, "A::B").(*ast.ScopedConst)
		require.Equal(t, "B", c.Name)
		require.Equal(t, "A", c.Scope.(*ast.Const).Name)
	})
}

func TestParseInterpolation(t *testing.T) {
	n := parseString(t, `"a#{x + 1}b#{}c"`, "x").(*ast.Interp)
	require.Len(t, n.Parts, 5)
	require.Equal(t, "a", n.Parts[0].(*ast.Str).Value)
	require.Equal(t, "+", n.Parts[1].(*ast.Call).Name)
	require.Equal(t, "", n.Parts[3].(*ast.Str).Value)
	require.Equal(t, "c", n.Parts[4].(*ast.Str).Value)
}

func TestParseData(t *testing.T) {
	root, err := Parse(&ast.Source{Name: "data", Text: "1\n__END__\nhello\nworld\n"})
	require.NoError(t, err)
	require.NotNil(t, root.Data)
	require.Equal(t, "hello\nworld\n", *root.Data)
	require.IsType(t, &ast.Int{}, root.Body)
}

func TestParseBOM(t *testing.T) {
	root, err := Parse(&ast.Source{Name: "bom", Text: "\xef\xbb\xbfx = 1"})
	require.NoError(t, err)
	require.IsType(t, &ast.Asgn{}, root.Body)

	root, err = Parse(&ast.Source{Name: "utf16", Text: "\xff\xfe1\x00"})
	require.NoError(t, err)
	require.Equal(t, int64(1), root.Body.(*ast.Int).Value)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"UnterminatedDef":    "def f\n  1\n",
		"UnterminatedString": `"abc`,
		"UnterminatedParen":  "(1 + 2",
		"StrayEnd":           "end",
		"BadAssignment":      "1 = 2",
		"EmptyCase":          "case 1\nend",
		"DuplicateParam":     "def f(a, a) end",
		"RequiredAfterOpt":   "def f(a = 1, b) end",
		"IntOverflow":        "99999999999999999999",
		"ModuleName":         "module m\nend",
		"InvalidCharacter":   "`",
	}
	for name, text := range cases {
		text := text
		t.Run(name, func(t *testing.T) {
			root, err := Parse(&ast.Source{Name: "errors", Text: text})
			require.Nil(t, root)
			require.Error(t, err)
			perr, ok := err.(*Error)
			require.True(t, ok, "error %v is %T, not *Error", err, err)
			require.Equal(t, "errors", perr.Label)
			require.NotEmpty(t, perr.Msg)
		})
	}
}

func TestParseIncomplete(t *testing.T) {
	cases := map[string]struct {
		text string
		want bool
	}{
		"UnterminatedDef":   {"def f\n  1\n", true},
		"UnterminatedParen": {"(1 + 2", true},
		"OpenBlock":         {"[1].each do |x|", true},
		"StrayEnd":          {"end", false},
		"BadAssignment":     {"1 = 2", false},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			_, err := Parse(&ast.Source{Name: "incomplete", Text: c.text})
			require.Error(t, err)
			require.Equal(t, c.want, IsIncomplete(err))
		})
	}
}
