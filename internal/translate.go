package internal

import (
	"fmt"

	"github.com/zephyrtronium/rubble/ast"
)

// translator lowers syntax trees into node graphs. There is one traversal
// for every context; the strategy records where contexts differ. A
// translator for a nested scope shares its parent's error, so the first
// failure anywhere in a source unit aborts the whole translation.
type translator struct {
	session  *Session
	env      *Environment
	strategy Strategy
	source   *ast.Source
	err      *error
}

func newTranslator(s *Session, env *Environment, strategy Strategy, src *ast.Source) *translator {
	return &translator{session: s, env: env, strategy: strategy, source: src, err: new(error)}
}

// child creates a translator for a nested scope.
func (t *translator) child(env *Environment, strategy Strategy) *translator {
	return &translator{session: t.session, env: env, strategy: strategy, source: t.source, err: t.err}
}

// Err returns the first translation error.
func (t *translator) Err() error {
	return *t.err
}

// fail records a translation error and returns a placeholder node.
// Translation continues so that the traversal stays simple, but no unit is
// published once an error is recorded.
func (t *translator) fail(pos ast.Pos, format string, args ...interface{}) Node {
	if *t.err == nil {
		e := t.session.newSyntaxError(fmt.Sprintf(format, args...))
		e.Pos = pos
		*t.err = e
	}
	return NilNode{}
}

// finish wraps a translated body in its catchers and packages it as a unit.
func (t *translator) finish(kind UnitKind, pos ast.Pos, body Node, arity Arity) *RootUnit {
	env := t.env
	id := env.ReturnID()
	if len(env.flipFlops) > 0 {
		body = &InitFlipFlops{Slots: append([]int(nil), env.flipFlops...), Body: body}
	}
	body = &CatchNext{Body: body}
	switch t.strategy.Returns {
	case ReturnCatch:
		body = &CatchReturn{Body: body, Target: id}
	case ReturnAsError:
		body = &CatchReturnAsError{Body: body, Target: id, Pos: pos}
	}
	body = &CatchRetryAsError{Body: body, Pos: pos}
	if t.strategy.ShellResult {
		body = &ShellResultNode{Body: body}
	}
	u := &RootUnit{
		Kind:     kind,
		Name:     t.strategy.Name,
		Pos:      pos,
		ReturnID: id,
		Layout:   env.Layout(),
		Entry:    body,
		Arity:    arity,
	}
	if *t.err == nil {
		t.session.logUnit(u)
	}
	return u
}

// unit translates a method, block, or lambda body in a new scope nested in
// the translator's.
func (t *translator) unit(kind UnitKind, name string, pos ast.Pos, params *ast.Params, body ast.Node) *RootUnit {
	var envKind EnvKind
	var strategy Strategy
	switch kind {
	case MethodUnit:
		envKind, strategy = MethodEnv, methodStrategy(name)
	case LambdaUnit:
		envKind, strategy = LambdaEnv, blockStrategy(t.strategy, name)
	case BlockUnit:
		envKind, strategy = BlockEnv, blockStrategy(t.strategy, name)
	default:
		panic(fmt.Errorf("rubble: unit kind %v has no parameters", kind))
	}
	c := t.child(t.session.NewEnvironment(t.env, envKind, kind == MethodUnit), strategy)
	var entry Node
	if params != nil || kind != BlockUnit {
		load := c.loadArgs(params, kind != BlockUnit, pos)
		entry = &SeqNode{Stmts: []Node{load, c.translate(body)}}
	} else {
		entry = c.translate(body)
	}
	return c.finish(kind, pos, entry, paramArity(params))
}

func (t *translator) loadArgs(params *ast.Params, strict bool, pos ast.Pos) *LoadArgs {
	l := &LoadArgs{Rest: -1, Block: -1, Strict: strict, Pos: pos}
	if params == nil {
		return l
	}
	for _, name := range params.Required {
		l.Required = append(l.Required, t.env.Declare(name))
	}
	for _, o := range params.Optional {
		slot := t.env.Declare(o.Name)
		l.Optional = append(l.Optional, OptionalArg{Slot: slot, Default: t.translate(o.Default)})
	}
	if params.Rest != "" {
		l.Rest = t.env.Declare(params.Rest)
	}
	if params.Block != "" {
		l.Block = t.env.Declare(params.Block)
	}
	return l
}

func paramArity(params *ast.Params) Arity {
	if params == nil {
		return Arity{}
	}
	return Arity{Required: len(params.Required), Optional: len(params.Optional), Rest: params.Rest != ""}
}

// translate lowers one syntax node.
func (t *translator) translate(n ast.Node) Node {
	switch n := n.(type) {
	case nil:
		return NilNode{}
	case *ast.Seq:
		if len(n.Stmts) == 1 {
			return t.translate(n.Stmts[0])
		}
		return &SeqNode{Stmts: t.list(n.Stmts)}

	case *ast.Nil:
		return NilNode{}
	case *ast.True:
		return TrueNode{}
	case *ast.False:
		return FalseNode{}
	case *ast.Self:
		return SelfNode{}
	case *ast.Int:
		return &IntNode{Value: n.Value}
	case *ast.Float:
		return &FloatNode{Value: n.Value}
	case *ast.Str:
		return &StrNode{Value: n.Value}
	case *ast.Interp:
		return &InterpNode{Parts: t.list(n.Parts)}
	case *ast.Sym:
		return &SymbolNode{Name: t.session.Intern(n.Name)}
	case *ast.Array:
		return &ArrayNode{Elems: t.list(n.Elems)}
	case *ast.Splat:
		return &SplatNode{Value: t.translate(n.Value)}
	case *ast.Range:
		return &RangeNode{Lo: t.translate(n.Lo), Hi: t.translate(n.Hi), Exclusive: n.Exclusive, Pos: n.Pos}

	case *ast.Ident:
		if depth, slot, ok := t.env.Resolve(n.Name); ok {
			return &ReadLocal{Name: n.Name, Depth: depth, Slot: slot}
		}
		return &CallNode{Pos: n.Pos, Name: n.Name, VCall: true}
	case *ast.Asgn:
		depth, slot := t.env.ResolveOrDeclare(n.Name)
		return &WriteLocal{Name: n.Name, Depth: depth, Slot: slot, Value: t.translate(n.Value)}
	case *ast.OpAsgn:
		return t.opAssign(n)
	case *ast.Const:
		return &ConstNode{Name: n.Name, Pos: n.Pos}
	case *ast.ScopedConst:
		return &ScopedConstNode{Scope: t.translate(n.Scope), Name: n.Name, Pos: n.Pos}
	case *ast.ConstAsgn:
		return t.constAssign(n)

	case *ast.And:
		return &AndNode{Left: t.translate(n.Left), Right: t.translate(n.Right)}
	case *ast.Or:
		return &OrNode{Left: t.translate(n.Left), Right: t.translate(n.Right)}
	case *ast.Not:
		return &NotNode{Value: t.cond(n.Value)}
	case *ast.If:
		return &IfNode{Cond: t.cond(n.Cond), Then: t.optional(n.Then), Else: t.optional(n.Else)}
	case *ast.While:
		return &WhileNode{Cond: t.cond(n.Cond), Body: t.optional(n.Body), Until: n.Until}
	case *ast.Case:
		return t.caseExpr(n)
	case *ast.Begin:
		return t.begin(n)
	case *ast.Next:
		return &NextNode{Value: t.optional(n.Value)}
	case *ast.Return:
		depth, id := t.env.ReturnTarget()
		return &ReturnNode{Value: t.optional(n.Value), Depth: depth, Target: id, Pos: n.Pos}
	case *ast.Retry:
		return RetryNode{}

	case *ast.Call:
		return t.call(n)
	case *ast.Yield:
		return &YieldNode{Args: t.list(n.Args), Depth: t.env.MethodDepth(), Pos: n.Pos}
	case *ast.Lambda:
		return &BlockNode{Unit: t.unit(LambdaUnit, "lambda in "+t.strategy.Name, n.Pos, n.Params, n.Body), Lambda: true}
	case *ast.BlockLit:
		return &BlockNode{Unit: t.unit(BlockUnit, "block in "+t.strategy.Name, n.Pos, n.Params, n.Body)}
	case *ast.Def:
		return t.def(n)
	case *ast.Module:
		return t.module(n)
	}
	return t.fail(n.Position(), "cannot translate %T", n)
}

// optional translates n, or returns nil if n is nil.
func (t *translator) optional(n ast.Node) Node {
	if n == nil {
		return nil
	}
	return t.translate(n)
}

func (t *translator) list(nodes []ast.Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	r := make([]Node, len(nodes))
	for i, n := range nodes {
		r[i] = t.translate(n)
	}
	return r
}

// cond translates a condition. Ranges in conditions, including operands of
// logical operators, are flip-flops.
func (t *translator) cond(n ast.Node) Node {
	switch n := n.(type) {
	case *ast.Range:
		depth, slot := t.env.AddFlipFlop()
		return &FlipFlopNode{Lo: t.cond(n.Lo), Hi: t.cond(n.Hi), Exclusive: n.Exclusive, Depth: depth, Slot: slot}
	case *ast.And:
		return &AndNode{Left: t.cond(n.Left), Right: t.cond(n.Right)}
	case *ast.Or:
		return &OrNode{Left: t.cond(n.Left), Right: t.cond(n.Right)}
	case *ast.Not:
		return &NotNode{Value: t.cond(n.Value)}
	}
	return t.translate(n)
}

func (t *translator) opAssign(n *ast.OpAsgn) Node {
	id, ok := n.Target.(*ast.Ident)
	if !ok {
		return t.fail(n.Pos, "cannot use %s= on %T", n.Op, n.Target)
	}
	depth, slot := t.env.ResolveOrDeclare(id.Name)
	read := &ReadLocal{Name: id.Name, Depth: depth, Slot: slot}
	write := func(v Node) Node {
		return &WriteLocal{Name: id.Name, Depth: depth, Slot: slot, Value: v}
	}
	value := t.translate(n.Value)
	switch n.Op {
	case "||":
		return &OrNode{Left: read, Right: write(value)}
	case "&&":
		return &AndNode{Left: read, Right: write(value)}
	}
	return write(&CallNode{Pos: n.Pos, Receiver: read, Name: n.Op, Args: []Node{value}})
}

func (t *translator) constAssign(n *ast.ConstAsgn) Node {
	c := &ConstAssignNode{Name: n.Name, Pos: n.Pos}
	switch t.strategy.Constants {
	case ConstForbidden:
		return t.fail(n.Pos, "dynamic constant assignment")
	case ConstSelf:
		c.OnSelf = true
	}
	c.Value = t.translate(n.Value)
	return c
}

func (t *translator) caseExpr(n *ast.Case) Node {
	c := &CaseNode{Subject: t.optional(n.Subject), Else: t.optional(n.Else)}
	for _, w := range n.Whens {
		c.Whens = append(c.Whens, WhenClause{Values: t.list(w.Values), Body: t.optional(w.Body)})
	}
	return c
}

func (t *translator) begin(n *ast.Begin) Node {
	b := &BeginNode{Body: t.optional(n.Body)}
	for _, r := range n.Rescues {
		c := RescueClause{Classes: t.list(r.Classes)}
		if r.Var != "" {
			c.HasVar = true
			c.Depth, c.Slot = t.env.ResolveOrDeclare(r.Var)
		}
		c.Body = t.optional(r.Body)
		b.Rescues = append(b.Rescues, c)
	}
	b.Else = t.optional(n.Else)
	b.Ensure = t.optional(n.Ensure)
	return b
}

func (t *translator) call(n *ast.Call) Node {
	if n.Receiver == nil && n.Name == "lambda" && n.Block != nil && len(n.Args) == 0 && n.BlockArg == nil {
		return &BlockNode{Unit: t.unit(LambdaUnit, "lambda in "+t.strategy.Name, n.Block.Pos, n.Block.Params, n.Block.Body), Lambda: true}
	}
	c := &CallNode{Pos: n.Pos, Name: n.Name, Args: t.list(n.Args)}
	if n.Receiver != nil {
		c.Receiver = t.translate(n.Receiver)
	}
	if n.BlockArg != nil {
		c.BlockArg = t.translate(n.BlockArg)
	}
	if n.Block != nil {
		c.Block = &BlockNode{Unit: t.unit(BlockUnit, "block in "+t.strategy.Name, n.Block.Pos, n.Block.Params, n.Block.Body)}
	}
	return c
}

func (t *translator) def(n *ast.Def) Node {
	d := &DefNode{
		Name:           string(t.session.Intern(n.Name)),
		Unit:           t.unit(MethodUnit, n.Name, n.Pos, n.Params, n.Body),
		DefaultPrivate: t.topLevel(),
		Pos:            n.Pos,
	}
	if depth, slot, ok := t.env.Resolve(visibilitySlot); ok {
		d.HasVis, d.VisDepth, d.VisSlot = true, depth, slot
	}
	return d
}

// topLevel reports whether the translator's scope belongs to a top-level
// body rather than a method or module body.
func (t *translator) topLevel() bool {
	for e := t.env; e != nil; e = e.parent {
		if e.kind == TopLevelEnv {
			return true
		}
		if e.methodBoundary() {
			return false
		}
	}
	return false
}

func (t *translator) module(n *ast.Module) Node {
	if t.strategy.Constants == ConstForbidden {
		return t.fail(n.Pos, "module definition in method body")
	}
	c := t.child(t.session.NewEnvironment(t.env, ModuleEnv, true), moduleBodyStrategy(n.Name))
	unit := c.finish(ModuleUnit, n.Pos, c.translate(n.Body), Arity{})
	return &ModuleNode{Name: n.Name, Unit: unit, Pos: n.Pos}
}
