// Package ast defines the raw syntax tree handed from the parser to the
// translator.
//
// Trees are never modified after parsing. The translator lowers them into
// executable nodes without retaining references to them, so a tree may be
// discarded once a unit has been produced.
package ast

import "fmt"

// Source is a named unit of program text.
type Source struct {
	// Name is the label used for positions, generally a file name.
	Name string
	// Text is the decoded program text.
	Text string
}

// Pos is a source position.
type Pos struct {
	Label     string
	Line, Col int
}

// Position returns p. It allows every node embedding a Pos to satisfy Node.
func (p Pos) Position() Pos {
	return p
}

// String formats the position as label:line:col.
func (p Pos) String() string {
	if p.Label == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Label, p.Line, p.Col)
}

// Node is any syntax tree element.
type Node interface {
	Position() Pos
}

// Root is the result of parsing one source.
type Root struct {
	Pos
	Source *Source
	// Body is the program body, or nil if the source has no statements.
	Body Node
	// Data is the text following an __END__ line, if there was one.
	Data *string
}

// Seq is a sequence of statements. Its value is that of the last statement.
type Seq struct {
	Pos
	Stmts []Node
}

// Literals.
type (
	// Nil is the nil literal.
	Nil struct{ Pos }
	// True is the true literal.
	True struct{ Pos }
	// False is the false literal.
	False struct{ Pos }
	// Self refers to the current receiver.
	Self struct{ Pos }

	// Int is an integer literal.
	Int struct {
		Pos
		Value int64
	}
	// Float is a floating-point literal.
	Float struct {
		Pos
		Value float64
	}
	// Str is a string literal without interpolation.
	Str struct {
		Pos
		Value string
	}
	// Interp is a string literal with interpolated expressions. Parts are
	// either *Str or arbitrary expressions.
	Interp struct {
		Pos
		Parts []Node
	}
	// Sym is a symbol literal.
	Sym struct {
		Pos
		Name string
	}
	// Array is an array literal. Elements may be *Splat.
	Array struct {
		Pos
		Elems []Node
	}
	// Splat expands an array into the surrounding argument or element list.
	Splat struct {
		Pos
		Value Node
	}
	// Range is a range literal, or a flip-flop in a condition.
	Range struct {
		Pos
		Lo, Hi    Node
		Exclusive bool
	}
)

// Variables and constants.
type (
	// Ident is a bare identifier. It is a local variable read if the name is
	// in scope, otherwise a call to self with no arguments.
	Ident struct {
		Pos
		Name string
	}
	// Asgn assigns a local variable.
	Asgn struct {
		Pos
		Name  string
		Value Node
	}
	// OpAsgn is an operator assignment such as x += 1 or x ||= y. Target is
	// an *Ident.
	OpAsgn struct {
		Pos
		Target Node
		Op     string
		Value  Node
	}
	// Const reads a constant through the lexical module chain.
	Const struct {
		Pos
		Name string
	}
	// ScopedConst reads a constant from an explicit module, as in A::B.
	ScopedConst struct {
		Pos
		Scope Node
		Name  string
	}
	// ConstAsgn assigns a constant.
	ConstAsgn struct {
		Pos
		Name  string
		Value Node
	}
)

// Logic and control flow.
type (
	// And is short-circuit conjunction (&& or and).
	And struct {
		Pos
		Left, Right Node
	}
	// Or is short-circuit disjunction (|| or or).
	Or struct {
		Pos
		Left, Right Node
	}
	// Not is logical negation.
	Not struct {
		Pos
		Value Node
	}
	// If is a conditional. unless and the ternary operator also produce If.
	If struct {
		Pos
		Cond, Then, Else Node
	}
	// While is a while or until loop.
	While struct {
		Pos
		Cond, Body Node
		Until      bool
	}
	// Case is a case expression. Subject may be nil.
	Case struct {
		Pos
		Subject Node
		Whens   []*When
		Else    Node
	}
	// When is one arm of a Case.
	When struct {
		Pos
		Values []Node
		Body   Node
	}
	// Begin is a begin block with optional rescue, else, and ensure clauses.
	Begin struct {
		Pos
		Body    Node
		Rescues []*Rescue
		Else    Node
		Ensure  Node
	}
	// Rescue is one rescue clause. Classes is empty for a bare rescue. Var
	// is empty if the exception is not bound.
	Rescue struct {
		Pos
		Classes []Node
		Var     string
		Body    Node
	}
	// Next is a next statement.
	Next struct {
		Pos
		Value Node
	}
	// Return is a return statement.
	Return struct {
		Pos
		Value Node
	}
	// Retry is a retry statement.
	Retry struct{ Pos }
)

// Calls and definitions.
type (
	// Call is a method call. Receiver is nil for calls to self. Args may
	// contain *Splat. BlockArg is the &arg argument, if any.
	Call struct {
		Pos
		Receiver Node
		Name     string
		Args     []Node
		BlockArg Node
		Block    *BlockLit
	}
	// Yield passes arguments to the current method's block.
	Yield struct {
		Pos
		Args []Node
	}
	// BlockLit is a block literal attached to a call.
	BlockLit struct {
		Pos
		Params *Params
		Body   Node
	}
	// Lambda is a stabby lambda literal.
	Lambda struct {
		Pos
		Params *Params
		Body   Node
	}
	// Def is a method definition.
	Def struct {
		Pos
		Name   string
		Params *Params
		Body   Node
	}
	// Module is a module definition.
	Module struct {
		Pos
		Name string
		Body Node
	}
)

// Params is a parameter list. Required parameters precede optional ones,
// which precede the rest and block parameters.
type Params struct {
	Pos
	Required []string
	Optional []*OptParam
	// Rest and Block are empty if absent.
	Rest  string
	Block string
}

// OptParam is a parameter with a default value.
type OptParam struct {
	Name    string
	Default Node
}

// Names returns every parameter name in declaration order.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	r := append([]string(nil), p.Required...)
	for _, o := range p.Optional {
		r = append(r, o.Name)
	}
	if p.Rest != "" {
		r = append(r, p.Rest)
	}
	if p.Block != "" {
		r = append(r, p.Block)
	}
	return r
}
