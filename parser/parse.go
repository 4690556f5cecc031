// Package parser converts source text into syntax trees.
package parser

/*
This file is the recursive-descent parser. Precedence, loosest first:
statement modifiers, not/and/or, assignment, ternary, range, ||, &&,
equality, comparison, | and ^, &, shifts, + and -, * / %, unary, **,
postfix.
*/

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zephyrtronium/rubble/ast"
)

// Parser parses source text for the runtime. The zero value is ready to use.
type Parser struct{}

// Parse parses src. locals names variables already in scope, e.g. those bound
// by earlier lines of an interactive session.
func (Parser) Parse(src *ast.Source, locals []string) (*ast.Root, error) {
	return Parse(src, locals...)
}

// Parse parses src into a syntax tree. locals names variables already in
// scope.
func Parse(src *ast.Source, locals ...string) (root *ast.Root, err error) {
	text, err := decode(src.Text)
	if err != nil {
		return nil, &Error{Label: src.Name, Line: 1, Col: 1, Msg: err.Error()}
	}
	p := newParser(src.Name, strings.NewReader(text), 1)
	p.push(true, locals)
	defer p.catch(&err)
	body := p.parseStmts()
	if tok := p.peek(); tok.Kind != eofToken {
		panic(p.unexpected(tok))
	}
	root = &ast.Root{
		Pos:    ast.Pos{Label: src.Name, Line: 1, Col: 1},
		Source: &ast.Source{Name: src.Name, Text: text},
		Body:   body,
		Data:   p.data,
	}
	return root, nil
}

// ParseReader reads all of r and parses it under the given name.
func ParseReader(r io.Reader, name string) (*ast.Root, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return nil, err
	}
	return Parse(&ast.Source{Name: name, Text: sb.String()})
}

// keywords are identifiers which cannot name local variables or be called
// without a receiver.
var keywords = map[string]bool{
	"and": true, "begin": true, "case": true, "def": true, "do": true,
	"else": true, "elsif": true, "end": true, "ensure": true, "false": true,
	"if": true, "module": true, "next": true, "nil": true, "not": true,
	"or": true, "rescue": true, "retry": true, "return": true, "self": true,
	"then": true, "true": true, "unless": true, "until": true, "when": true,
	"while": true, "yield": true,
}

// valueKeywords are the keywords which may begin a command argument.
var valueKeywords = map[string]bool{
	"begin": true, "case": true, "def": true, "false": true, "nil": true,
	"not": true, "self": true, "true": true, "yield": true,
}

// defOperators are the operators which may name a method.
var defOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "==": true,
	"!=": true, "<": true, ">": true, "<=": true, ">=": true, "<=>": true,
	"===": true, "<<": true, ">>": true, "!": true, "[": true, "&": true,
	"|": true, "^": true, "**": true,
}

type scope struct {
	names map[string]bool
	// boundary is true for method, module, and top-level scopes.
	boundary bool
}

type parser struct {
	label string
	toks  []token
	pos   int

	scopes []*scope
	// noDo is positive while a do keyword belongs to an enclosing construct,
	// i.e. in loop conditions and command arguments.
	noDo int
	data *string
}

func newParser(label string, r io.Reader, line int) *parser {
	tokens := make(chan token)
	go lex(bufio.NewReader(r), tokens)
	p := &parser{label: label}
	last := token{Line: line, Col: 1}
	for tok := range tokens {
		tok.Line += line - 1
		switch tok.Kind {
		case commentToken:
			continue
		case dataToken:
			s := tok.Value
			p.data = &s
			continue
		}
		p.toks = append(p.toks, tok)
		last = tok
	}
	p.toks = append(p.toks, token{Kind: eofToken, Line: last.Line, Col: last.Col + len(last.Value)})
	return p
}

func (p *parser) errorf(tok token, format string, args ...interface{}) *Error {
	return &Error{Label: p.label, Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected(tok token) *Error {
	switch tok.Kind {
	case badToken:
		return p.errorf(tok, "%v", tok.Err)
	case eofToken:
		err := p.errorf(tok, "unexpected end of input")
		err.Incomplete = true
		return err
	case newlineToken:
		return p.errorf(tok, "unexpected newline")
	}
	return p.errorf(tok, "unexpected %v %q", tok.Kind, tok.Value)
}

// catch recovers a parse error panic into err.
func (p *parser) catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}

func (p *parser) posOf(tok token) ast.Pos {
	return ast.Pos{Label: p.label, Line: tok.Line, Col: tok.Col}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

// peekAt returns the token n places after the next one.
func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.Kind != eofToken {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(tok token, ops ...string) bool {
	if tok.Kind != opToken {
		return false
	}
	for _, op := range ops {
		if tok.Value == op {
			return true
		}
	}
	return false
}

func (p *parser) isKeyword(tok token, kws ...string) bool {
	if tok.Kind != identToken {
		return false
	}
	for _, kw := range kws {
		if tok.Value == kw {
			return true
		}
	}
	return false
}

func (p *parser) acceptOp(op string) bool {
	if p.isOp(p.peek(), op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.isKeyword(p.peek(), kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(op string) token {
	tok := p.next()
	if !p.isOp(tok, op) {
		panic(p.unexpected(tok))
	}
	return tok
}

func (p *parser) expectKeyword(kw string) token {
	tok := p.next()
	if !p.isKeyword(tok, kw) {
		panic(p.unexpected(tok))
	}
	return tok
}

func (p *parser) skipNewlines() {
	for p.peek().Kind == newlineToken {
		p.next()
	}
}

func (p *parser) push(boundary bool, names []string) {
	s := &scope{names: make(map[string]bool, len(names)), boundary: boundary}
	for _, name := range names {
		s.names[name] = true
	}
	p.scopes = append(p.scopes, s)
}

func (p *parser) pop() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *parser) declare(name string) {
	p.scopes[len(p.scopes)-1].names[name] = true
}

// isLocal reports whether name is a local variable visible from the current
// scope.
func (p *parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		s := p.scopes[i]
		if s.names[name] {
			return true
		}
		if s.boundary {
			break
		}
	}
	return false
}

// nest clears noDo for a bracketed region and returns a function restoring
// it.
func (p *parser) nest() func() {
	saved := p.noDo
	p.noDo = 0
	return func() { p.noDo = saved }
}

// startsArg reports whether tok can begin an argument. If command is true,
// tok follows a method name without parentheses.
func (p *parser) startsArg(tok token, command bool) bool {
	if command && !tok.Space {
		return false
	}
	switch tok.Kind {
	case intToken, floatToken, stringToken, rawStringToken, symbolToken, constToken:
		return true
	case identToken:
		return !keywords[tok.Value] || valueKeywords[tok.Value]
	case opToken:
		switch tok.Value {
		case "(", "[", "->", "!":
			return true
		case "-":
			// foo -x is an argument; foo - x is arithmetic.
			return !command || !p.peekAt(1).Space
		case "*", "&":
			return command && !p.peekAt(1).Space
		}
	}
	return false
}

func isTerm(tok token, terms []string) bool {
	if tok.Kind != identToken && tok.Kind != opToken {
		return false
	}
	for _, t := range terms {
		if tok.Value == t {
			return true
		}
	}
	return false
}

// parseStmts parses statements until end of input or one of terms.
func (p *parser) parseStmts(terms ...string) ast.Node {
	var stmts []ast.Node
	for {
		p.skipNewlines()
		tok := p.peek()
		if tok.Kind == eofToken || isTerm(tok, terms) {
			break
		}
		stmts = append(stmts, p.parseStmt())
		tok = p.peek()
		if tok.Kind != newlineToken && tok.Kind != eofToken && !isTerm(tok, terms) {
			panic(p.unexpected(tok))
		}
	}
	switch len(stmts) {
	case 0:
		return nil
	case 1:
		return stmts[0]
	}
	return &ast.Seq{Pos: stmts[0].Position(), Stmts: stmts}
}

// parseBody parses statements with optional rescue, else, and ensure clauses,
// as in begin, def, and do blocks. The caller consumes the end keyword.
func (p *parser) parseBody() ast.Node {
	start := p.peek()
	body := p.parseStmts("rescue", "else", "ensure", "end")
	if !p.isKeyword(p.peek(), "rescue", "else", "ensure") {
		return body
	}
	b := &ast.Begin{Pos: p.posOf(start), Body: body}
	for {
		tok := p.peek()
		if !p.isKeyword(tok, "rescue") {
			break
		}
		p.next()
		r := &ast.Rescue{Pos: p.posOf(tok)}
		for {
			c := p.peek()
			if c.Kind == newlineToken || p.isKeyword(c, "then") || p.isOp(c, "=>") {
				break
			}
			r.Classes = append(r.Classes, p.parseTernary())
			if !p.acceptOp(",") {
				break
			}
		}
		if p.acceptOp("=>") {
			v := p.next()
			if v.Kind != identToken || keywords[v.Value] {
				panic(p.unexpected(v))
			}
			p.declare(v.Value)
			r.Var = v.Value
		}
		p.parseThen()
		r.Body = p.parseStmts("rescue", "else", "ensure", "end")
		b.Rescues = append(b.Rescues, r)
	}
	if p.acceptKeyword("else") {
		b.Else = p.parseStmts("ensure", "end")
	}
	if p.acceptKeyword("ensure") {
		b.Ensure = p.parseStmts("end")
	}
	return b
}

// parseStmt parses an expression followed by any number of modifiers.
func (p *parser) parseStmt() ast.Node {
	n := p.parseExprStmt()
	for {
		tok := p.peek()
		if tok.Kind != identToken {
			return n
		}
		switch tok.Value {
		case "if":
			p.next()
			n = &ast.If{Pos: n.Position(), Cond: p.parseExprStmt(), Then: n}
		case "unless":
			p.next()
			n = &ast.If{Pos: n.Position(), Cond: p.parseExprStmt(), Else: n}
		case "while", "until":
			p.next()
			n = &ast.While{Pos: n.Position(), Cond: p.parseExprStmt(), Body: n, Until: tok.Value == "until"}
		case "rescue":
			p.next()
			r := &ast.Rescue{Pos: p.posOf(tok), Body: p.parseExprStmt()}
			n = &ast.Begin{Pos: n.Position(), Body: n, Rescues: []*ast.Rescue{r}}
		default:
			return n
		}
	}
}

// parseExprStmt parses not, and, and or.
func (p *parser) parseExprStmt() ast.Node {
	left := p.parseNot()
	for {
		tok := p.peek()
		switch {
		case p.isKeyword(tok, "and"):
			p.next()
			p.skipNewlines()
			left = &ast.And{Pos: left.Position(), Left: left, Right: p.parseNot()}
		case p.isKeyword(tok, "or"):
			p.next()
			p.skipNewlines()
			left = &ast.Or{Pos: left.Position(), Left: left, Right: p.parseNot()}
		default:
			return left
		}
	}
}

func (p *parser) parseNot() ast.Node {
	tok := p.peek()
	if p.isKeyword(tok, "not") {
		p.next()
		return &ast.Not{Pos: p.posOf(tok), Value: p.parseNot()}
	}
	return p.parseExpr()
}

// parseExpr parses assignments.
func (p *parser) parseExpr() ast.Node {
	lhs := p.parseTernary()
	tok := p.peek()
	if tok.Kind != opToken {
		return lhs
	}
	switch tok.Value {
	case "=":
		p.next()
		p.skipNewlines()
		return p.assign(lhs, tok)
	case "+=", "-=", "*=", "/=", "%=", "**=", "||=", "&&=":
		p.next()
		p.skipNewlines()
		id, ok := lhs.(*ast.Ident)
		if !ok {
			panic(p.errorf(tok, "cannot use %s on this target", tok.Value))
		}
		p.declare(id.Name)
		op := strings.TrimSuffix(tok.Value, "=")
		return &ast.OpAsgn{Pos: id.Pos, Target: id, Op: op, Value: p.parseExpr()}
	}
	return lhs
}

func (p *parser) assign(lhs ast.Node, eq token) ast.Node {
	switch l := lhs.(type) {
	case *ast.Ident:
		p.declare(l.Name)
		return &ast.Asgn{Pos: l.Pos, Name: l.Name, Value: p.parseExpr()}
	case *ast.Const:
		return &ast.ConstAsgn{Pos: l.Pos, Name: l.Name, Value: p.parseExpr()}
	case *ast.Call:
		if l.Receiver == nil || l.Block != nil || l.BlockArg != nil {
			break
		}
		if l.Name == "[]" {
			args := append(l.Args[:len(l.Args):len(l.Args)], p.parseExpr())
			return &ast.Call{Pos: l.Pos, Receiver: l.Receiver, Name: "[]=", Args: args}
		}
		if len(l.Args) == 0 && !strings.HasSuffix(l.Name, "?") && !strings.HasSuffix(l.Name, "!") {
			return &ast.Call{Pos: l.Pos, Receiver: l.Receiver, Name: l.Name + "=", Args: []ast.Node{p.parseExpr()}}
		}
	}
	panic(p.errorf(eq, "unexpected '='"))
}

func (p *parser) parseTernary() ast.Node {
	cond := p.parseRange()
	if !p.acceptOp("?") {
		return cond
	}
	p.skipNewlines()
	then := p.parseTernary()
	p.skipNewlines()
	p.expectOp(":")
	p.skipNewlines()
	els := p.parseTernary()
	return &ast.If{Pos: cond.Position(), Cond: cond, Then: then, Else: els}
}

func (p *parser) parseRange() ast.Node {
	lo := p.parseOrOr()
	tok := p.peek()
	if !p.isOp(tok, "..", "...") {
		return lo
	}
	p.next()
	hi := p.parseOrOr()
	return &ast.Range{Pos: lo.Position(), Lo: lo, Hi: hi, Exclusive: tok.Value == "..."}
}

func (p *parser) parseOrOr() ast.Node {
	left := p.parseAndAnd()
	for p.acceptOp("||") {
		p.skipNewlines()
		left = &ast.Or{Pos: left.Position(), Left: left, Right: p.parseAndAnd()}
	}
	return left
}

func (p *parser) parseAndAnd() ast.Node {
	left := p.parseEquality()
	for p.acceptOp("&&") {
		p.skipNewlines()
		left = &ast.And{Pos: left.Position(), Left: left, Right: p.parseEquality()}
	}
	return left
}

// binary parses a left-associative binary operator level. Each operator
// becomes a method call on the left operand.
func (p *parser) binary(operand func() ast.Node, ops ...string) ast.Node {
	left := operand()
	for {
		tok := p.peek()
		if !p.isOp(tok, ops...) {
			return left
		}
		p.next()
		p.skipNewlines()
		right := operand()
		left = &ast.Call{Pos: p.posOf(tok), Receiver: left, Name: tok.Value, Args: []ast.Node{right}}
	}
}

func (p *parser) parseEquality() ast.Node {
	return p.binary(p.parseComparison, "==", "!=", "===", "<=>")
}

func (p *parser) parseComparison() ast.Node {
	return p.binary(p.parseBitOr, "<", ">", "<=", ">=")
}

func (p *parser) parseBitOr() ast.Node {
	return p.binary(p.parseBitAnd, "|", "^")
}

func (p *parser) parseBitAnd() ast.Node {
	return p.binary(p.parseShift, "&")
}

func (p *parser) parseShift() ast.Node {
	return p.binary(p.parseAdditive, "<<", ">>")
}

func (p *parser) parseAdditive() ast.Node {
	return p.binary(p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative() ast.Node {
	return p.binary(p.parseUnary, "*", "/", "%")
}

func (p *parser) parseUnary() ast.Node {
	tok := p.peek()
	switch {
	case p.isOp(tok, "!"):
		p.next()
		return &ast.Not{Pos: p.posOf(tok), Value: p.parseUnary()}
	case p.isOp(tok, "-"):
		p.next()
		if next := p.peek(); (next.Kind == intToken || next.Kind == floatToken) && !next.Space {
			p.next()
			// -2 ** 2 is -(2 ** 2).
			if p.isOp(p.peek(), "**") {
				return &ast.Call{Pos: p.posOf(tok), Receiver: p.parsePower(p.number(next, "")), Name: "-@"}
			}
			return p.parsePower(p.parsePostfix(p.number(next, "-")))
		}
		return &ast.Call{Pos: p.posOf(tok), Receiver: p.parseUnary(), Name: "-@"}
	case p.isOp(tok, "+"):
		p.next()
		return p.parseUnary()
	}
	return p.parsePower(p.parsePostfix(p.parsePrimary()))
}

// parsePower parses a right-associative ** applied to base. The exponent may
// carry its own unary operators.
func (p *parser) parsePower(base ast.Node) ast.Node {
	tok := p.peek()
	if !p.isOp(tok, "**") {
		return base
	}
	p.next()
	p.skipNewlines()
	return &ast.Call{Pos: p.posOf(tok), Receiver: base, Name: "**", Args: []ast.Node{p.parseUnary()}}
}

func (p *parser) number(tok token, sign string) ast.Node {
	if tok.Kind == floatToken {
		f, err := strconv.ParseFloat(sign+tok.Value, 64)
		if err != nil {
			panic(p.errorf(tok, "invalid float %s%s", sign, tok.Value))
		}
		return &ast.Float{Pos: p.posOf(tok), Value: f}
	}
	n, err := strconv.ParseInt(sign+tok.Value, 10, 64)
	if err != nil {
		panic(p.errorf(tok, "integer %s%s out of range", sign, tok.Value))
	}
	return &ast.Int{Pos: p.posOf(tok), Value: n}
}

// parsePostfix parses method calls, constant scoping, and indexing applied
// to n.
func (p *parser) parsePostfix(n ast.Node) ast.Node {
	for {
		tok := p.peek()
		if tok.Kind == newlineToken {
			// A leading dot continues the previous line.
			i := p.pos
			for p.toks[i].Kind == newlineToken {
				i++
			}
			if p.isOp(p.toks[i], ".") {
				p.pos = i
				tok = p.peek()
			}
		}
		switch {
		case p.isOp(tok, "."):
			p.next()
			p.skipNewlines()
			name := p.next()
			switch {
			case name.Kind == identToken, name.Kind == constToken:
				args, blockArg, _ := p.parseCallArgs()
				n = &ast.Call{Pos: p.posOf(name), Receiver: n, Name: name.Value, Args: args, BlockArg: blockArg, Block: p.parseBlock()}
			case p.isOp(name, "("):
				// recv.(args) is recv.call(args).
				args, blockArg := p.parseArgList(")")
				n = &ast.Call{Pos: p.posOf(name), Receiver: n, Name: "call", Args: args, BlockArg: blockArg, Block: p.parseBlock()}
			default:
				panic(p.unexpected(name))
			}
		case p.isOp(tok, "::"):
			p.next()
			c := p.next()
			if c.Kind != constToken {
				panic(p.unexpected(c))
			}
			n = &ast.ScopedConst{Pos: p.posOf(c), Scope: n, Name: c.Value}
		case p.isOp(tok, "[") && !tok.Space:
			p.next()
			args, blockArg := p.parseArgList("]")
			if blockArg != nil {
				panic(p.errorf(tok, "block argument in index"))
			}
			n = &ast.Call{Pos: p.posOf(tok), Receiver: n, Name: "[]", Args: args}
		default:
			return n
		}
	}
}

// parseCallArgs parses a parenthesized or command argument list following a
// method name. ok is false if there is no argument list.
func (p *parser) parseCallArgs() (args []ast.Node, blockArg ast.Node, ok bool) {
	tok := p.peek()
	if p.isOp(tok, "(") && !tok.Space {
		p.next()
		args, blockArg = p.parseArgList(")")
		return args, blockArg, true
	}
	if p.startsArg(tok, true) {
		args, blockArg = p.parseCommandArgs()
		return args, blockArg, true
	}
	return nil, nil, false
}

// parseArg parses one argument. isBlock is true for an &arg.
func (p *parser) parseArg() (arg ast.Node, isBlock bool) {
	tok := p.peek()
	switch {
	case p.isOp(tok, "*"):
		p.next()
		return &ast.Splat{Pos: p.posOf(tok), Value: p.parseTernary()}, false
	case p.isOp(tok, "&"):
		p.next()
		return p.parseTernary(), true
	}
	return p.parseExpr(), false
}

// parseArgList parses arguments up to and including close.
func (p *parser) parseArgList(close string) (args []ast.Node, blockArg ast.Node) {
	defer p.nest()()
	p.skipNewlines()
	for !p.acceptOp(close) {
		if blockArg != nil {
			panic(p.errorf(p.peek(), "block argument should be last"))
		}
		arg, isBlock := p.parseArg()
		if isBlock {
			blockArg = arg
		} else {
			args = append(args, arg)
		}
		p.skipNewlines()
		if !p.acceptOp(",") {
			p.expectOp(close)
			break
		}
		p.skipNewlines()
	}
	return args, blockArg
}

// parseCommandArgs parses arguments without parentheses, ending at the first
// token which does not continue the list.
func (p *parser) parseCommandArgs() (args []ast.Node, blockArg ast.Node) {
	p.noDo++
	defer func() { p.noDo-- }()
	for {
		if blockArg != nil {
			panic(p.errorf(p.peek(), "block argument should be last"))
		}
		arg, isBlock := p.parseArg()
		if isBlock {
			blockArg = arg
		} else {
			args = append(args, arg)
		}
		if !p.acceptOp(",") {
			return args, blockArg
		}
		p.skipNewlines()
	}
}

// parseBlock parses a block literal if one follows.
func (p *parser) parseBlock() *ast.BlockLit {
	tok := p.peek()
	switch {
	case p.isOp(tok, "{"):
		p.next()
		return p.parseBlockBody(tok, "}")
	case p.isKeyword(tok, "do") && p.noDo == 0:
		p.next()
		return p.parseBlockBody(tok, "end")
	}
	return nil
}

func (p *parser) parseBlockBody(open token, close string) *ast.BlockLit {
	defer p.nest()()
	p.push(false, nil)
	defer p.pop()
	b := &ast.BlockLit{Pos: p.posOf(open)}
	p.skipNewlines()
	if tok := p.peek(); p.isOp(tok, "||") {
		p.next()
		b.Params = &ast.Params{Pos: p.posOf(tok)}
	} else if p.isOp(tok, "|") {
		p.next()
		b.Params = p.parseParams("|")
	}
	if close == "}" {
		b.Body = p.parseStmts("}")
		p.expectOp("}")
	} else {
		b.Body = p.parseBody()
		p.expectKeyword("end")
	}
	return b
}

// parseParams parses a parameter list ending with close, or ending at the
// first token which does not continue the list if close is empty.
func (p *parser) parseParams(close string) *ast.Params {
	params := &ast.Params{Pos: p.posOf(p.peek())}
	if close != "" {
		p.skipNewlines()
		if p.acceptOp(close) {
			return params
		}
	}
	seen := make(map[string]bool)
	name := func() token {
		tok := p.next()
		if tok.Kind != identToken || keywords[tok.Value] {
			panic(p.unexpected(tok))
		}
		if seen[tok.Value] {
			panic(p.errorf(tok, "duplicated argument name"))
		}
		seen[tok.Value] = true
		p.declare(tok.Value)
		return tok
	}
	for {
		if params.Block != "" {
			panic(p.errorf(p.peek(), "block parameter should be last"))
		}
		switch tok := p.peek(); {
		case p.isOp(tok, "*"):
			p.next()
			if params.Rest != "" {
				panic(p.errorf(tok, "multiple rest parameters"))
			}
			params.Rest = name().Value
		case p.isOp(tok, "&"):
			p.next()
			params.Block = name().Value
		default:
			n := name()
			if p.acceptOp("=") {
				if params.Rest != "" {
					panic(p.errorf(n, "optional parameter after rest parameter"))
				}
				var def ast.Node
				if close == "|" {
					def = p.parseAdditive()
				} else {
					def = p.parseTernary()
				}
				params.Optional = append(params.Optional, &ast.OptParam{Name: n.Value, Default: def})
			} else {
				if len(params.Optional) > 0 || params.Rest != "" {
					panic(p.errorf(n, "required parameter after optional parameters"))
				}
				params.Required = append(params.Required, n.Value)
			}
		}
		if !p.acceptOp(",") {
			break
		}
		p.skipNewlines()
	}
	if close != "" {
		p.skipNewlines()
		p.expectOp(close)
	}
	return params
}

func (p *parser) parsePrimary() ast.Node {
	tok := p.next()
	pos := p.posOf(tok)
	switch tok.Kind {
	case intToken, floatToken:
		return p.number(tok, "")
	case stringToken:
		return p.parseString(tok)
	case rawStringToken:
		return &ast.Str{Pos: pos, Value: tok.Value}
	case symbolToken:
		return &ast.Sym{Pos: pos, Name: tok.Value}
	case constToken:
		return &ast.Const{Pos: pos, Name: tok.Value}
	case identToken:
		return p.parseIdent(tok)
	case opToken:
		switch tok.Value {
		case "(":
			defer p.nest()()
			body := p.parseStmts(")")
			p.expectOp(")")
			if body == nil {
				return &ast.Nil{Pos: pos}
			}
			return body
		case "[":
			elems, blockArg := p.parseArgList("]")
			if blockArg != nil {
				panic(p.errorf(tok, "block argument in array"))
			}
			return &ast.Array{Pos: pos, Elems: elems}
		case "->":
			return p.parseLambda(tok)
		}
	}
	panic(p.unexpected(tok))
}

func (p *parser) parseIdent(tok token) ast.Node {
	pos := p.posOf(tok)
	switch tok.Value {
	case "nil":
		return &ast.Nil{Pos: pos}
	case "true":
		return &ast.True{Pos: pos}
	case "false":
		return &ast.False{Pos: pos}
	case "self":
		return &ast.Self{Pos: pos}
	case "if", "unless":
		return p.parseIf(tok)
	case "while", "until":
		return p.parseWhile(tok)
	case "case":
		return p.parseCase(tok)
	case "def":
		return p.parseDef(tok)
	case "module":
		return p.parseModule(tok)
	case "begin":
		body := p.parseBody()
		p.expectKeyword("end")
		if b, ok := body.(*ast.Begin); ok {
			b.Pos = pos
			return b
		}
		return &ast.Begin{Pos: pos, Body: body}
	case "return":
		return &ast.Return{Pos: pos, Value: p.parseOptValue()}
	case "next":
		return &ast.Next{Pos: pos, Value: p.parseOptValue()}
	case "retry":
		return &ast.Retry{Pos: pos}
	case "yield":
		args, blockArg, _ := p.parseCallArgs()
		if blockArg != nil {
			panic(p.errorf(tok, "block argument to yield"))
		}
		return &ast.Yield{Pos: pos, Args: args}
	case "not":
		return &ast.Not{Pos: pos, Value: p.parseExpr()}
	}
	if keywords[tok.Value] {
		panic(p.unexpected(tok))
	}
	if next := p.peek(); p.isLocal(tok.Value) && !(p.isOp(next, "(") && !next.Space) {
		return &ast.Ident{Pos: pos, Name: tok.Value}
	}
	args, blockArg, ok := p.parseCallArgs()
	block := p.parseBlock()
	if !ok && block == nil {
		return &ast.Ident{Pos: pos, Name: tok.Value}
	}
	return &ast.Call{Pos: pos, Name: tok.Value, Args: args, BlockArg: blockArg, Block: block}
}

// parseOptValue parses the optional value of return or next.
func (p *parser) parseOptValue() ast.Node {
	if !p.startsArg(p.peek(), false) {
		return nil
	}
	return p.parseExpr()
}

// parseThen consumes the separator between a condition and its body.
func (p *parser) parseThen() {
	tok := p.peek()
	if tok.Kind != newlineToken && !p.isKeyword(tok, "then") {
		panic(p.unexpected(tok))
	}
	p.skipNewlines()
	p.acceptKeyword("then")
}

func (p *parser) parseIf(kw token) ast.Node {
	unless := kw.Value == "unless"
	cond := p.parseExprStmt()
	p.parseThen()
	n := &ast.If{Pos: p.posOf(kw), Cond: cond, Then: p.parseStmts("elsif", "else", "end")}
	tail := n
	for !unless {
		tok := p.peek()
		if !p.isKeyword(tok, "elsif") {
			break
		}
		p.next()
		c := p.parseExprStmt()
		p.parseThen()
		e := &ast.If{Pos: p.posOf(tok), Cond: c, Then: p.parseStmts("elsif", "else", "end")}
		tail.Else = e
		tail = e
	}
	if p.acceptKeyword("else") {
		tail.Else = p.parseStmts("end")
	}
	p.expectKeyword("end")
	if unless {
		n.Then, n.Else = n.Else, n.Then
	}
	return n
}

func (p *parser) parseWhile(kw token) ast.Node {
	saved := p.noDo
	p.noDo = 1
	cond := p.parseExprStmt()
	p.noDo = 0
	if tok := p.peek(); !p.acceptKeyword("do") && tok.Kind != newlineToken {
		panic(p.unexpected(tok))
	}
	body := p.parseStmts("end")
	p.expectKeyword("end")
	p.noDo = saved
	return &ast.While{Pos: p.posOf(kw), Cond: cond, Body: body, Until: kw.Value == "until"}
}

func (p *parser) parseCase(kw token) ast.Node {
	c := &ast.Case{Pos: p.posOf(kw)}
	if p.peek().Kind != newlineToken {
		c.Subject = p.parseExprStmt()
	}
	p.skipNewlines()
	for {
		tok := p.peek()
		if !p.isKeyword(tok, "when") {
			break
		}
		p.next()
		w := &ast.When{Pos: p.posOf(tok)}
		for {
			w.Values = append(w.Values, p.parseTernary())
			if !p.acceptOp(",") {
				break
			}
			p.skipNewlines()
		}
		p.parseThen()
		w.Body = p.parseStmts("when", "else", "end")
		c.Whens = append(c.Whens, w)
	}
	if len(c.Whens) == 0 {
		panic(p.unexpected(p.peek()))
	}
	if p.acceptKeyword("else") {
		c.Else = p.parseStmts("end")
	}
	p.expectKeyword("end")
	return c
}

func (p *parser) parseDef(kw token) ast.Node {
	tok := p.next()
	var name string
	switch {
	case tok.Kind == identToken && !keywords[tok.Value], tok.Kind == constToken:
		name = tok.Value
		// def name=(v) defines a setter.
		if eq := p.peek(); p.isOp(eq, "=") && !eq.Space && p.isOp(p.peekAt(1), "(") {
			p.next()
			name += "="
		}
	case tok.Kind == opToken && defOperators[tok.Value]:
		name = tok.Value
		if name == "[" {
			p.expectOp("]")
			name = "[]"
			if eq := p.peek(); p.isOp(eq, "=") && !eq.Space {
				p.next()
				name = "[]="
			}
		}
	default:
		panic(p.unexpected(tok))
	}
	p.push(true, nil)
	defer p.pop()
	var params *ast.Params
	if next := p.peek(); p.isOp(next, "(") {
		p.next()
		params = p.parseParams(")")
	} else if next.Kind != newlineToken {
		params = p.parseParams("")
	}
	defer p.nest()()
	body := p.parseBody()
	p.expectKeyword("end")
	return &ast.Def{Pos: p.posOf(kw), Name: name, Params: params, Body: body}
}

func (p *parser) parseModule(kw token) ast.Node {
	tok := p.next()
	if tok.Kind != constToken {
		panic(p.errorf(tok, "module name must be CONSTANT"))
	}
	p.push(true, nil)
	defer p.pop()
	defer p.nest()()
	body := p.parseBody()
	p.expectKeyword("end")
	return &ast.Module{Pos: p.posOf(kw), Name: tok.Value, Body: body}
}

func (p *parser) parseLambda(arrow token) ast.Node {
	p.push(false, nil)
	defer p.pop()
	var params *ast.Params
	if tok := p.peek(); p.isOp(tok, "(") {
		p.next()
		params = p.parseParams(")")
	} else if tok.Kind == identToken || p.isOp(tok, "*", "&") {
		params = p.parseParams("")
	}
	defer p.nest()()
	var body ast.Node
	switch tok := p.next(); {
	case p.isOp(tok, "{"):
		body = p.parseStmts("}")
		p.expectOp("}")
	case p.isKeyword(tok, "do"):
		body = p.parseBody()
		p.expectKeyword("end")
	default:
		panic(p.unexpected(tok))
	}
	return &ast.Lambda{Pos: p.posOf(arrow), Params: params, Body: body}
}

// parseString decodes escapes in a double-quoted string and parses its
// interpolations.
func (p *parser) parseString(tok token) ast.Node {
	pos := p.posOf(tok)
	var parts []ast.Node
	var sb strings.Builder
	s := tok.Value
	line := tok.Line
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			sb.WriteString(unescape(s[i+1]))
			if s[i+1] == '\n' {
				line++
			}
			i += 2
		case c == '#' && i+1 < len(s) && s[i+1] == '{':
			end := matchBrace(s, i+2)
			if end < 0 {
				panic(p.errorf(tok, "unterminated interpolation"))
			}
			if sb.Len() > 0 {
				parts = append(parts, &ast.Str{Pos: pos, Value: sb.String()})
				sb.Reset()
			}
			parts = append(parts, p.parseInterpolation(s[i+2:end], line, pos))
			line += strings.Count(s[i:end], "\n")
			i = end + 1
		default:
			if c == '\n' {
				line++
			}
			sb.WriteByte(c)
			i++
		}
	}
	if len(parts) == 0 {
		return &ast.Str{Pos: pos, Value: sb.String()}
	}
	if sb.Len() > 0 {
		parts = append(parts, &ast.Str{Pos: pos, Value: sb.String()})
	}
	return &ast.Interp{Pos: pos, Parts: parts}
}

func (p *parser) parseInterpolation(text string, line int, pos ast.Pos) ast.Node {
	sub := newParser(p.label, strings.NewReader(text), line)
	sub.scopes = p.scopes
	body := sub.parseStmts()
	if tok := sub.peek(); tok.Kind != eofToken {
		panic(sub.unexpected(tok))
	}
	if body == nil {
		return &ast.Str{Pos: pos}
	}
	return body
}

// matchBrace returns the index of the brace closing an interpolation whose
// contents begin at start, or -1 if there is none.
func matchBrace(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '0':
		return "\x00"
	case 's':
		return " "
	case 'e':
		return "\x1b"
	case 'a':
		return "\a"
	case 'b':
		return "\b"
	case 'v':
		return "\v"
	case 'f':
		return "\f"
	case '\n':
		return ""
	}
	return string([]byte{c})
}
