package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// A token is a single lexical element.
type token struct {
	Kind  tokenKind
	Value string
	Err   error

	Line, Col int
	// Space is true if whitespace immediately precedes the token.
	Space bool
}

type tokenKind int

const (
	badToken tokenKind = iota

	eofToken       // end of input, added by the parser
	newlineToken   // semicolon and newline
	identToken     // identifier or keyword
	constToken     // capitalized identifier
	intToken       // integer
	floatToken     // floating-point number
	stringToken    // "string", Value is the undecoded body
	rawStringToken // 'string', Value is the decoded body
	symbolToken    // :symbol, Value excludes the colon
	opToken        // operators and punctuation
	commentToken   // # comment
	dataToken      // everything after __END__
)

var kindNames = [...]string{
	badToken:       "bad token",
	eofToken:       "end of input",
	newlineToken:   "newline",
	identToken:     "identifier",
	constToken:     "constant",
	intToken:       "integer",
	floatToken:     "float",
	stringToken:    "string",
	rawStringToken: "string",
	symbolToken:    "symbol",
	opToken:        "operator",
	commentToken:   "comment",
	dataToken:      "data",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("tokenKind(%d)", int(k))
	}
	return kindNames[k]
}

// operators lists operator spellings, longest first within each length so
// that the lexer always takes the longest match.
var operators = []string{
	"...", "<=>", "===", "||=", "&&=", "**=",
	"**", "==", "!=", ">=", "<=", "&&", "||", "<<", ">>", "+=", "-=", "*=", "/=",
	"%=", "..", "::", "->", "=>",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^", "~", "?",
	".", ",", "(", ")", "[", "]", "{", "}", ":",
}

// lexer holds the state shared by lexer state functions.
type lexer struct {
	src    *bufio.Reader
	tokens chan<- token

	line, col int
	// space records whether whitespace preceded the next token.
	space bool
	// bol records whether the lexer is at the beginning of a line.
	bol bool
}

// lexFn is a lexer state function. Each lexFn lexes a token, sends it on the
// lexer's channel, and returns the next lexFn to use.
type lexFn func(l *lexer) lexFn

// lex converts a source into a stream of tokens.
func lex(src *bufio.Reader, tokens chan<- token) {
	l := &lexer{src: src, tokens: tokens, line: 1, col: 1, bol: true}
	state := eatSpace
	for state != nil {
		state = state(l)
	}
	close(tokens)
}

// accept appends the next run of characters in src which satisfy the predicate
// to b. Returns b after appending, the first rune which did not satisfy the
// predicate, and any error that occurred. If there was no such error, the
// last rune is unread.
func (l *lexer) accept(predicate func(rune) bool, b []byte) ([]byte, rune, error) {
	r, _, err := l.src.ReadRune()
	for {
		if err != nil {
			return b, r, err
		}
		if !predicate(r) {
			break
		}
		b = append(b, string(r)...)
		r, _, err = l.src.ReadRune()
	}
	l.src.UnreadRune()
	return b, r, nil
}

// send emits a token at the given position and clears the whitespace flag.
func (l *lexer) send(kind tokenKind, value string, line, col int) {
	l.tokens <- token{Kind: kind, Value: value, Line: line, Col: col, Space: l.space}
	l.space = false
	l.bol = false
}

// fail emits a bad token and stops lexing.
func (l *lexer) fail(err error, line, col int) lexFn {
	l.tokens <- token{Kind: badToken, Err: err, Line: line, Col: col}
	return nil
}

// eatSpace consumes space and decides the next lexFn to use.
func eatSpace(l *lexer) lexFn {
	eaten, r, err := l.accept(func(r rune) bool { return strings.ContainsRune(" \r\f\t\v", r) }, nil)
	if len(eaten) > 0 {
		l.space = true
		l.col += utf8.RuneCount(eaten)
	}
	if err != nil {
		if err != io.EOF {
			return l.fail(err, l.line, l.col)
		}
		return nil
	}
	switch {
	case r == ';', r == '\n':
		l.src.ReadRune()
		l.send(newlineToken, string(r), l.line, l.col)
		if r == '\n' {
			l.line++
			l.col = 1
			l.bol = true
		} else {
			l.col++
		}
		l.space = true
		return eatSpace
	case r == '\\':
		l.src.ReadRune()
		peek, _ := l.src.Peek(1)
		if len(peek) == 1 && peek[0] == '\n' {
			// Line continuation.
			l.src.ReadRune()
			l.line++
			l.col = 1
			l.space = true
			return eatSpace
		}
		return l.fail(fmt.Errorf("unexpected backslash"), l.line, l.col)
	case r == '#':
		return lexComment
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', r == '_', r >= 0x80:
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '"':
		return lexString
	case r == '\'':
		return lexRawString
	case r == ':':
		peek, _ := l.src.Peek(2)
		if len(peek) == 2 && (peek[1] == '_' || 'a' <= peek[1] && peek[1] <= 'z' || 'A' <= peek[1] && peek[1] <= 'Z') {
			return lexSymbol
		}
		return lexOp
	}
	return lexOp
}

// lexComment lexes a # comment. The terminating newline is left for eatSpace.
func lexComment(l *lexer) lexFn {
	b, _, err := l.accept(func(r rune) bool { return r != '\n' }, nil)
	line, col := l.line, l.col
	l.col += utf8.RuneCount(b)
	l.send(commentToken, string(b), line, col)
	if err != nil {
		return nil
	}
	return eatSpace
}

func isIdentRune(r rune) bool {
	return 'a' <= r && r <= 'z' ||
		'A' <= r && r <= 'Z' ||
		'0' <= r && r <= '9' ||
		r == '_' || r >= 0x80
}

// lexIdent lexes an identifier, which consists of a-z, A-Z, 0-9, _, and all
// runes greater than 0x80, optionally followed by ? or !.
func lexIdent(l *lexer) lexFn {
	bol := l.bol
	line, col := l.line, l.col
	b, r, err := l.accept(isIdentRune, nil)
	if err == nil && (r == '?' || r == '!') {
		// Take the suffix unless it starts an operator such as != or ?=.
		peek, _ := l.src.Peek(3)
		if len(peek) < 2 || peek[1] != '=' || len(peek) == 3 && peek[2] == '=' {
			l.src.ReadRune()
			b = append(b, byte(r))
		}
	}
	s := norm.NFC.String(string(b))
	l.col += utf8.RuneCount(b)
	if bol && s == "__END__" {
		peek, _ := l.src.Peek(1)
		if len(peek) == 0 || peek[0] == '\n' || peek[0] == '\r' {
			return lexData
		}
	}
	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(first) {
		l.send(constToken, s, line, col)
	} else {
		l.send(identToken, s, line, col)
	}
	if err != nil {
		return nil
	}
	return eatSpace
}

// lexData consumes the remainder of the source after __END__.
func lexData(l *lexer) lexFn {
	// Skip the rest of the __END__ line.
	l.accept(func(r rune) bool { return r != '\n' }, nil)
	l.src.ReadRune()
	var sb strings.Builder
	io.Copy(&sb, l.src)
	l.send(dataToken, sb.String(), l.line+1, 1)
	return nil
}

// lexSymbol lexes a :symbol.
func lexSymbol(l *lexer) lexFn {
	line, col := l.line, l.col
	l.src.ReadRune()
	b, r, err := l.accept(isIdentRune, nil)
	if err == nil && (r == '?' || r == '!' || r == '=') {
		peek, _ := l.src.Peek(2)
		if len(peek) < 2 || peek[1] != '=' && peek[1] != '>' {
			l.src.ReadRune()
			b = append(b, byte(r))
		}
	}
	s := norm.NFC.String(string(b))
	l.col += 1 + utf8.RuneCount(b)
	l.send(symbolToken, s, line, col)
	if err != nil {
		return nil
	}
	return eatSpace
}

// lexOp lexes an operator or punctuation, taking the longest match.
func lexOp(l *lexer) lexFn {
	peek, _ := l.src.Peek(3)
	for _, op := range operators {
		if len(op) <= len(peek) && string(peek[:len(op)]) == op {
			l.src.Discard(len(op))
			line, col := l.line, l.col
			l.col += len(op)
			l.send(opToken, op, line, col)
			return eatSpace
		}
	}
	r, _, _ := l.src.ReadRune()
	return l.fail(fmt.Errorf("invalid character %q", r), l.line, l.col)
}

// lexNumber lexes an integer or floating-point number. Underscores between
// digits are ignored.
func lexNumber(l *lexer) lexFn {
	line, col := l.line, l.col
	digits := func(r rune) bool { return '0' <= r && r <= '9' || r == '_' }
	b, r, err := l.accept(digits, nil)
	kind := intToken
	if err == nil && r == '.' {
		// Only a digit after the dot makes a float; 1.times is a call.
		peek, _ := l.src.Peek(2)
		if len(peek) == 2 && '0' <= peek[1] && peek[1] <= '9' {
			l.src.ReadRune()
			b = append(b, '.')
			b, r, err = l.accept(digits, b)
			kind = floatToken
		}
	}
	if err == nil && (r == 'e' || r == 'E') {
		peek, _ := l.src.Peek(3)
		n := 1
		if len(peek) > 1 && (peek[1] == '+' || peek[1] == '-') {
			n = 2
		}
		if len(peek) > n && '0' <= peek[n] && peek[n] <= '9' {
			b = append(b, peek[:n]...)
			l.src.Discard(n)
			b, _, err = l.accept(digits, b)
			kind = floatToken
		}
	}
	l.col += len(b)
	l.send(kind, strings.ReplaceAll(string(b), "_", ""), line, col)
	if err != nil {
		return nil
	}
	return eatSpace
}

// lexString lexes a double-quoted string. Escapes and interpolations are left
// for the parser, but the lexer tracks #{} nesting so that quotes inside an
// interpolation do not end the string.
func lexString(l *lexer) lexFn {
	line, col := l.line, l.col
	l.src.ReadRune()
	l.col++
	var b []byte
	escaped := false
	depth := 0
	for {
		r, _, err := l.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				return l.fail(fmt.Errorf("unterminated string meets end of file"), line, col)
			}
			return l.fail(err, line, col)
		}
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '{' && depth > 0:
			depth++
		case r == '{' && len(b) > 0 && b[len(b)-1] == '#':
			depth++
		case r == '}' && depth > 0:
			depth--
		case r == '"' && depth == 0:
			l.send(stringToken, string(b), line, col)
			return eatSpace
		}
		b = append(b, string(r)...)
	}
}

// lexRawString lexes a single-quoted string, in which only \\ and \' are
// escapes.
func lexRawString(l *lexer) lexFn {
	line, col := l.line, l.col
	l.src.ReadRune()
	l.col++
	var b []byte
	for {
		r, _, err := l.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				return l.fail(fmt.Errorf("unterminated string meets end of file"), line, col)
			}
			return l.fail(err, line, col)
		}
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		switch r {
		case '\'':
			l.send(rawStringToken, string(b), line, col)
			return eatSpace
		case '\\':
			peek, _ := l.src.Peek(1)
			if len(peek) == 1 && (peek[0] == '\\' || peek[0] == '\'') {
				l.src.ReadRune()
				l.col++
				b = append(b, peek[0])
				continue
			}
		}
		b = append(b, string(r)...)
	}
}
