package internal

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/zephyrtronium/contains"

	"github.com/zephyrtronium/rubble/ast"
)

// Parser turns source text into syntax trees. locals names the variables
// already in scope, which the parser needs to tell variable reads from
// method calls.
type Parser interface {
	Parse(src *ast.Source, locals []string) (*ast.Root, error)
}

// DebugManager is notified when a source unit starts and finishes
// translating.
type DebugManager interface {
	NotifyStartLoading(name string)
	NotifyFinishedLoading(name string)
}

// Session drives translation. It owns the return ID counter and the symbol
// table. Translations through one Session are serialized.
type Session struct {
	vm *VM
	// Log receives debug output about translation.
	Log *log.Logger
	// Debug, if not nil, is notified around each source unit translation.
	Debug DebugManager

	// mu serializes translations.
	mu sync.Mutex

	idMu   sync.Mutex
	lastID ReturnID

	symMu   sync.RWMutex
	symbols map[string]Symbol
	symList []Symbol
}

// NewSession creates a session translating for vm.
func NewSession(vm *VM) *Session {
	s := &Session{vm: vm, symbols: make(map[string]Symbol)}
	if vm != nil {
		s.Log = vm.Log
	}
	return s
}

// AllocateReturnID returns a new return ID, greater than every ID the
// session has returned before. Panics if the IDs are exhausted.
func (s *Session) AllocateReturnID() ReturnID {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	if s.lastID == math.MaxInt64 {
		panic("rubble: Return IDs exhausted")
	}
	s.lastID++
	return s.lastID
}

// Intern records a symbol in the session's symbol table and returns it.
func (s *Session) Intern(name string) Symbol {
	s.symMu.RLock()
	sym, ok := s.symbols[name]
	s.symMu.RUnlock()
	if ok {
		return sym
	}
	s.symMu.Lock()
	defer s.symMu.Unlock()
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	sym = Symbol(name)
	s.symbols[name] = sym
	s.symList = append(s.symList, sym)
	return sym
}

// AllSymbols returns every interned symbol in order of first use.
func (s *Session) AllSymbols() []Symbol {
	s.symMu.RLock()
	defer s.symMu.RUnlock()
	return append([]Symbol(nil), s.symList...)
}

// Translate translates a syntax tree into a unit. If parent is not nil, the
// unit's variables are resolved against the bindings visible from it, and
// the unit must be invoked with parent as its snapshot. No unit is produced
// if translation fails; the error is a SyntaxError *Exception.
func (s *Session) Translate(root *ast.Root, ctx ParserContext, parent *Frame) (*RootUnit, error) {
	if root == nil {
		return nil, s.syntaxError(nil)
	}
	strategy := ctx.Strategy()
	src := root.Source
	if src == nil {
		src = &ast.Source{Name: root.Pos.Label}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Debug != nil {
		s.Debug.NotifyStartLoading(src.Name)
		defer s.Debug.NotifyFinishedLoading(src.Name)
	}
	var outer *Environment
	if parent != nil {
		outer = s.environmentForFrame(parent)
	}
	kind, envKind := TopLevelUnit, TopLevelEnv
	if ctx == ModuleContext {
		kind, envKind = ModuleUnit, ModuleEnv
	}
	env := s.NewEnvironment(outer, envKind, true)
	t := newTranslator(s, env, strategy, src)
	unit := t.finish(kind, root.Pos, t.translate(root.Body), Arity{})
	if err := t.Err(); err != nil {
		return nil, err
	}
	unit.Data = root.Data
	return unit, nil
}

// Parse parses and translates a source unit.
func (s *Session) Parse(p Parser, src *ast.Source, ctx ParserContext, parent *Frame) (*RootUnit, error) {
	root, err := p.Parse(src, frameLocals(parent))
	if err != nil || root == nil {
		return nil, s.syntaxError(err)
	}
	return s.Translate(root, ctx, parent)
}

// TranslateMethod translates a method-shaped body into an unbound method
// definition named (unknown). The caller names it with Bind.
func (s *Session) TranslateMethod(params *ast.Params, body ast.Node, src *ast.Source) (*MethodDefinition, error) {
	if src == nil {
		src = &ast.Source{}
	}
	pos := ast.Pos{Label: src.Name}
	if params != nil {
		pos = params.Pos
	} else if body != nil {
		pos = body.Position()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTranslator(s, nil, methodStrategy("(unknown)"), src)
	unit := t.unit(MethodUnit, "(unknown)", pos, params, body)
	if err := t.Err(); err != nil {
		return nil, err
	}
	return &MethodDefinition{Unit: unit}, nil
}

func (s *Session) logUnit(u *RootUnit) {
	if s.Log != nil {
		s.Log.Debug("translated", "unit", u.Name, "kind", u.Kind, "returnID", u.ReturnID, "slots", u.Layout.Size())
	}
}

// syntaxError converts a parse failure into a SyntaxError.
func (s *Session) syntaxError(err error) *Exception {
	if e, ok := err.(*Exception); ok {
		return e
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return s.newSyntaxError(msg)
}

func (s *Session) newSyntaxError(msg string) *Exception {
	if s.vm == nil {
		if msg == "" {
			msg = PlaceholderMessage
		}
		return &Exception{Class: NewModule("SyntaxError", nil, nil), Message: msg}
	}
	return s.vm.NewException("SyntaxError", msg)
}

// environmentForFrame rebuilds the scopes visible from a live frame, so
// that new code can be translated against its bindings. Each frame on the
// declaration chain becomes one scope with the same slots.
func (s *Session) environmentForFrame(f *Frame) *Environment {
	var chain []*Frame
	set := contains.Set{}
	for p := f; p != nil && set.Add(p.UniqueID()); p = p.Declaration {
		chain = append(chain, p)
		if k := p.Unit.Kind; k == MethodUnit || k == ModuleUnit {
			break
		}
	}
	var env *Environment
	for i := len(chain) - 1; i >= 0; i-- {
		env = s.NewEnvironment(env, EvalEnv, false)
		for _, name := range chain[i].Unit.Layout.Names {
			env.Declare(name)
		}
	}
	return env
}

// frameLocals returns the source-visible variable names bound in f and the
// frames it can see.
func frameLocals(f *Frame) []string {
	var r []string
	set := contains.Set{}
	for p := f; p != nil && set.Add(p.UniqueID()); p = p.Declaration {
		for _, name := range p.Unit.Layout.Names {
			if !strings.HasPrefix(name, "%") {
				r = append(r, name)
			}
		}
		if k := p.Unit.Kind; k == MethodUnit || k == ModuleUnit {
			break
		}
	}
	return r
}

// MethodDefinition is a translated method body which has not yet been given
// a name.
type MethodDefinition struct {
	Unit *RootUnit
}

// Bind names the method and defines it on owner.
func (d *MethodDefinition) Bind(name string, owner *Module) *Method {
	m := &Method{Name: name, Owner: owner, Visibility: Public, Closure: &Closure{Unit: d.Unit}}
	m.Closure.Rebind(m)
	owner.Define(m)
	return m
}
