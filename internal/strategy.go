package internal

import "fmt"

// ParserContext selects how a source unit is translated.
type ParserContext int

// Translation contexts.
const (
	// TopLevelContext translates a program or file.
	TopLevelContext ParserContext = iota
	// ShellContext translates one line of interactive input. The unit's
	// result is a *ShellResult carrying the frame for later lines.
	ShellContext
	// ModuleContext translates code evaluated with a module as self.
	// Constants are defined on self.
	ModuleContext
)

func (c ParserContext) String() string {
	switch c {
	case TopLevelContext:
		return "top-level"
	case ShellContext:
		return "shell"
	case ModuleContext:
		return "module"
	}
	return fmt.Sprintf("ParserContext(%d)", int(c))
}

// ConstPolicy determines where constant assignments define constants.
type ConstPolicy int

// Constant definition policies.
const (
	// ConstLexical defines constants on the lexical module.
	ConstLexical ConstPolicy = iota
	// ConstSelf defines constants on self, which must be a module.
	ConstSelf
	// ConstForbidden rejects constant assignments at translation time.
	ConstForbidden
)

// ReturnPolicy determines what a unit does with returns reaching its
// boundary.
type ReturnPolicy int

// Return policies.
const (
	// ReturnAsError converts returns into LocalJumpErrors.
	ReturnAsError ReturnPolicy = iota
	// ReturnCatch makes returns targeting the unit its result.
	ReturnCatch
)

// Strategy is the set of choices distinguishing translation contexts. There
// is one traversal for every context; it consults the strategy where
// contexts differ.
type Strategy struct {
	// Name is the indicative name of units translated with the strategy.
	Name        string
	Constants   ConstPolicy
	Returns     ReturnPolicy
	ShellResult bool
}

// Strategies for each context.
var (
	TopLevelStrategy = Strategy{Name: "(main)", Constants: ConstLexical, Returns: ReturnAsError}
	ShellStrategy    = Strategy{Name: "(shell)", Constants: ConstLexical, Returns: ReturnAsError, ShellResult: true}
	ModuleStrategy   = Strategy{Name: "(module)", Constants: ConstSelf, Returns: ReturnAsError}
)

// Strategy returns the strategy for the context.
func (c ParserContext) Strategy() Strategy {
	switch c {
	case TopLevelContext:
		return TopLevelStrategy
	case ShellContext:
		return ShellStrategy
	case ModuleContext:
		return ModuleStrategy
	}
	panic(fmt.Errorf("rubble: invalid ParserContext: %v", c))
}

// methodStrategy returns the strategy for a method body.
func methodStrategy(name string) Strategy {
	return Strategy{Name: name, Constants: ConstForbidden, Returns: ReturnCatch}
}

// blockStrategy returns the strategy for a block or lambda inside a unit
// translated with outer. Blocks keep the constant policy of their
// surroundings and never produce shell results.
func blockStrategy(outer Strategy, name string) Strategy {
	return Strategy{Name: name, Constants: outer.Constants, Returns: ReturnCatch}
}

// moduleBodyStrategy returns the strategy for a module keyword body.
func moduleBodyStrategy(name string) Strategy {
	return Strategy{Name: name, Constants: ConstLexical, Returns: ReturnAsError}
}
