package driver

import (
	"fmt"
)

// State tracks a build request through the pipeline. Each state is
// reachable only from its predecessor; object-kind targets jump straight to
// Emitted after bitcode optimization, compile-only builds after
// compilation. Any state may fall to Failed.
type State int

const (
	StateParsed State = iota
	StateCompiled
	StateSymbolResolved
	StateLinked
	StateBitcodeOptimized
	StateTranslated
	StateTransformed
	StatePassesFlushedPre
	StateMinified
	StatePassesFlushedPost
	StateEmitted
	StateFailed
)

var stateNames = map[State]string{
	StateParsed:            "Parsed",
	StateCompiled:          "Compiled",
	StateSymbolResolved:    "SymbolResolved",
	StateLinked:            "Linked",
	StateBitcodeOptimized:  "BitcodeOptimized",
	StateTranslated:        "Translated",
	StateTransformed:       "Transformed",
	StatePassesFlushedPre:  "PassesFlushedPre",
	StateMinified:          "Minified",
	StatePassesFlushedPost: "PassesFlushedPost",
	StateEmitted:           "Emitted",
	StateFailed:            "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// terminal reports whether no further transition is allowed.
func (s State) terminal() bool {
	return s == StateEmitted || s == StateFailed
}

// allowedTransition validates one step of the machine.
func allowedTransition(from, to State) bool {
	if from.terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	if to == from+1 && to <= StateEmitted {
		return true
	}
	// Object-kind targets short-circuit after bitcode optimization,
	// compile-only builds right after compilation.
	if to == StateEmitted && (from == StateBitcodeOptimized || from == StateCompiled) {
		return true
	}
	return false
}
