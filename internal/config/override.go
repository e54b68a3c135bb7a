package config

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"scriptcc/internal/errors"
)

// Override is one parsed -s KEY=VALUE pair. Exactly one of Int, Str or List
// is set. Values are data, never evaluated: the grammar below accepts
// integers, quoted strings, bare words and bracketed lists and nothing else.
type Override struct {
	Key  string
	Int  *int64
	Str  *string
	List []string
}

func (ov Override) value() interface{} {
	switch {
	case ov.Int != nil:
		return *ov.Int
	case ov.Str != nil:
		return *ov.Str
	default:
		return ov.List
	}
}

var overrideLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Keys and bare-word values (order matters)
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Integer literals
		{Name: "Int", Pattern: `-?[0-9]+`},

		// Single- or double-quoted strings
		{Name: "String", Pattern: `'[^']*'|"[^"]*"`},

		// Punctuation
		{Name: "Punct", Pattern: `[=\[\],]`},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t]+`},
	},
})

type overrideExpr struct {
	Key   string        `parser:"@Ident '='"`
	Value *settingValue `parser:"@@"`
}

type settingValue struct {
	List   []scalarValue `parser:"'[' ( @@ ( ',' @@ )* )? ']'"`
	Scalar *scalarValue  `parser:"| @@"`
}

type scalarValue struct {
	Int  *int64  `parser:"@Int"`
	Str  *string `parser:"| @String"`
	Word *string `parser:"| @Ident"`
}

var overrideParser = participle.MustBuild[overrideExpr](
	participle.Lexer(overrideLexer),
	participle.Elide("Whitespace"),
)

// ParseOverride parses one -s argument. A missing "=" or any other syntax
// violation is a ConfigError; unknown keys are accepted here and routed to
// Extra at assignment time.
func ParseOverride(arg string) (Override, error) {
	if !strings.Contains(arg, "=") {
		return Override{}, errors.Config(errors.ErrorOverrideSyntax, "expected KEY=VALUE, got %q", arg)
	}
	expr, err := overrideParser.ParseString("", arg)
	if err != nil {
		return Override{}, errors.Config(errors.ErrorOverrideSyntax, "malformed override %q: %v", arg, err)
	}
	ov := Override{Key: expr.Key}
	val := expr.Value
	switch {
	case val.Scalar != nil:
		sc := *val.Scalar
		switch {
		case sc.Word != nil:
			ov.Str = sc.Word
		case sc.Str != nil:
			s := unquote(*sc.Str)
			ov.Str = &s
		default:
			ov.Int = sc.Int
		}
	default:
		ov.List = make([]string, 0, len(val.List))
		for _, item := range val.List {
			ov.List = append(ov.List, item.text())
		}
	}
	return ov, nil
}

// ParseOverrides parses a list of -s arguments, preserving declaration order.
func ParseOverrides(args []string) ([]Override, error) {
	overrides := make([]Override, 0, len(args))
	for _, arg := range args {
		ov, err := ParseOverride(arg)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}
	return overrides, nil
}

func (sc scalarValue) text() string {
	switch {
	case sc.Str != nil:
		return unquote(*sc.Str)
	case sc.Word != nil:
		return *sc.Word
	default:
		return strconv.FormatInt(*sc.Int, 10)
	}
}

// unquote strips the surrounding quote pair the lexer guaranteed is there.
func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
