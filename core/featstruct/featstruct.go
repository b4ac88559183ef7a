// Package featstruct parses bracketed feature-structure expressions such as
// "{nounAgr}[gender:f number:sg]" and resolves them against a lexicon's
// feature system.
//
// Grammar:
//
//	FS   := ['{' TypeId '}'] '[' Pair (' ' Pair)* ']'
//	Pair := FeatId ':' (SymbolId | FS)
//
// Failures are reported as *Error values; nothing in this package panics on
// bad input.
package featstruct

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sillsdev/liftbridge/core/errors"
)

// FS is a parsed, unresolved feature structure.
type FS struct {
	Type  string
	Pairs []Pair
}

// Pair is one feature specification. Exactly one of Symbol and Nested is set.
type Pair struct {
	Feature string
	Symbol  string
	Nested  *FS
}

// ErrorKind classifies a parse or resolution failure.
type ErrorKind int

// Failure kinds.
const (
	Unbalanced ErrorKind = iota + 1
	Malformed
	UnknownType
	UnknownFeature
	UnknownValue
)

var kindNames = map[ErrorKind]string{
	Unbalanced:     "unbalanced brackets",
	Malformed:      "malformed expression",
	UnknownType:    "unknown feature structure type",
	UnknownFeature: "unknown feature",
	UnknownValue:   "unknown feature value",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is returned for every failure in this package.
type Error struct {
	Kind  ErrorKind
	Input string
	// Name is the offending identifier for the Unknown* kinds.
	Name string
	// Pos is the byte offset of the problem when known, else -1.
	Pos int
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "feature structure %q: %s", e.Input, e.Kind)
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.Pos >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Pos)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap classifies every feature failure as invalid input.
func (e *Error) Unwrap() error { return errors.ErrInvalidInput }

// Cause returns the underlying parser error, if any.
func (e *Error) Cause() error { return e.Err }

// IsUnresolved reports whether the failure names an identifier that may be
// declared later, as opposed to a syntax problem.
func (e *Error) IsUnresolved() bool {
	return e.Kind == UnknownType || e.Kind == UnknownFeature || e.Kind == UnknownValue
}

//nolint:govet // participle grammar tags are not standard struct tags
type fsGrammar struct {
	Type  *string        `( "{" @Ident "}" )?`
	Pairs []*pairGrammar `"[" @@+ "]"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type pairGrammar struct {
	Feature string     `@Ident ":"`
	Symbol  *string    `( @Ident`
	Nested  *fsGrammar `| @@ )`
}

var fsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Punct", Pattern: `[\[\]{}:]`},
	{Name: "Ident", Pattern: `[^\s\[\]{}:]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var fsParser = participle.MustBuild[fsGrammar](
	participle.Lexer(fsLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a feature expression.
func Parse(s string) (*FS, error) {
	if err := checkBrackets(s); err != nil {
		return nil, err
	}
	g, err := fsParser.ParseString("", s)
	if err != nil {
		pos := -1
		var perr participle.Error
		if errors.As(err, &perr) {
			pos = perr.Position().Offset
		}
		return nil, &Error{Kind: Malformed, Input: s, Pos: pos, Err: err}
	}
	return convert(g), nil
}

// checkBrackets verifies that every '[' and '{' is closed by its own kind in
// nesting order.
func checkBrackets(s string) error {
	var stack []int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '[', '{':
			stack = append(stack, i)
		case ']', '}':
			open := byte('[')
			if c == '}' {
				open = '{'
			}
			if len(stack) == 0 || s[stack[len(stack)-1]] != open {
				return &Error{Kind: Unbalanced, Input: s, Pos: i}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return &Error{Kind: Unbalanced, Input: s, Pos: stack[len(stack)-1]}
	}
	return nil
}

func convert(g *fsGrammar) *FS {
	fs := &FS{}
	if g.Type != nil {
		fs.Type = *g.Type
	}
	for _, p := range g.Pairs {
		pair := Pair{Feature: p.Feature}
		if p.Symbol != nil {
			pair.Symbol = *p.Symbol
		} else if p.Nested != nil {
			pair.Nested = convert(p.Nested)
		}
		fs.Pairs = append(fs.Pairs, pair)
	}
	return fs
}

// String renders the expression in canonical form.
func (fs *FS) String() string {
	if fs == nil {
		return ""
	}
	var b strings.Builder
	fs.write(&b)
	return b.String()
}

func (fs *FS) write(b *strings.Builder) {
	if fs.Type != "" {
		b.WriteString("{" + fs.Type + "}")
	}
	b.WriteByte('[')
	for i, p := range fs.Pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Feature)
		b.WriteByte(':')
		if p.Nested != nil {
			p.Nested.write(b)
		} else {
			b.WriteString(p.Symbol)
		}
	}
	b.WriteByte(']')
}
