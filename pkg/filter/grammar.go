// Package filter parses the list filter language accepted by the DRIMS list
// endpoints and compiles it into GORM conditions.
//
//	status_code = 'A' AND (parish_code IN ('01', '02') OR warehouse_name LIKE 'KING%')
//
// Identifiers must be whitelisted by the caller; values are always bound as
// parameters.
package filter

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Expression is a disjunction of terms.
type Expression struct {
	Terms []*Term `parser:"@@ ( 'OR' @@ )*"`
}

// Term is a conjunction of factors.
type Term struct {
	Factors []*Factor `parser:"@@ ( 'AND' @@ )*"`
}

// Factor is a parenthesised expression or a single comparison.
type Factor struct {
	Sub        *Expression `parser:"  '(' @@ ')'"`
	Comparison *Comparison `parser:"| @@"`
}

// Comparison tests one field.
type Comparison struct {
	Pos lexer.Position

	Field string   `parser:"@Ident"`
	Not   bool     `parser:"( @'NOT'?"`
	In    []*Value `parser:"  'IN' '(' @@ ( ',' @@ )* ')'"`
	Op    string   `parser:"| @( '<=' | '>=' | '!=' | '<>' | '=' | '<' | '>' | 'LIKE' )"`
	Value *Value   `parser:"  @@ )"`
}

// Value is a literal.
type Value struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Bool   *string `parser:"| @( 'TRUE' | 'FALSE' )"`
	Null   bool    `parser:"| @'NULL'"`
}

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(AND|OR|NOT|IN|LIKE|TRUE|FALSE|NULL)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?`},
	{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`},
	{Name: "Operator", Pattern: `<=|>=|!=|<>|=|<|>`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Expression](
	participle.Lexer(filterLexer),
	participle.Unquote("String"),
	participle.CaseInsensitive("Keyword"),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)
