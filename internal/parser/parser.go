package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	reqLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "Compare", Pattern: `[=!<>]=|[<>]`},
		{Name: "Logical", Pattern: `\|\||&&`},
		{Name: "Paren", Pattern: `[()]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})
)

// Expression is a requirements expression as condor_submit accepts it:
// comparisons and bare boolean attributes, grouped by parentheses and
// joined with && and ||. || binds loosest.
type Expression struct {
	Or []*AndExpr `parser:"@@ ( '||' @@ )*"`
}

type AndExpr struct {
	And []*Term `parser:"@@ ( '&&' @@ )*"`
}

type Term struct {
	Group      *Expression `parser:"'(' @@ ')'"`
	Comparison *Comparison `parser:"| @@"`
}

type Comparison struct {
	Left  string `parser:"@Ident"`
	Op    string `parser:"( @Compare"`
	Right Value  `parser:"@@ )?"` // Bare attribute when absent
}

type Value interface{ v() string }

type StringVal struct {
	Value string `parser:"@String"`
}

func (val StringVal) v() string {
	return strconv.Quote(val.Value)
}

type NumberVal struct {
	Value float64 `parser:"@Number"`
}

func (val NumberVal) v() string {
	return strconv.FormatFloat(val.Value, 'g', -1, 64)
}

type IdentVal struct {
	Value string `parser:"@Ident"`
} // If no quotes, it is an IdentVal

func (val IdentVal) v() string {
	return val.Value
}

func GetParser() *participle.Parser[Expression] {
	parser := participle.MustBuild[Expression](
		participle.Lexer(reqLexer),
		participle.Unquote("String"),
		participle.Union[Value](StringVal{}, NumberVal{}, IdentVal{}),
		participle.Elide("Whitespace"),
	)

	return parser
}

func Parse(s string) (*Expression, error) {
	parser := GetParser()
	expr, err := parser.ParseString("", s)
	if err != nil {
		return nil, err
	}
	return expr, nil
}

func (e *Expression) String() string {
	parts := make([]string, 0, len(e.Or))
	for _, a := range e.Or {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " || ")
}

func (a *AndExpr) String() string {
	parts := make([]string, 0, len(a.And))
	for _, t := range a.And {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " && ")
}

func (t *Term) String() string {
	if t.Group != nil {
		return "(" + t.Group.String() + ")"
	}
	return t.Comparison.String()
}

func (c *Comparison) String() string {
	if c.Op == "" {
		return c.Left
	}
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right.v())
}
