package invocation

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/query"
)

var dslLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: "\"(?:\\\\.|[^\"\\\\\\n])*\"|`[^`]*`"},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[\[\]{}()<>,:;=.*#&|~^!?+-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var dslParser = participle.MustBuild[dslFile](
	participle.Lexer(dslLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

type dslFile struct {
	Package     string           `parser:"( 'package' @Ident )?"`
	Imports     []string         `parser:"( 'import' @String )*"`
	Invocations []*dslInvocation `parser:"@@*"`
}

// dslInvocation is
//
//	[attributes] Name, "data", "names" [, { getters } [, { options }]]
type dslInvocation struct {
	Pos lexer.Position

	Attributes []*dslAttribute `parser:"@@*"`
	Name       string          `parser:"@Ident ','"`
	Data       *dslString      `parser:"@@ ','"`
	Names      *dslString      `parser:"@@"`
	Getters    *dslGetters     `parser:"( ',' @@"`
	Options    *dslOptions     `parser:"  ( ',' @@ )? )?"`
}

type dslAttribute struct {
	Pos lexer.Position

	Name  string  `parser:"'#' '[' @Ident ( @':' @Ident )*"`
	Value *string `parser:"( '=' @String )? ']'"`
}

type dslString struct {
	Pos lexer.Position

	Value string `parser:"@String"`
}

type dslGetters struct {
	Items []*dslGetter `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

type dslGetter struct {
	Pos lexer.Position

	Name  string     `parser:"@Ident ':'"`
	Type  *dslType   `parser:"@@ '='"`
	Query *dslString `parser:"@@"`
}

// dslType captures a Go type expression up to the '='. Token values are
// already unquoted, so the text is sliced from the source instead.
type dslType struct {
	Pos    lexer.Position
	EndPos lexer.Position

	Parts []string `parser:"@( !'=' )+"`
}

func (t *dslType) text(src []byte) string {
	start, end := t.Pos.Offset, t.EndPos.Offset
	if start < 0 || end > len(src) || start > end {
		return strings.Join(t.Parts, " ")
	}
	return strings.TrimSpace(string(src[start:end]))
}

type dslOptions struct {
	Items []*dslOption `parser:"'{' ( @@ ( ',' @@ )* ','? )? '}'"`
}

type dslOption struct {
	Pos lexer.Position

	Name  string     `parser:"@Ident ':'"`
	Query *dslString `parser:"@@"`
}

func position(p lexer.Position) diag.Position {
	return diag.Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

// ParseDSL parses the comma-separated invocation grammar.
func ParseDSL(path string, src []byte, engine query.Engine) (*File, error) {
	ast, err := dslParser.ParseBytes(path, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return nil, diag.Errorf(diag.KindGrammar, "%s", perr.Message()).At(position(perr.Position()))
		}
		return nil, diag.New(diag.KindGrammar, err).At(diag.Position{Filename: path})
	}

	f := &File{Path: path, Package: ast.Package, Imports: ast.Imports}
	for _, inv := range ast.Invocations {
		raw := rawSpec{
			pos:      position(inv.Pos),
			name:     inv.Name,
			dataFile: inv.Data.Value,
			namesPos: position(inv.Names.Pos),
			names:    inv.Names.Value,
		}
		for _, a := range inv.Attributes {
			raw.attributes = append(raw.attributes, Attribute{Pos: position(a.Pos), Name: a.Name, Value: a.Value})
		}
		if inv.Getters != nil {
			for _, g := range inv.Getters.Items {
				raw.getters = append(raw.getters, rawGetter{
					pos:   position(g.Pos),
					name:  g.Name,
					typ:   g.Type.text(src),
					query: g.Query.Value,
				})
			}
		}
		if inv.Options != nil {
			for _, o := range inv.Options.Items {
				raw.options = append(raw.options, rawOption{
					pos:   position(o.Pos),
					name:  o.Name,
					query: o.Query.Value,
				})
			}
		}

		if err := f.add(engine, raw); err != nil {
			return nil, err
		}
	}
	return f, nil
}
