// Package linter checks generated enum source for switch totality.
package linter

import (
	"context"
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

type Diagnostic struct {
	Message string
	Line    uint32
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line+1, d.Message)
}

// methodQuery matches value-receiver methods. Pointer receivers never hold
// getter switches.
const methodQuery = `
	(method_declaration
		receiver: (parameter_list
			(parameter_declaration
				type: (type_identifier) @recv))
		name: (field_identifier) @name
	) @decl
`

// Lint checks that every expression switch in a method on enum has exactly
// one case per constant in consts and no others.
func Lint(content []byte, enum string, consts []string) ([]Diagnostic, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}

	q, err := sitter.NewQuery([]byte(methodQuery), golang.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, tree.RootNode())

	var diags []Diagnostic
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var recv, name string
		var decl *sitter.Node
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "recv":
				recv = c.Node.Content(content)
			case "name":
				name = c.Node.Content(content)
			case "decl":
				decl = c.Node
			}
		}
		if recv != enum || decl == nil {
			continue
		}
		walk(decl, func(n *sitter.Node) {
			if n.Type() == "expression_switch_statement" {
				diags = append(diags, checkSwitch(n, content, name, consts)...)
			}
		})
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int { return int(a.Line) - int(b.Line) })
	return diags, nil
}

func checkSwitch(sw *sitter.Node, content []byte, method string, consts []string) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]bool, len(consts))
	for i := 0; i < int(sw.NamedChildCount()); i++ {
		c := sw.NamedChild(i)
		if c.Type() != "expression_case" {
			continue
		}
		values := c.ChildByFieldName("value")
		if values == nil {
			continue
		}
		for j := 0; j < int(values.NamedChildCount()); j++ {
			v := values.NamedChild(j)
			id := v.Content(content)
			switch {
			case !slices.Contains(consts, id):
				diags = append(diags, Diagnostic{
					Message: fmt.Sprintf("%s: unknown case %s", method, id),
					Line:    v.StartPoint().Row,
				})
			case seen[id]:
				diags = append(diags, Diagnostic{
					Message: fmt.Sprintf("%s: duplicate case %s", method, id),
					Line:    v.StartPoint().Row,
				})
			}
			seen[id] = true
		}
	}
	for _, id := range consts {
		if !seen[id] {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("%s: missing case %s", method, id),
				Line:    sw.StartPoint().Row,
			})
		}
	}
	return diags
}

func walk(n *sitter.Node, fn func(*sitter.Node)) {
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), fn)
	}
}
