package query

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

type jsonPathEngine struct{}

// JSONPath returns the JSONPath engine. A program's result is always the
// list of matches, so "$.colors[*].name" yields one element per color.
//
// Wildcards over objects follow map iteration order; use array-shaped
// documents (or the jq engine) when variant order matters.
func JSONPath() Engine {
	return jsonPathEngine{}
}

func (jsonPathEngine) Name() string { return "jsonpath" }

func (jsonPathEngine) Compile(src string) (Program, error) {
	x, err := jp.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", src, err)
	}
	return &jsonPathProgram{src: src, expr: x}, nil
}

func (e jsonPathEngine) CompileEncoded(src string) (Program, error) {
	p, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	jpp := p.(*jsonPathProgram)
	jpp.encode = true
	return jpp, nil
}

type jsonPathProgram struct {
	src    string
	expr   jp.Expr
	encode bool
}

func (p *jsonPathProgram) Source() string {
	if p.encode {
		return p.src + " (encoded)"
	}
	return p.src
}

func (p *jsonPathProgram) Run(ctx context.Context, doc any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := p.expr.Get(doc)
	out := make([]any, len(matches))
	for i, m := range matches {
		if p.encode {
			out[i] = oj.JSON(m, &ojg.Options{Sort: true})
		} else {
			out[i] = m
		}
	}
	return out, nil
}
