package expand

import (
	"context"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/emit"
	"github.com/agentic-research/jqenum/internal/invocation"
	"github.com/agentic-research/jqenum/internal/query"
)

// SynthesizeGetter evaluates g's encoded query and pairs the i-th JSON text
// with the i-th variant. The result count must match the variant count
// exactly.
func SynthesizeGetter(ctx context.Context, enum string, g *invocation.Getter, doc any, variants []*emit.Variant) (*emit.Getter, error) {
	what := "getter " + g.Name
	result, err := g.Query.Run(ctx, doc)
	if err != nil {
		return nil, diag.New(diag.KindQueryRuntime, err).At(g.Pos).In(enum, what)
	}
	texts, err := query.Strings(result)
	if err != nil {
		return nil, diag.New(diag.KindDecode, err).At(g.Pos).In(enum, what)
	}
	if len(texts) != len(variants) {
		return nil, diag.Errorf(diag.KindArityMismatch, "%s", describeArity(len(texts), len(variants))).
			At(g.Pos).In(enum, what)
	}

	out := &emit.Getter{Name: g.Name, Type: g.Type, Arms: make([]emit.Arm, len(variants))}
	for i, v := range variants {
		out.Arms[i] = emit.Arm{Const: v.Const, JSON: texts[i]}
	}
	return out, nil
}
