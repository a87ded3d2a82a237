package expand

import (
	"github.com/agentic-research/jqenum/internal/emit"
)

// SynthesizeTests returns one test per getter. Each test calls the getter
// on every variant in its own subtest, so one failing variant never hides
// another.
func SynthesizeTests(enum string, getters []*emit.Getter, variants []*emit.Variant) []*emit.Test {
	consts := make([]string, len(variants))
	for i, v := range variants {
		consts[i] = v.Const
	}
	tests := make([]*emit.Test, len(getters))
	for i, g := range getters {
		tests[i] = &emit.Test{
			Func:     emit.TestFunc(enum, g.Name),
			Getter:   g.Name,
			Variants: consts,
		}
	}
	return tests
}
