package invocation

import (
	"errors"
	"testing"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/query"
)

// FuzzParseDSL checks that arbitrary input either parses or fails with a
// classified diagnostic, never a panic or a bare error.
func FuzzParseDSL(f *testing.F) {
	f.Add([]byte(fixtureDSL))
	f.Add([]byte(`Color, "colors.json", "[ .[].name ]", { Hex: string = "[ .[].hex ]" }, {}`))
	f.Add([]byte("#[doc = \"a\\nb\"]\nColor, `c.json`, `keys`"))
	f.Add([]byte("Color, \"c.json\", \"[\""))

	engine := query.JQ()
	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := ParseDSL("fuzz.jqenum", data, engine)
		if err != nil {
			var e *diag.Error
			if !errors.As(err, &e) {
				t.Fatalf("unclassified error: %v", err)
			}
			if file != nil {
				t.Fatal("partial file returned with error")
			}
			return
		}
		for _, spec := range file.Invocations {
			if spec.Names == nil {
				t.Fatalf("enum %s has no compiled names query", spec.Name)
			}
		}
	})
}
