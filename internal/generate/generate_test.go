package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/emit"
	"github.com/agentic-research/jqenum/internal/loader"
	"github.com/agentic-research/jqenum/internal/query"
	"github.com/agentic-research/jqenum/internal/writeback"
)

const testdata = `{
	"a/A1": {"tags": ["t1"], "properties": {"value_a": "one", "value_b": 1}},
	"a/A2": {"tags": [], "properties": {"value_a": "two", "value_b": 2}},
	"b/Var3": {"tags": ["t3"], "properties": {"value_a": "three", "value_b": 3}}
}`

const fixtures = `package fixtures

#[doc = "TestEnum1 is generated from testdata.json."]
TestEnum1,
"testdata.json",
"[ to_entries | .[].key | split(\"/\")[-1] ]",
{
	Tags: []string = "[ to_entries | .[].value.tags ]",
	Properties: Properties = "[ to_entries | .[].value.properties ]",
},
{
	serde_rename_variants: "[ \"x/y/z/A1\" ]",
}

Plain, "testdata.json", "[ to_entries | .[].key | split(\"/\")[-1] ]"
`

func newGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/proj/testdata.json", []byte(testdata), 0o644))
	opts.Loader = loader.New(fs)
	opts.Logger = zaptest.NewLogger(t)
	return New(opts)
}

func paths(files []writeback.File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

func TestGenerate(t *testing.T) {
	g := newGenerator(t, Options{})
	files, err := g.Generate(context.Background(), "/proj/fixtures.jqenum", []byte(fixtures), "")
	require.NoError(t, err)
	require.Equal(t, []string{"/proj/fixtures_jqenum.go", "/proj/fixtures_jqenum_test.go"}, paths(files))

	src := string(files[0].Content)
	for _, want := range []string{
		"package fixtures",
		"//jqenum:depends testdata.json highwayhash64=",
		"type TestEnum1 int",
		`TestEnum1A1 TestEnum1 = iota // text:"x/y/z/A1"`,
		"func (v TestEnum1) Tags() []string {",
		"func (v TestEnum1) Properties() Properties {",
		"return decodeTestEnum1[Properties](\"TestEnum1Var3\", `{\"value_a\":\"three\",\"value_b\":3}`)",
		"type Plain int",
		"func PlainValues() []Plain {",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "func decodePlain")

	test := string(files[1].Content)
	assert.Contains(t, test, "func TestTestEnum1_Tags(t *testing.T) {")
	assert.Contains(t, test, "func TestTestEnum1_Properties(t *testing.T) {")
	assert.NotContains(t, test, "Plain")
}

func TestGenerate_Deterministic(t *testing.T) {
	first, err := newGenerator(t, Options{}).Generate(context.Background(), "/proj/fixtures.jqenum", []byte(fixtures), "")
	require.NoError(t, err)
	second, err := newGenerator(t, Options{}).Generate(context.Background(), "/proj/fixtures.jqenum", []byte(fixtures), "")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("output differs between runs (-first +second):\n%s", diff)
	}
}

func TestGenerate_NoGetters(t *testing.T) {
	g := newGenerator(t, Options{})
	files, err := g.Generate(context.Background(), "/proj/plain.jqenum",
		[]byte(`Plain, "testdata.json", "[ to_entries | .[].key | split(\"/\")[-1] ]"`), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/plain_jqenum.go", "/proj/plain_jqenum_test.go"}, paths(files))
	assert.NotContains(t, string(files[0].Content), "encoding/json")

	// The test path is still returned so a file left by an earlier run
	// that had getters is removed.
	assert.False(t, files[0].Delete)
	assert.True(t, files[1].Delete)
	assert.Nil(t, files[1].Content)
}

func TestGenerate_NamespaceCollision(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		enum    string
		variant string
	}{
		{
			name: "constants of two enums",
			src: `A, "testdata.json", "[ \"BC\" ]"
AB, "testdata.json", "[ \"C\" ]"`,
			enum:    "AB",
			variant: "C",
		},
		{
			name: "constant against another enum's type",
			src: `Plain, "testdata.json", "[ \"X\" ]"
PlainX, "testdata.json", "[ \"Y\" ]"`,
			enum: "PlainX",
		},
		{
			name: "constant against another enum's test function",
			src: `A, "testdata.json", "[ \"X\" ]", { B: int = "[ 1 ]" }
Test, "testdata.json", "[ \"A_B\" ]"`,
			enum:    "Test",
			variant: "A_B",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t, Options{})
			files, err := g.Generate(context.Background(), "/proj/clash.jqenum", []byte(tc.src), "")
			assert.Nil(t, files)
			require.True(t, diag.IsKind(err, diag.KindIdentifier), "error: %v", err)

			var e *diag.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tc.enum, e.Enum)
			assert.Equal(t, tc.variant, e.Variant)
		})
	}
}

func TestRender_ReportsEverySyntaxError(t *testing.T) {
	broken := []byte("package p\n\nvar a = )\n\nfunc (\n")
	want := writeback.ASTErrors(broken, "broken.go")
	require.NotEmpty(t, want)

	_, err := render(func(*emit.Unit) ([]byte, error) { return broken, nil }, &emit.Unit{}, "broken.go")
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "error: %v", err)
	require.Len(t, joined.Unwrap(), len(want))
	for i, e := range joined.Unwrap() {
		var ve *writeback.ValidationError
		require.True(t, errors.As(e, &ve))
		assert.Equal(t, want[i], *ve)
	}
}

func TestGenerate_OutputOverride(t *testing.T) {
	g := newGenerator(t, Options{})
	files, err := g.Generate(context.Background(), "/proj/fixtures.jqenum", []byte(fixtures), "/proj/gen/enums.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/gen/enums.go", "/proj/gen/enums_test.go"}, paths(files))
	assert.Contains(t, string(files[0].Content), "//jqenum:depends ../testdata.json highwayhash64=")
}

func TestGenerate_HCL(t *testing.T) {
	src := `
enum "Shape" {
  data  = "testdata.json"
  names = "[ to_entries | .[].key | split(\"/\")[-1] ]"
  getter "Tags" {
    type  = "[]string"
    query = "[ to_entries | .[].value.tags ]"
  }
}
`
	g := newGenerator(t, Options{FallbackPackage: "shapes"})
	files, err := g.Generate(context.Background(), "/proj/shapes.hcl", []byte(src), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/shapes_jqenum.go", "/proj/shapes_jqenum_test.go"}, paths(files))
	assert.Contains(t, string(files[0].Content), "package shapes")
}

func TestGenerate_JSONPath(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/proj/colors.json",
		[]byte(`{"colors": [{"name": "Red", "hex": "#f00"}, {"name": "Blue", "hex": "#00f"}]}`), 0o644))
	g := New(Options{Engine: query.JSONPath(), Loader: loader.New(fs), Logger: zaptest.NewLogger(t)})

	files, err := g.Generate(context.Background(), "/proj/colors.jqenum",
		[]byte(`Color, "colors.json", "$.colors[*].name", { Hex: string = "$.colors[*].hex" }`), "")
	require.NoError(t, err)
	src := string(files[0].Content)
	assert.Contains(t, src, "ColorRed Color = iota")
	assert.Contains(t, src, "return decodeColor[string](\"ColorBlue\", `\"#00f\"`)")
}

func TestGenerate_PackageName(t *testing.T) {
	testCases := []struct {
		name string
		opts Options
		src  string
		want string
	}{
		{"override wins", Options{Package: "forced", FallbackPackage: "env"}, "package declared\n", "forced"},
		{"declared", Options{FallbackPackage: "env"}, "package declared\n", "declared"},
		{"fallback", Options{FallbackPackage: "env"}, "", "env"},
		{"directory", Options{}, "", "proj"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t, tc.opts)
			src := tc.src + `Plain, "testdata.json", "[ to_entries | .[].key | split(\"/\")[-1] ]"`
			files, err := g.Generate(context.Background(), "/proj/plain.jqenum", []byte(src), "")
			require.NoError(t, err)
			assert.Contains(t, string(files[0].Content), "package "+tc.want+"\n")
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		kind diag.Kind
	}{
		{"grammar", `Color "testdata.json"`, diag.KindGrammar},
		{"compile", `Color, "testdata.json", "[ .["`, diag.KindQueryCompile},
		{"io", `Color, "nope.json", "keys"`, diag.KindIO},
		{"identifier", `Color, "testdata.json", "keys"`, diag.KindIdentifier},
		{"arity", `Color, "testdata.json", "[ to_entries | .[].key | split(\"/\")[-1] ]", { Tags: []string = "[ .[] | .tags ] | .[:1]" }`, diag.KindArityMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t, Options{})
			files, err := g.Generate(context.Background(), "/proj/bad.jqenum", []byte(tc.src), "")
			assert.Nil(t, files)
			assert.True(t, diag.IsKind(err, tc.kind), "error: %v", err)
		})
	}
}

func TestOutputPaths(t *testing.T) {
	src, test := OutputPaths("dir/colors.jqenum")
	assert.Equal(t, "dir/colors_jqenum.go", src)
	assert.Equal(t, "dir/colors_jqenum_test.go", test)

	src, _ = OutputPaths("shapes.hcl")
	assert.Equal(t, "shapes_jqenum.go", src)
}

func TestSanitizePackage(t *testing.T) {
	assert.Equal(t, "my_pkg", sanitizePackage("My-Pkg"))
	assert.Equal(t, "_123", sanitizePackage("123"))
	assert.Equal(t, "_type", sanitizePackage("type"))
	assert.Equal(t, "main", sanitizePackage("/"))
}
