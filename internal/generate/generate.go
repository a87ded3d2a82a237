// Package generate runs the whole pipeline for one invocation file:
// parse, expand, emit, format, validate and lint.
package generate

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/emit"
	"github.com/agentic-research/jqenum/internal/expand"
	"github.com/agentic-research/jqenum/internal/invocation"
	"github.com/agentic-research/jqenum/internal/linter"
	"github.com/agentic-research/jqenum/internal/loader"
	"github.com/agentic-research/jqenum/internal/query"
	"github.com/agentic-research/jqenum/internal/writeback"
)

// Options configures a Generator.
type Options struct {
	// Engine compiles every query. Defaults to jq.
	Engine query.Engine
	// Loader reads data files. Defaults to the host filesystem.
	Loader *loader.Loader
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Package overrides the package clause of every output.
	Package string
	// FallbackPackage is used when the invocation file declares none,
	// typically $GOPACKAGE.
	FallbackPackage string
}

func (o *Options) setDefaults() {
	if o.Engine == nil {
		o.Engine = query.JQ()
	}
	if o.Loader == nil {
		o.Loader = loader.NewOS()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Generator turns invocation files into generated Go files.
type Generator struct {
	opts     Options
	expander *expand.Expander
	log      *zap.Logger
}

// New returns a Generator configured by opts.
func New(opts Options) *Generator {
	opts.setDefaults()
	return &Generator{
		opts:     opts,
		expander: expand.New(opts.Loader, opts.Logger.Named("expand")),
		log:      opts.Logger,
	}
}

// OutputPaths returns the generated source and test paths for input:
// x.jqenum and x.hcl both become x_jqenum.go and x_jqenum_test.go.
func OutputPaths(input string) (src, test string) {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_jqenum.go", base + "_jqenum_test.go"
}

// testPath derives the test file path from a source output path.
func testPath(src string) string {
	return strings.TrimSuffix(src, ".go") + "_test.go"
}

// Generate parses src (the content of input) and returns the files to
// write. output overrides the source path; "" uses OutputPaths. When no
// enum declares a getter, the test file is returned marked for deletion so
// a test file left from an earlier run does not outlive its getters.
func (g *Generator) Generate(ctx context.Context, input string, src []byte, output string) ([]writeback.File, error) {
	file, err := invocation.Parse(input, src, g.opts.Engine)
	if err != nil {
		return nil, err
	}

	srcPath, tstPath := OutputPaths(input)
	if output != "" {
		srcPath, tstPath = output, testPath(output)
	}

	unit := &emit.Unit{Package: g.packageName(file), Imports: file.Imports}
	for _, spec := range file.Invocations {
		enum, err := g.expander.Expand(ctx, spec, file.Dir(), filepath.Dir(srcPath))
		if err != nil {
			return nil, err
		}
		unit.Enums = append(unit.Enums, enum)
	}

	if err := checkNamespace(file.Invocations, unit); err != nil {
		return nil, err
	}

	source, err := render(emit.Source, unit, srcPath)
	if err != nil {
		return nil, err
	}
	for _, e := range unit.Enums {
		if err := lint(source, e); err != nil {
			return nil, fmt.Errorf("%s: %w", srcPath, err)
		}
	}
	files := []writeback.File{{Path: srcPath, Content: source}}

	if unit.HasGetters() {
		tests, err := render(emit.Tests, unit, tstPath)
		if err != nil {
			return nil, err
		}
		files = append(files, writeback.File{Path: tstPath, Content: tests})
	} else {
		files = append(files, writeback.File{Path: tstPath, Delete: true})
	}

	g.log.Debug("generated",
		zap.String("input", input),
		zap.String("package", unit.Package),
		zap.Int("enums", len(unit.Enums)),
		zap.Int("files", len(files)))
	return files, nil
}

func render(fn func(*emit.Unit) ([]byte, error), unit *emit.Unit, path string) ([]byte, error) {
	raw, err := fn(unit)
	if err != nil {
		return nil, err
	}
	if errs := writeback.ASTErrors(raw, path); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i := range errs {
			joined[i] = &errs[i]
		}
		return nil, errors.Join(joined...)
	}
	if err := writeback.Validate(raw, path); err != nil {
		return nil, err
	}
	return writeback.Format(raw, path)
}

// checkNamespace rejects two declarations of one package-level identifier
// across the enums of a file, test functions included: enum A with variant
// BC and enum AB with variant C both declare ABC.
func checkNamespace(specs []*invocation.Spec, unit *emit.Unit) error {
	owner := make(map[string]string)
	for i, e := range unit.Enums {
		spec := specs[i]
		declare := func(name, variant string, pos diag.Position) error {
			if prev, ok := owner[name]; ok {
				err := diag.Errorf(diag.KindIdentifier, "%s is declared for both %s and %s", name, prev, e.Name).
					At(pos).In(e.Name, "")
				err.Variant = variant
				return err
			}
			owner[name] = e.Name
			return nil
		}
		for _, name := range emit.Declarations(e.Name) {
			if err := declare(name, "", spec.Pos); err != nil {
				return err
			}
		}
		for _, v := range e.Variants {
			if err := declare(v.Const, v.Ident, spec.NamesPos); err != nil {
				return err
			}
		}
		for _, t := range e.Tests {
			if err := declare(t.Func, "", spec.Pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func lint(source []byte, e *emit.Enum) error {
	consts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		consts[i] = v.Const
	}
	diags, err := linter.Lint(source, e.Name, consts)
	if err != nil {
		return fmt.Errorf("lint %s: %w", e.Name, err)
	}
	if len(diags) > 0 {
		return fmt.Errorf("lint %s: %s", e.Name, diags[0])
	}
	return nil
}

// packageName picks, in order: the configured override, the file's own
// package clause, the fallback, and finally the input directory name.
func (g *Generator) packageName(f *invocation.File) string {
	for _, name := range []string{g.opts.Package, f.Package, g.opts.FallbackPackage} {
		if name != "" {
			return name
		}
	}
	dir, err := filepath.Abs(f.Dir())
	if err != nil {
		dir = f.Dir()
	}
	return sanitizePackage(filepath.Base(dir))
}

func sanitizePackage(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return '_'
	}, name)
	if !token.IsIdentifier(name) {
		name = "_" + name
	}
	if name == "_" || !token.IsIdentifier(name) {
		return "main"
	}
	return name
}
