// Package invocation parses enum invocation files into compiled specs.
//
// Two surface forms are accepted: the comma-separated DSL (*.jqenum) and an
// HCL form (*.hcl). Both go through the same compile step, so every query is
// compiled while parsing and a failure never yields a partial spec.
package invocation

import (
	"fmt"
	"go/token"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/query"
	"github.com/agentic-research/jqenum/internal/writeback"
)

// Known option names.
const (
	// OptionRename supplies the per-variant text (JSON) name.
	OptionRename = "serde_rename_variants"
	// OptionLabel supplies the per-variant String label.
	OptionLabel = "strum_enum_string"
)

// reservedMethods are generated on every enum and cannot be getter names.
var reservedMethods = []string{"IsValid", "MarshalText", "String", "UnmarshalText"}

// File is a parsed invocation file.
type File struct {
	// Path is the invocation file path as given to Parse.
	Path string
	// Package is the declared Go package name, or "".
	Package string
	// Imports are extra import paths for getter types.
	Imports []string
	// Invocations in declaration order.
	Invocations []*Spec
}

// Dir is the directory data file paths are relative to.
func (f *File) Dir() string {
	return filepath.Dir(f.Path)
}

// Spec is one compiled enum invocation. It is immutable once built.
type Spec struct {
	Pos        diag.Position
	Attributes []Attribute
	// Name is the target type name.
	Name string
	// DataFile is the data file path as written.
	DataFile string
	NamesPos diag.Position
	Names    query.Program
	// Getters in declaration order.
	Getters []*Getter
	// Options keyed by option name.
	Options map[string]*Option
}

// OptionNames returns the sorted option keys.
func (s *Spec) OptionNames() []string {
	names := make([]string, 0, len(s.Options))
	for name := range s.Options {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Getter is a typed accessor declaration.
type Getter struct {
	Pos  diag.Position
	Name string
	// Type is the Go result type expression.
	Type string
	// Source is the query as written, before encoding composition.
	Source string
	// Query yields one JSON text string per variant.
	Query query.Program
}

// Option is a named per-variant decoration query.
type Option struct {
	Pos   diag.Position
	Name  string
	Query query.Program
}

// Attribute is an opaque annotation rendered above the generated type.
type Attribute struct {
	Pos   diag.Position
	Name  string
	Value *string
}

// Lines renders the attribute as Go comment lines. A "doc" attribute
// becomes ordinary doc comment text; anything else becomes a directive.
func (a Attribute) Lines() []string {
	if a.Name == "doc" && a.Value != nil {
		var lines []string
		for _, l := range strings.Split(*a.Value, "\n") {
			if l == "" {
				lines = append(lines, "//")
				continue
			}
			lines = append(lines, "// "+l)
		}
		return lines
	}
	if a.Value == nil {
		return []string{"//" + a.Name}
	}
	return []string{"//" + a.Name + " " + *a.Value}
}

func (a Attribute) validate() error {
	if a.Name == "" || strings.ContainsAny(a.Name, " \t\r\n") {
		return fmt.Errorf("invalid attribute name %q", a.Name)
	}
	if a.Name != "doc" && a.Value != nil && strings.ContainsAny(*a.Value, "\r\n") {
		return fmt.Errorf("attribute %s: value must be a single line", a.Name)
	}
	return nil
}

// rawSpec is the uncompiled form both front ends produce.
type rawSpec struct {
	pos        diag.Position
	attributes []Attribute
	name       string
	dataFile   string
	namesPos   diag.Position
	names      string
	getters    []rawGetter
	options    []rawOption
}

type rawGetter struct {
	pos   diag.Position
	name  string
	typ   string
	query string
}

type rawOption struct {
	pos   diag.Position
	name  string
	query string
}

func grammarError(pos diag.Position, enum, format string, args ...any) error {
	e := diag.Errorf(diag.KindGrammar, format, args...).At(pos)
	e.Enum = enum
	return e
}

func compileError(pos diag.Position, enum, what string, err error) error {
	return diag.New(diag.KindQueryCompile, err).At(pos).In(enum, what)
}

// compile validates raw and compiles all of its queries with engine.
func compile(engine query.Engine, raw rawSpec) (*Spec, error) {
	if !token.IsIdentifier(raw.name) {
		return nil, grammarError(raw.pos, "", "invalid enum name %q", raw.name)
	}
	if raw.dataFile == "" {
		return nil, grammarError(raw.pos, raw.name, "empty data file path")
	}

	spec := &Spec{
		Pos:        raw.pos,
		Attributes: raw.attributes,
		Name:       raw.name,
		DataFile:   raw.dataFile,
		NamesPos:   raw.namesPos,
		Options:    make(map[string]*Option, len(raw.options)),
	}
	for _, a := range raw.attributes {
		if err := a.validate(); err != nil {
			return nil, grammarError(a.Pos, raw.name, "%v", err)
		}
	}

	names, err := engine.Compile(raw.names)
	if err != nil {
		return nil, compileError(raw.namesPos, raw.name, "names", err)
	}
	spec.Names = names

	seen := make(map[string]bool, len(raw.getters))
	for _, g := range raw.getters {
		switch {
		case !token.IsIdentifier(g.name):
			return nil, grammarError(g.pos, raw.name, "invalid getter name %q", g.name)
		case slices.Contains(reservedMethods, g.name):
			return nil, grammarError(g.pos, raw.name, "getter name %q collides with a generated method", g.name)
		case seen[g.name]:
			return nil, grammarError(g.pos, raw.name, "duplicate getter %q", g.name)
		}
		seen[g.name] = true

		typ := strings.TrimSpace(g.typ)
		if err := writeback.ValidateTypeExpr(typ); err != nil {
			return nil, grammarError(g.pos, raw.name, "getter %s: %v", g.name, err)
		}
		prog, err := engine.CompileEncoded(g.query)
		if err != nil {
			return nil, compileError(g.pos, raw.name, "getter "+g.name, err)
		}
		spec.Getters = append(spec.Getters, &Getter{
			Pos:    g.pos,
			Name:   g.name,
			Type:   typ,
			Source: g.query,
			Query:  prog,
		})
	}

	for _, o := range raw.options {
		if _, dup := spec.Options[o.name]; dup {
			return nil, grammarError(o.pos, raw.name, "duplicate option %q", o.name)
		}
		prog, err := engine.Compile(o.query)
		if err != nil {
			return nil, compileError(o.pos, raw.name, "option "+o.name, err)
		}
		spec.Options[o.name] = &Option{Pos: o.pos, Name: o.name, Query: prog}
	}
	return spec, nil
}

// add compiles raw and appends it, rejecting a second enum of the same name.
func (f *File) add(engine query.Engine, raw rawSpec) error {
	for _, prev := range f.Invocations {
		if prev.Name == raw.name {
			return grammarError(raw.pos, raw.name, "enum %s already declared at %s", raw.name, prev.Pos)
		}
	}
	spec, err := compile(engine, raw)
	if err != nil {
		return err
	}
	f.Invocations = append(f.Invocations, spec)
	return nil
}

// Parse parses an invocation file, choosing the HCL form for *.hcl paths
// and the DSL otherwise.
func Parse(path string, src []byte, engine query.Engine) (*File, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(path, src, engine)
	}
	return ParseDSL(path, src, engine)
}
