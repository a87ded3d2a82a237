// Package expand turns a compiled invocation into a fully resolved enum:
// variants, decorations, getter arms and self-tests.
package expand

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/emit"
	"github.com/agentic-research/jqenum/internal/invocation"
	"github.com/agentic-research/jqenum/internal/loader"
)

// Expander runs invocation specs against their data files.
type Expander struct {
	loader *loader.Loader
	log    *zap.Logger
}

// New returns an Expander reading data through l. A nil log discards.
func New(l *loader.Loader, log *zap.Logger) *Expander {
	if log == nil {
		log = zap.NewNop()
	}
	return &Expander{loader: l, log: log}
}

// Expand resolves spec. Relative data file paths are joined to baseDir.
// outDir, when set, is where the output is written; the dependency path is
// recorded relative to it.
func (x *Expander) Expand(ctx context.Context, spec *invocation.Spec, baseDir, outDir string) (*emit.Enum, error) {
	dataPath := spec.DataFile
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(baseDir, dataPath)
	}
	doc, err := x.loader.Load(dataPath)
	if err != nil {
		return nil, annotate(err, spec)
	}
	log := x.log.With(zap.String("enum", spec.Name), zap.String("data", doc.Path))

	names, err := ResolveNames(ctx, spec, doc.Value)
	if err != nil {
		return nil, err
	}
	variants := Variants(spec.Name, names)
	if err := CheckDeclarations(spec, variants); err != nil {
		return nil, err
	}
	if err := Decorate(ctx, spec, doc.Value, variants, log); err != nil {
		return nil, err
	}

	getters := make([]*emit.Getter, 0, len(spec.Getters))
	for _, g := range spec.Getters {
		out, err := SynthesizeGetter(ctx, spec.Name, g, doc.Value, variants)
		if err != nil {
			return nil, err
		}
		getters = append(getters, out)
	}

	var comments []string
	for _, a := range spec.Attributes {
		comments = append(comments, a.Lines()...)
	}

	log.Debug("expanded enum", zap.Int("variants", len(variants)), zap.Int("getters", len(getters)))
	return &emit.Enum{
		Name:     spec.Name,
		Comments: comments,
		Depends:  emit.Dependency{Path: x.dependencyPath(doc.Path, outDir), Digest: doc.Digest},
		Variants: variants,
		Getters:  getters,
		Tests:    SynthesizeTests(spec.Name, getters, variants),
	}, nil
}

func (x *Expander) dependencyPath(path, outDir string) string {
	if outDir == "" {
		return path
	}
	dir, err := x.loader.Canonical(outDir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// annotate attaches the invocation context to a loader failure.
func annotate(err error, spec *invocation.Spec) error {
	var e *diag.Error
	if errors.As(err, &e) {
		return e.At(spec.Pos).In(spec.Name, "")
	}
	return diag.New(diag.KindIO, err).At(spec.Pos).In(spec.Name, "")
}
