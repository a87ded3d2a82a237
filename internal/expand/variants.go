package expand

import (
	"context"
	"fmt"
	"go/token"
	"slices"

	"go.uber.org/zap"

	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/emit"
	"github.com/agentic-research/jqenum/internal/invocation"
	"github.com/agentic-research/jqenum/internal/query"
)

// ResolveNames runs the names query and returns the variant names in result
// order. Every name must be a distinct Go identifier.
func ResolveNames(ctx context.Context, spec *invocation.Spec, doc any) ([]string, error) {
	v, err := spec.Names.Run(ctx, doc)
	if err != nil {
		return nil, diag.New(diag.KindQueryRuntime, err).At(spec.NamesPos).In(spec.Name, "names")
	}
	names, err := query.Strings(v)
	if err != nil {
		return nil, diag.New(diag.KindDecode, err).At(spec.NamesPos).In(spec.Name, "names")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !token.IsIdentifier(name) {
			e := diag.Errorf(diag.KindIdentifier, "%q is not a valid identifier", name).At(spec.NamesPos).In(spec.Name, "names")
			e.Variant = name
			return nil, e
		}
		if seen[name] {
			e := diag.Errorf(diag.KindIdentifier, "duplicate variant %q", name).At(spec.NamesPos).In(spec.Name, "names")
			e.Variant = name
			return nil, e
		}
		seen[name] = true
	}
	return names, nil
}

// ResolvePaths qualifies each name with the target type, giving the
// constant every generated reference uses.
func ResolvePaths(target string, names []string) []string {
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = target + name
	}
	return paths
}

// Variants builds undecorated variants from names.
func Variants(target string, names []string) []*emit.Variant {
	paths := ResolvePaths(target, names)
	variants := make([]*emit.Variant, len(names))
	for i, name := range names {
		variants[i] = &emit.Variant{Ident: name, Const: paths[i]}
	}
	return variants
}

// CheckDeclarations rejects a variant whose constant collides with another
// identifier generated for the same enum, such as variant Values of T
// against TValues.
func CheckDeclarations(spec *invocation.Spec, variants []*emit.Variant) error {
	reserved := emit.Declarations(spec.Name)
	for _, v := range variants {
		if slices.Contains(reserved, v.Const) {
			e := diag.Errorf(diag.KindIdentifier, "variant %q yields %s, which is already generated for %s",
				v.Ident, v.Const, spec.Name).At(spec.NamesPos).In(spec.Name, "names")
			e.Variant = v.Ident
			return e
		}
	}
	return nil
}

// Decorate applies the known options to variants in place. The i-th result
// element decorates the i-th variant; a short result leaves the trailing
// variants undecorated and null elements skip a variant. Options without a
// known meaning are logged and ignored.
func Decorate(ctx context.Context, spec *invocation.Spec, doc any, variants []*emit.Variant, log *zap.Logger) error {
	for _, name := range spec.OptionNames() {
		opt := spec.Options[name]
		var set func(v *emit.Variant, s *string)
		switch name {
		case invocation.OptionRename:
			set = func(v *emit.Variant, s *string) { v.Text = s }
		case invocation.OptionLabel:
			set = func(v *emit.Variant, s *string) { v.Label = s }
		default:
			log.Warn("unused option", zap.String("enum", spec.Name), zap.String("option", name),
				zap.Stringer("pos", opt.Pos))
			continue
		}

		what := "option " + name
		result, err := opt.Query.Run(ctx, doc)
		if err != nil {
			return diag.New(diag.KindQueryRuntime, err).At(opt.Pos).In(spec.Name, what)
		}
		values, err := query.OptionalStrings(result)
		if err != nil {
			return diag.New(diag.KindDecode, err).At(opt.Pos).In(spec.Name, what)
		}
		if len(values) > len(variants) {
			return diag.Errorf(diag.KindArityMismatch, "%s", describeArity(len(values), len(variants))).
				At(opt.Pos).In(spec.Name, what)
		}
		if len(values) < len(variants) {
			log.Debug("option leaves variants undecorated", zap.String("enum", spec.Name),
				zap.String("option", name), zap.Int("values", len(values)), zap.Int("variants", len(variants)))
		}
		for i, s := range values {
			if s != nil {
				set(variants[i], s)
			}
		}
	}

	if err := unique(variants, (*emit.Variant).TextName); err != nil {
		return err.At(optionPos(spec, invocation.OptionRename)).In(spec.Name, "option "+invocation.OptionRename)
	}
	if err := unique(variants, (*emit.Variant).StringName); err != nil {
		return err.At(optionPos(spec, invocation.OptionLabel)).In(spec.Name, "option "+invocation.OptionLabel)
	}
	return nil
}

// unique rejects two variants sharing a rendered name, which would make the
// reverse lookup ambiguous.
func unique(variants []*emit.Variant, name func(*emit.Variant) string) *diag.Error {
	owner := make(map[string]string, len(variants))
	for _, v := range variants {
		n := name(v)
		if prev, ok := owner[n]; ok {
			e := diag.Errorf(diag.KindDecode, "name %q already used by %s", n, prev)
			e.Variant = v.Ident
			return e
		}
		owner[n] = v.Ident
	}
	return nil
}

func optionPos(spec *invocation.Spec, name string) diag.Position {
	if opt, ok := spec.Options[name]; ok {
		return opt.Pos
	}
	return spec.Pos
}

func describeArity(got, want int) string {
	return fmt.Sprintf("%d values for %d variants", got, want)
}
