package invocation

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/agentic-research/jqenum/api"
	"github.com/agentic-research/jqenum/internal/diag"
	"github.com/agentic-research/jqenum/internal/query"
)

func rangePos(r hcl.Range) diag.Position {
	return diag.Position{Filename: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func diagnosticsError(path string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		pos := diag.Position{Filename: path}
		if d.Subject != nil {
			pos = rangePos(*d.Subject)
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += "; " + d.Detail
		}
		return diag.Errorf(diag.KindGrammar, "%s", msg).At(pos)
	}
	return diag.New(diag.KindGrammar, diags).At(diag.Position{Filename: path})
}

// ParseHCL parses the HCL invocation form.
func ParseHCL(path string, src []byte, engine query.Engine) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, diagnosticsError(path, diags)
	}

	var parsed api.File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, diagnosticsError(path, diags)
	}

	f := &File{Path: path, Package: parsed.Package, Imports: parsed.Imports}
	for _, e := range parsed.Enums {
		raw := rawSpec{
			pos:      rangePos(e.DefRange),
			name:     e.Name,
			dataFile: e.Data,
			namesPos: rangePos(e.DefRange),
			names:    e.Names,
		}
		for _, a := range e.Attributes {
			raw.attributes = append(raw.attributes, Attribute{Pos: rangePos(a.DefRange), Name: a.Name, Value: a.Value})
		}
		for _, g := range e.Getters {
			raw.getters = append(raw.getters, rawGetter{
				pos:   rangePos(g.DefRange),
				name:  g.Name,
				typ:   g.Type,
				query: g.Query,
			})
		}
		for _, o := range e.Options {
			raw.options = append(raw.options, rawOption{
				pos:   rangePos(o.DefRange),
				name:  o.Name,
				query: o.Query,
			})
		}

		if err := f.add(engine, raw); err != nil {
			return nil, err
		}
	}
	return f, nil
}
