// Package query binds filter programs over decoded JSON documents.
//
// An Engine compiles source text into a reusable Program. Documents are the
// generic values produced by the loader: map[string]any, []any, string,
// int, float64, bool and nil.
package query

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Engine compiles query source text.
type Engine interface {
	// Name is the engine's registry key, e.g. "jq".
	Name() string
	// Compile compiles src as written.
	Compile(src string) (Program, error)
	// CompileEncoded compiles src post-composed with "collect every element
	// of the result and JSON-encode each one", so that running the program
	// yields an ordered []any of JSON text strings.
	CompileEncoded(src string) (Program, error)
}

// Program is an immutable compiled query.
type Program interface {
	// Source returns the text the program was compiled from, including any
	// composition the engine appended.
	Source() string
	// Run evaluates the program against doc. Run never mutates doc.
	Run(ctx context.Context, doc any) (any, error)
}

// DefaultEngine is the engine used when none is configured.
const DefaultEngine = "jq"

var engines = map[string]func() Engine{
	"jq":       func() Engine { return JQ() },
	"jsonpath": func() Engine { return JSONPath() },
}

// Lookup returns the engine registered under name.
func Lookup(name string) (Engine, error) {
	newEngine, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown query engine %q (available: %s)",
			name, strings.Join(Engines(), ", "))
	}
	return newEngine(), nil
}

// Engines returns the sorted names of all registered engines.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
