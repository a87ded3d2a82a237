package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

// encodeSuffix collects the result's elements and JSON-encodes each one.
const encodeSuffix = " | [ .[] | tojson ]"

type jqEngine struct{}

// JQ returns the jq engine. Object keys are visited in sorted order, so
// results built from to_entries or keys are deterministic.
func JQ() Engine {
	return jqEngine{}
}

func (jqEngine) Name() string { return "jq" }

func (jqEngine) Compile(src string) (Program, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid jq program %q: %w", src, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("invalid jq program %q: %w", src, err)
	}
	return &jqProgram{src: src, code: code}, nil
}

func (e jqEngine) CompileEncoded(src string) (Program, error) {
	return e.Compile(src + encodeSuffix)
}

type jqProgram struct {
	src  string
	code *gojq.Code
}

func (p *jqProgram) Source() string { return p.src }

// Run returns the program's single output. A program producing no output,
// or more than one, is an error; a stream must be wrapped in [ ] so that a
// one-element stream and a scalar cannot be confused.
func (p *jqProgram) Run(ctx context.Context, doc any) (any, error) {
	iter := p.code.RunWithContext(ctx, doc)
	var outputs []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, err
		}
		outputs = append(outputs, v)
	}
	switch len(outputs) {
	case 0:
		return nil, fmt.Errorf("jq program %q produced no output", p.src)
	case 1:
		return outputs[0], nil
	}
	return nil, fmt.Errorf("jq program %q produced %d outputs; wrap the stream in [ ] to collect them", p.src, len(outputs))
}
