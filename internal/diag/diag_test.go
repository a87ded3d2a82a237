package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	testCases := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare",
			err:  New(KindIO, errors.New("boom")),
			want: "io error: boom",
		},
		{
			name: "full context",
			err: &Error{
				Kind:    KindDecode,
				Pos:     Position{Filename: "colors.jqenum", Line: 3, Column: 5},
				Enum:    "Color",
				Query:   "getter Hex",
				Variant: "ColorRed",
				Err:     errors.New("not a string"),
			},
			want: "colors.jqenum:3:5: Color: getter Hex: variant ColorRed: decode error: not a string",
		},
		{
			name: "file only",
			err:  &Error{Kind: KindIO, File: "/data/colors.json", Err: errors.New("missing")},
			want: "/data/colors.json: io error: missing",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestIsKind(t *testing.T) {
	base := Errorf(KindArityMismatch, "got %d values for %d variants", 2, 3).In("T", "getter G")
	wrapped := fmt.Errorf("generate: %w", base)

	assert.True(t, IsKind(wrapped, KindArityMismatch))
	assert.False(t, IsKind(wrapped, KindDecode))
	assert.False(t, IsKind(errors.New("plain"), KindArityMismatch))

	var e *Error
	assert.ErrorAs(t, wrapped, &e)
	assert.Equal(t, "T", e.Enum)
	assert.Equal(t, "getter G", e.Query)
}

func TestInKeepsExistingContext(t *testing.T) {
	e := &Error{Kind: KindDecode, Enum: "A", Query: "names"}
	e.In("B", "option x")
	assert.Equal(t, "A", e.Enum)
	assert.Equal(t, "names", e.Query)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "", Position{}.String())
	assert.Equal(t, "f.hcl", Position{Filename: "f.hcl"}.String())
	assert.Equal(t, "2:7", Position{Line: 2, Column: 7}.String())
	assert.Equal(t, "f.hcl:2:7", Position{Filename: "f.hcl", Line: 2, Column: 7}.String())
}
