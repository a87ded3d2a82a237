package linter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const total = `package colors

type Color int

const (
	ColorRed Color = iota
	ColorBlue
)

func (v Color) Hex() string {
	switch v {
	case ColorRed:
		return "#f00"
	case ColorBlue:
		return "#00f"
	}
	panic("invalid Color value")
}

func (v *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "anything":
	}
	return nil
}

func (s Shape) Sides() int {
	switch s {
	case 4:
	}
	return 0
}
`

func TestLint_Total(t *testing.T) {
	diags, err := Lint([]byte(total), "Color", []string{"ColorRed", "ColorBlue"})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestLint_Partial(t *testing.T) {
	src := `package colors

func (v Color) Hex() string {
	switch v {
	case ColorRed, ColorRed:
		return "#f00"
	case ColorGreen:
		return "#0f0"
	}
	panic("invalid Color value")
}
`
	diags, err := Lint([]byte(src), "Color", []string{"ColorRed", "ColorBlue"})
	require.NoError(t, err)

	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Message)
	}
	assert.ElementsMatch(t, []string{
		"Hex: duplicate case ColorRed",
		"Hex: unknown case ColorGreen",
		"Hex: missing case ColorBlue",
	}, msgs)
	assert.Equal(t, "line 4: Hex: missing case ColorBlue", diags[0].String())
}

func TestLint_NoMethods(t *testing.T) {
	diags, err := Lint([]byte("package p\n\ntype Color int\n"), "Color", []string{"ColorRed"})
	require.NoError(t, err)
	assert.Empty(t, diags)
}
