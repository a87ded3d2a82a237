// Package emit renders expanded enums as Go source.
//
// The output is a source file holding the enum type, its lookup tables and
// getters, plus an optional test file that calls every getter for every
// variant. Rendering is unformatted; callers run the result through
// writeback.Format.
package emit

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

//go:embed _templates/*.go.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"quote":   strconv.Quote,
	"literal": literal,
}).ParseFS(templateFS, "_templates/*.go.tmpl"))

// literal renders s as a Go string literal, preferring a raw string so JSON
// stays readable.
func literal(s string) string {
	if utf8.ValidString(s) && !strings.ContainsAny(s, "`\r\x00\uFEFF") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

// Title upper-cases the first rune of s.
func Title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// TestFunc is the test function name for getter on enum.
func TestFunc(enum, getter string) string {
	return "Test" + Title(enum) + "_" + getter
}

// Source renders the source file for u.
func Source(u *Unit) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "enum.go.tmpl", u); err != nil {
		return nil, fmt.Errorf("render source: %w", err)
	}
	return buf.Bytes(), nil
}

// Tests renders the test file for u, or nil when no enum has a getter.
func Tests(u *Unit) ([]byte, error) {
	if !u.HasGetters() {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "enum_test.go.tmpl", u); err != nil {
		return nil, fmt.Errorf("render tests: %w", err)
	}
	return buf.Bytes(), nil
}
