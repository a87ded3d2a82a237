package emit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unit is everything rendered into one output pair.
type Unit struct {
	// Package is the Go package clause.
	Package string
	// Imports are extra import paths needed by getter types.
	Imports []string
	Enums   []*Enum
}

// HasGetters reports whether any enum has a getter, and so whether a test
// file is emitted at all.
func (u *Unit) HasGetters() bool {
	for _, e := range u.Enums {
		if len(e.Getters) > 0 {
			return true
		}
	}
	return false
}

// Enum is one fully expanded enumeration.
type Enum struct {
	// Name is the target type name.
	Name string
	// Comments are rendered verbatim above the type, one per line.
	Comments []string
	Depends  Dependency
	Variants []*Variant
	Getters  []*Getter
	Tests    []*Test
}

// Declarations returns the package-level identifiers the source file
// declares for an enum named name, apart from its constants.
func Declarations(name string) []string {
	return []string{
		name,
		name + "Values",
		"Parse" + name,
		"_" + name + "String",
		"_" + name + "Text",
		"decode" + name,
	}
}

// directive matches comment lines gofmt keeps apart from doc text.
var directive = regexp.MustCompile(`^//[a-z0-9]+:[a-z0-9]`)

// Doc is the comment block above the type: plain text first, then the
// depends directive and any other directives, in the order gofmt prints them.
func (e *Enum) Doc() []string {
	var text, directives []string
	for _, c := range e.Comments {
		if directive.MatchString(c) {
			directives = append(directives, c)
		} else {
			text = append(text, c)
		}
	}
	directives = append([]string{e.Depends.Directive()}, directives...)
	if len(text) > 0 {
		text = append(text, "//")
	}
	return append(text, directives...)
}

// Dependency records the data file an enum was generated from.
type Dependency struct {
	Path   string
	Digest uint64
}

// Directive renders d as a //jqenum:depends line.
func (d Dependency) Directive() string {
	path := d.Path
	if strings.ContainsAny(path, " \t\"") {
		path = strconv.Quote(path)
	}
	return fmt.Sprintf("//jqenum:depends %s highwayhash64=%016x", path, d.Digest)
}

// Variant is one enum member.
type Variant struct {
	// Ident is the resolved name, e.g. "A1".
	Ident string
	// Const is the qualified constant, e.g. "TestEnum1A1".
	Const string
	// Text is the text (JSON) name override, if decorated.
	Text *string
	// Label is the String override, if decorated.
	Label *string
}

// TextName is the MarshalText form.
func (v *Variant) TextName() string {
	if v.Text != nil {
		return *v.Text
	}
	return v.Ident
}

// StringName is the String form.
func (v *Variant) StringName() string {
	if v.Label != nil {
		return *v.Label
	}
	return v.Ident
}

// Tag is the trailing comment carried by a decorated constant.
func (v *Variant) Tag() string {
	var parts []string
	if v.Text != nil {
		parts = append(parts, "text:"+strconv.Quote(*v.Text))
	}
	if v.Label != nil {
		parts = append(parts, "string:"+strconv.Quote(*v.Label))
	}
	if len(parts) == 0 {
		return ""
	}
	return " // " + strings.Join(parts, " ")
}

// Getter is a typed accessor with one arm per variant.
type Getter struct {
	Name string
	Type string
	Arms []Arm
}

// Arm returns the decoded literal for one variant.
type Arm struct {
	Const string
	// JSON is the JSON text decoded into the getter type.
	JSON string
}

// Test checks that a getter decodes for every variant.
type Test struct {
	// Func is the test function name.
	Func   string
	Getter string
	// Variants are the constants exercised, in declaration order.
	Variants []string
}
