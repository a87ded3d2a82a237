package api

import "github.com/hashicorp/hcl/v2"

// File represents the root of an HCL invocation file.
// It declares one or more enums generated into the same Go package.
type File struct {
	// Package is the Go package name of the generated files (optional).
	Package string `hcl:"package,optional"`
	// Imports lists extra import paths needed by getter types.
	Imports []string `hcl:"imports,optional"`
	// Enums are the generated enumerations, in emission order.
	Enums []Enum `hcl:"enum,block"`
}

// Enum declares one generated enumeration.
type Enum struct {
	// Name is the Go type name of the enum.
	Name string `hcl:"name,label"`
	// Data is the path of the JSON (or YAML) data file, relative to the
	// invocation file.
	Data string `hcl:"data"`
	// Names is the query yielding the ordered variant identifiers.
	Names string `hcl:"names"`
	// Attributes are rendered as comment lines above the type.
	Attributes []Attribute `hcl:"attribute,block"`
	// Getters are typed per-variant accessors.
	Getters []Getter `hcl:"getter,block"`
	// Options are named per-variant decoration queries.
	Options []Option `hcl:"option,block"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Attribute is an opaque annotation on the generated type.
type Attribute struct {
	Name  string  `hcl:"name,label"`
	Value *string `hcl:"value,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Getter declares a typed accessor method.
type Getter struct {
	// Name is the Go method name.
	Name string `hcl:"name,label"`
	// Type is the Go result type expression (e.g. "[]string").
	Type string `hcl:"type"`
	// Query yields one value per variant, in variant order.
	Query string `hcl:"query"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Option declares a named decoration query.
type Option struct {
	Name  string `hcl:"name,label"`
	Query string `hcl:"query"`

	DefRange hcl.Range `hcl:",def_range"`
}
