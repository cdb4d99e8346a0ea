package aggregate

import (
	"path"
	"regexp"
	"strings"
)

// Field is one declared field of an aggregate.
type Field struct {
	Name string // declared identifier, e.g. "enable_logging" or "EnableLogging"
	Type string // Go type expression, e.g. "string", "time.Duration"
}

// Aggregate is a validated aggregate: identity plus ordered fields.
type Aggregate struct {
	Name   string
	Fields []Field
}

// Field returns the field with the given declared name.
func (a Aggregate) Field(name string) (Field, bool) {
	for _, field := range a.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames returns the declared field names in order.
func (a Aggregate) FieldNames() []string {
	names := make([]string, len(a.Fields))
	for i, field := range a.Fields {
		names[i] = field.Name
	}
	return names
}

// Shape classifies how a declaration is laid out.
type Shape int

const (
	// ShapeRecord is a product type with named fields.
	ShapeRecord Shape = iota
	// ShapeTuple is a product type with positional elements.
	ShapeTuple
	// ShapeUnit has no fields at all.
	ShapeUnit
	// ShapeSum is a tagged alternative (enum or sealed interface).
	ShapeSum
	// ShapeUnion is an untagged union of types.
	ShapeUnion
	// ShapeOther is anything else (maps, funcs, aliases).
	ShapeOther
)

func (s Shape) String() string {
	switch s {
	case ShapeRecord:
		return "record"
	case ShapeTuple:
		return "tuple"
	case ShapeUnit:
		return "unit"
	case ShapeSum:
		return "sum"
	case ShapeUnion:
		return "union"
	default:
		return "other"
	}
}

// Declaration is the raw, unvalidated output of a front-end.
type Declaration struct {
	Name     string
	Shape    Shape
	Fields   []Field
	Position string // "file:line", for diagnostics only
}

// Origin records which front-end produced a Source.
type Origin string

const (
	OriginGo   Origin = "go"
	OriginHCL  Origin = "hcl"
	OriginYAML Origin = "yaml"
)

// Import is an import available to field type expressions.
type Import struct {
	Name string // explicit alias; empty means the package's own name
	Path string
}

// LocalName is the identifier the import is referenced by.
func (i Import) LocalName() string {
	if i.Name != "" {
		return i.Name
	}
	return ImportName(i.Path)
}

// Source is one validated input: a package and the aggregates found in it.
type Source struct {
	Package    string
	File       string // input file or directory, for the generated header
	Imports    []Import
	Aggregates []Aggregate
	// Declare is set when the aggregate structs do not exist yet and must be
	// emitted alongside the builder.
	Declare bool
	Origin  Origin
	// Declared lists the package-scope names the target package already
	// declares, outside earlier builder output.
	Declared []string
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// ImportName derives the conventional package name for an import path:
// the last element, skipping a /vN major-version element and trimming a
// gopkg.in style .vN suffix.
func ImportName(importPath string) string {
	importPath = strings.TrimSuffix(importPath, "/")
	name := path.Base(importPath)
	if majorVersion.MatchString(name) {
		if parent := path.Dir(importPath); parent != "." && parent != "/" {
			name = path.Base(parent)
		}
	}
	if idx := strings.Index(name, ".v"); idx > 0 && majorVersion.MatchString(name[idx+1:]) {
		name = name[:idx]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "_")
}
