package gogen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"strconv"
	"strings"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	"github.com/louisbranch/checkedbuilder/internal/checked"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
	"golang.org/x/tools/imports"
)

// Generator is the tool name written into the generated-code header.
const Generator = "checkedbuilder"

// nextParam is the type parameter of every setter capability.
const nextParam = "Next"

// File is one generated Go file.
type File struct {
	Package  string
	Source   string // input the file was generated from, for the header
	Imports  []aggregate.Import
	Lattices []*checked.Lattice
	// Declare emits the aggregate structs themselves ahead of their builders.
	Declare bool
	// Reserved lists identifiers the target package already declares.
	Reserved []string
}

// builderNames holds the identifiers gogen adds on top of a lattice.
type builderNames struct {
	builder     string
	set         string
	unset       string
	flag        string
	seal        string
	constructor string
	gate        string
	params      []string
	accessors   []string
}

// Constructor names the function that starts a builder for l: exported
// aggregates get New<Aggregate>Builder, unexported ones new<Aggregate>Builder.
func Constructor(l *checked.Lattice) string {
	return verb(l, "New") + "Builder"
}

// Gate names the function that assembles the aggregate from a complete
// builder: Build<Aggregate>.
func Gate(l *checked.Lattice) string {
	return verb(l, "Build")
}

// Accessor names the function that reads field i from a builder that has set
// it: Get<Aggregate><Field>.
func Accessor(l *checked.Lattice, i int) string {
	return verb(l, "Get") + checked.PascalCase(l.Aggregate.Fields[i].Name)
}

// verb prefixes the aggregate name, keeping unexported aggregates unexported.
func verb(l *checked.Lattice, v string) string {
	name := checked.PascalCase(l.Aggregate.Name)
	if checked.LowerFirst(l.Aggregate.Name) == l.Aggregate.Name {
		v = strings.ToLower(v)
	}
	return v + name
}

func namesFor(l *checked.Lattice) builderNames {
	builder := l.Aggregate.Name + "Builder"
	names := builderNames{
		builder:     builder,
		set:         builder + "Set",
		unset:       builder + "Unset",
		flag:        builder + "Flag",
		seal:        checked.LowerFirst(l.Marker),
		constructor: Constructor(l),
		gate:        Gate(l),
		params:      make([]string, len(l.Aggregate.Fields)),
		accessors:   make([]string, len(l.Aggregate.Fields)),
	}
	for i, field := range l.Aggregate.Fields {
		names.params[i] = checked.PascalCase(field.Name) + "Flag"
		names.accessors[i] = Accessor(l, i)
	}
	return names
}

// instance spells the builder instantiated with args.
func (n builderNames) instance(args []string) string {
	return n.builder + "[" + strings.Join(args, ", ") + "]"
}

// marking returns params with position i replaced by the set marker.
func (n builderNames) marking(i int) []string {
	args := append([]string{}, n.params...)
	args[i] = n.set
	return args
}

// rest returns every parameter except position i.
func (n builderNames) rest(i int) []string {
	rest := make([]string, 0, len(n.params)-1)
	rest = append(rest, n.params[:i]...)
	return append(rest, n.params[i+1:]...)
}

// paramList declares params constrained by the flag set, or nothing.
func (n builderNames) paramList(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + strings.Join(params, ", ") + " " + n.flag + "]"
}

func repeat(name string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = name
	}
	return out
}

// Render emits one formatted Go file for f.
func Render(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("render: package name is required")
	}
	if len(f.Lattices) == 0 {
		return nil, fmt.Errorf("render: no aggregates to render")
	}
	if err := checkTopLevel(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	source := f.Source
	if source == "" {
		source = f.Package
	}
	fmt.Fprintf(&buf, "// Code generated by %s from %s. DO NOT EDIT.\n\n", Generator, source)
	fmt.Fprintf(&buf, "package %s\n\n", f.Package)
	writeImports(&buf, referencedImports(f.Imports, f.Lattices))
	for _, l := range f.Lattices {
		if f.Declare {
			writeAggregate(&buf, l, f.Source)
		}
		writeBuilder(&buf, l, namesFor(l), f.Declare)
	}

	out, err := imports.Process("", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}

// checkTopLevel rejects files whose package-level identifiers clash across
// lattices, with the identifiers gogen adds or with names the package
// already declares. Type parameters must not shadow a generated name or
// anything a field type refers to.
func checkTopLevel(f File) error {
	owners := make(map[string]string)
	for _, name := range f.Reserved {
		owners[name] = "package " + f.Package
	}
	generated := make(map[string]bool)
	for _, l := range f.Lattices {
		names := namesFor(l)
		declared := append([]string{}, l.Identifiers()...)
		declared = append(declared, names.builder, names.set, names.unset, names.flag, names.constructor, names.gate)
		declared = append(declared, names.accessors...)
		if f.Declare {
			declared = append(declared, l.Aggregate.Name)
		}
		for _, name := range declared {
			if previous, ok := owners[name]; ok {
				return apperrors.New(apperrors.CodeNameCollision, "generated identifier collides").
					With("aggregate", l.Aggregate.Name, "identifier", name, "first", previous)
			}
			owners[name] = l.Aggregate.Name
			generated[name] = true
		}
	}
	for _, l := range f.Lattices {
		scoped := append([]string{nextParam}, namesFor(l).params...)
		for _, param := range scoped {
			if generated[param] {
				return apperrors.New(apperrors.CodeNameCollision, "type parameter shadows a generated identifier").
					With("aggregate", l.Aggregate.Name, "identifier", param)
			}
		}
		for _, field := range l.Aggregate.Fields {
			for _, ident := range typeIdents(field.Type) {
				for _, param := range scoped {
					if ident == param {
						return apperrors.New(apperrors.CodeNameCollision, "type parameter shadows a field type").
							With("aggregate", l.Aggregate.Name, "field", field.Name, "identifier", param)
					}
				}
			}
		}
	}
	return nil
}

// typeIdents lists the unqualified identifiers a type expression refers to.
func typeIdents(typeExpr string) []string {
	expr, err := parser.ParseExpr(typeExpr)
	if err != nil {
		return nil
	}
	var names []string
	var visit func(ast.Node) bool
	visit = func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.SelectorExpr:
			return false
		case *ast.Field:
			// field and parameter names are not references
			ast.Inspect(n.Type, visit)
			return false
		case *ast.Ident:
			names = append(names, n.Name)
		}
		return true
	}
	ast.Inspect(expr, visit)
	return names
}

func writeImports(buf *bytes.Buffer, used []aggregate.Import) {
	switch len(used) {
	case 0:
		return
	case 1:
		fmt.Fprintf(buf, "import %s\n\n", importSpec(used[0]))
		return
	}
	buf.WriteString("import (\n")
	for _, imp := range used {
		fmt.Fprintf(buf, "\t%s\n", importSpec(imp))
	}
	buf.WriteString(")\n\n")
}

func importSpec(imp aggregate.Import) string {
	if imp.Name != "" {
		return imp.Name + " " + strconv.Quote(imp.Path)
	}
	return strconv.Quote(imp.Path)
}

// structField is the Go field name the aggregate literal uses. Declared
// aggregates get exported names; loaded ones keep their own.
func structField(field aggregate.Field, declare bool) string {
	if declare {
		return checked.PascalCase(field.Name)
	}
	return field.Name
}

func slotName(field aggregate.Field) string {
	return checked.LowerFirst(checked.PascalCase(field.Name)) + "Value"
}

func writeAggregate(buf *bytes.Buffer, l *checked.Lattice, source string) {
	if source != "" {
		fmt.Fprintf(buf, "// %s is declared in %s.\n", l.Aggregate.Name, source)
	}
	fmt.Fprintf(buf, "type %s struct {\n", l.Aggregate.Name)
	for _, field := range l.Aggregate.Fields {
		fmt.Fprintf(buf, "\t%s %s\n", structField(field, true), field.Type)
	}
	buf.WriteString("}\n\n")
}

func writeBuilder(buf *bytes.Buffer, l *checked.Lattice, names builderNames, declare bool) {
	agg := l.Aggregate.Name
	n := len(l.Aggregate.Fields)
	self := names.instance(names.params)

	fmt.Fprintf(buf, "// %s marks a %s field that has been set.\n", names.set, agg)
	fmt.Fprintf(buf, "type %s struct{}\n\n", names.set)
	fmt.Fprintf(buf, "// %s marks a %s field that has not been set yet.\n", names.unset, agg)
	fmt.Fprintf(buf, "type %s struct{}\n\n", names.unset)
	fmt.Fprintf(buf, "// %s is satisfied by %s and %s only.\n", names.flag, names.set, names.unset)
	fmt.Fprintf(buf, "type %s interface {\n\t%s | %s\n}\n\n", names.flag, names.set, names.unset)

	fmt.Fprintf(buf, "// %s is a %s under construction. Each type parameter records\n", names.builder, agg)
	buf.WriteString("// whether the field it is named after has been set.\n")
	fmt.Fprintf(buf, "type %s%s struct {\n", names.builder, names.paramList(names.params))
	for _, field := range l.Aggregate.Fields {
		fmt.Fprintf(buf, "\t%s %s\n", slotName(field), field.Type)
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// %s is satisfied by every %s builder state.\n", l.Marker, agg)
	fmt.Fprintf(buf, "type %s interface {\n\t%s()\n}\n\n", l.Marker, names.seal)
	fmt.Fprintf(buf, "func (%s) %s() {}\n\n", self, names.seal)

	fmt.Fprintf(buf, "// %s is the %s builder before any field is set.\n", l.Initial, agg)
	fmt.Fprintf(buf, "type %s = %s\n\n", l.Initial, names.instance(repeat(names.unset, n)))

	fmt.Fprintf(buf, "// %s starts a %s checked builder with no fields set.\n", names.constructor, agg)
	fmt.Fprintf(buf, "func %s() %s {\n\treturn %s{}\n}\n\n", names.constructor, l.Initial, l.Initial)

	for i, field := range l.Aggregate.Fields {
		state := l.States[i]
		setter := l.Setters[i]
		getter := l.Getters[i]
		rest := names.rest(i)
		marked := names.instance(names.marking(i))

		fmt.Fprintf(buf, "// %s is the state %s returns: %s set, every other field as before.\n", state.Name, setter.Method, field.Name)
		fmt.Fprintf(buf, "type %s%s = %s\n\n", state.Name, names.paramList(rest), marked)

		fmt.Fprintf(buf, "// %s is implemented by every %s builder state; %s is the state %s returns.\n", setter.Name, agg, nextParam, setter.Method)
		fmt.Fprintf(buf, "type %s[%s any] interface {\n\t%s(value %s) %s\n}\n\n", setter.Name, nextParam, setter.Method, field.Type, nextParam)

		fmt.Fprintf(buf, "// %s is any %s builder that has set %s.\n", getter.Name, agg, field.Name)
		fmt.Fprintf(buf, "type %s%s = %s\n\n", getter.Name, names.paramList(rest), marked)

		fmt.Fprintf(buf, "// %s sets %s, replacing any earlier value.\n", setter.Method, field.Name)
		fmt.Fprintf(buf, "func (b %s) %s(value %s) %s {\n", self, setter.Method, field.Type, marked)
		fmt.Fprintf(buf, "\tnext := %s(b)\n\tnext.%s = value\n\treturn next\n}\n\n", marked, slotName(field))

		fmt.Fprintf(buf, "// %s reads %s from a builder that has set it.\n", names.accessors[i], field.Name)
		fmt.Fprintf(buf, "func %s%s(b %s) %s {\n\treturn b.%s\n}\n\n", names.accessors[i], names.paramList(rest), marked, field.Type, slotName(field))
	}

	fmt.Fprintf(buf, "// %s assembles the %s. It only accepts builders that have set every field.\n", names.gate, agg)
	fmt.Fprintf(buf, "func %s(b %s) %s {\n\treturn %s{\n", names.gate, names.instance(repeat(names.set, n)), agg, agg)
	for _, field := range l.Aggregate.Fields {
		fmt.Fprintf(buf, "\t\t%s: b.%s,\n", structField(field, declare), slotName(field))
	}
	buf.WriteString("\t}\n}\n\n")

	fmt.Fprintf(buf, "var _ %s = %s{}\n\n", l.Marker, l.Initial)
}
