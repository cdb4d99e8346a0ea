// Package declfile reads aggregate declarations from HCL and YAML files, for
// aggregates that do not exist as Go structs yet.
package declfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

// Kinds accepted by the optional `kind` attribute.
const (
	KindStruct = "struct"
	KindTuple  = "tuple"
	KindEnum   = "enum"
	KindUnion  = "union"
	KindUnit   = "unit"
)

// Load reads a declaration file, choosing the decoder by extension.
func Load(path string) (aggregate.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return LoadHCL(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return aggregate.Source{}, fmt.Errorf("unsupported declaration file %s: want .hcl, .yaml or .yml", path)
	}
}

// document is the decoder-neutral form of a declaration file.
type document struct {
	Package    string
	Imports    []string
	Aggregates []documentAggregate
}

type documentAggregate struct {
	Name     string
	Kind     string
	Fields   []aggregate.Field
	Position string
}

func shapeForKind(kind string) (aggregate.Shape, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindStruct:
		return aggregate.ShapeRecord, nil
	case KindTuple:
		return aggregate.ShapeTuple, nil
	case KindEnum:
		return aggregate.ShapeSum, nil
	case KindUnion:
		return aggregate.ShapeUnion, nil
	case KindUnit:
		return aggregate.ShapeUnit, nil
	default:
		return aggregate.ShapeOther, fmt.Errorf("unknown aggregate kind %q", kind)
	}
}

// toSource validates every aggregate; the first rejection aborts the file.
func (d document) toSource(path string, origin aggregate.Origin) (aggregate.Source, error) {
	pkg := strings.TrimSpace(d.Package)
	if pkg == "" {
		return aggregate.Source{}, fmt.Errorf("%s: package is required", path)
	}
	if len(d.Aggregates) == 0 {
		return aggregate.Source{}, fmt.Errorf("%s: no aggregates declared", path)
	}
	source := aggregate.Source{
		Package: pkg,
		File:    path,
		Declare: true,
		Origin:  origin,
	}
	for _, importPath := range d.Imports {
		name, importPath := splitImport(importPath)
		source.Imports = append(source.Imports, aggregate.Import{Name: name, Path: importPath})
	}
	seen := make(map[string]struct{}, len(d.Aggregates))
	for _, item := range d.Aggregates {
		shape, err := shapeForKind(item.Kind)
		if err != nil {
			return aggregate.Source{}, fmt.Errorf("%s: %s: %w", item.Position, item.Name, err)
		}
		if _, dup := seen[item.Name]; dup {
			return aggregate.Source{}, apperrors.New(apperrors.CodeDuplicateField, "aggregate is declared more than once").With("aggregate", item.Name, "position", item.Position)
		}
		seen[item.Name] = struct{}{}
		agg, err := aggregate.FromDeclaration(aggregate.Declaration{
			Name:     item.Name,
			Shape:    shape,
			Fields:   item.Fields,
			Position: item.Position,
		})
		if err != nil {
			return aggregate.Source{}, err
		}
		source.Aggregates = append(source.Aggregates, agg)
	}
	return source, nil
}

// splitImport accepts "path" or "alias path".
func splitImport(spec string) (string, string) {
	parts := strings.Fields(spec)
	if len(parts) == 2 {
		return parts[0], strings.Trim(parts[1], `"`)
	}
	return "", strings.Trim(strings.TrimSpace(spec), `"`)
}
