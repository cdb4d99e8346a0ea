package aggregate

import (
	"go/parser"
	"go/token"
	"strconv"

	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

// FromDeclaration validates a raw declaration and returns the aggregate it
// describes. The guards run in a fixed order so a declaration that breaks
// several rules always reports the same diagnostic.
func FromDeclaration(decl Declaration) (Aggregate, error) {
	meta := []string{"aggregate", decl.Name}
	if decl.Position != "" {
		meta = append(meta, "position", decl.Position)
	}

	switch decl.Shape {
	case ShapeSum:
		return Aggregate{}, apperrors.ErrSumAggregate.With(meta...)
	case ShapeUnion:
		return Aggregate{}, apperrors.ErrUnionAggregate.With(meta...)
	case ShapeTuple:
		return Aggregate{}, apperrors.ErrTupleAggregate.With(meta...)
	case ShapeOther:
		return Aggregate{}, apperrors.ErrUnsupportedShape.With(meta...)
	case ShapeUnit:
		return Aggregate{}, apperrors.ErrUnitAggregate.With(meta...)
	}
	if len(decl.Fields) == 0 {
		return Aggregate{}, apperrors.ErrUnitAggregate.With(meta...)
	}
	if !token.IsIdentifier(decl.Name) {
		return Aggregate{}, apperrors.New(apperrors.CodeInvalidIdentifier, "aggregate name is not a valid identifier").With(meta...)
	}

	for i, field := range decl.Fields {
		if field.Name == "" || field.Name == "_" {
			return Aggregate{}, apperrors.ErrUnnamedField.With(append(meta, "index", strconv.Itoa(i))...)
		}
	}
	seen := make(map[string]struct{}, len(decl.Fields))
	fields := make([]Field, 0, len(decl.Fields))
	for _, field := range decl.Fields {
		if !token.IsIdentifier(field.Name) {
			return Aggregate{}, apperrors.New(apperrors.CodeInvalidIdentifier, "field name is not a valid identifier").With(append(meta, "field", field.Name)...)
		}
		if _, dup := seen[field.Name]; dup {
			return Aggregate{}, apperrors.New(apperrors.CodeDuplicateField, "field is declared more than once").With(append(meta, "field", field.Name)...)
		}
		seen[field.Name] = struct{}{}
		if _, err := parser.ParseExpr(field.Type); err != nil || field.Type == "" {
			return Aggregate{}, apperrors.New(apperrors.CodeInvalidFieldType, "field type is not a Go type expression").With(append(meta, "field", field.Name, "type", field.Type)...)
		}
		fields = append(fields, field)
	}
	return Aggregate{Name: decl.Name, Fields: fields}, nil
}
