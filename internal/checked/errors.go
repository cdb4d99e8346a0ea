package checked

import (
	"errors"

	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

var (
	errForeignChain = apperrors.New(apperrors.CodeUnknown, "chain belongs to a different lattice")
	errEmptyChain   = apperrors.New(apperrors.CodeUnknown, "chain was not started from a lattice")
)

func missingField(aggregate, field string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeMissingField, "required field was never set", map[string]string{
		"aggregate": aggregate,
		"field":     field,
	})
}

func unknownField(aggregate, field string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeUnknownField, "aggregate has no such field", map[string]string{
		"aggregate": aggregate,
		"field":     field,
	})
}

func unknownCapability(aggregate, name string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeUnknownCapability, "lattice has no such capability", map[string]string{
		"aggregate":  aggregate,
		"capability": name,
	})
}

// MissingField reports the field a failed Build or Admit was missing.
func MissingField(err error) (string, bool) {
	var diag *apperrors.Error
	if !errors.As(err, &diag) || diag.Code != apperrors.CodeMissingField {
		return "", false
	}
	field, ok := diag.Metadata["field"]
	return field, ok
}
