// Package errors provides structured diagnostics for checked builder generation.
package errors

// Code is a machine-readable diagnostic code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Shape diagnostics: the declaration cannot be modeled as an aggregate.
	CodeUnnamedField     Code = "UNNAMED_FIELD"
	CodeTupleAggregate   Code = "TUPLE_AGGREGATE"
	CodeUnitAggregate    Code = "UNIT_AGGREGATE"
	CodeSumAggregate     Code = "SUM_AGGREGATE"
	CodeUnionAggregate   Code = "UNION_AGGREGATE"
	CodeUnsupportedShape Code = "UNSUPPORTED_SHAPE"

	// Declaration diagnostics
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	CodeDuplicateField    Code = "DUPLICATE_FIELD"
	CodeTypeNotFound      Code = "TYPE_NOT_FOUND"
	CodeInvalidFieldType  Code = "INVALID_FIELD_TYPE"

	// Generation diagnostics
	CodeNameCollision Code = "NAME_COLLISION"

	// Output diagnostics
	CodeOutputWrite Code = "OUTPUT_WRITE"

	// Construction errors
	CodeMissingField      Code = "MISSING_FIELD"
	CodeUnknownField      Code = "UNKNOWN_FIELD"
	CodeUnknownCapability Code = "UNKNOWN_CAPABILITY"
)
