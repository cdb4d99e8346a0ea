package errors

// Fixed shape diagnostics. Each rejected declaration shape has exactly one
// message; callers attach position and names through (*Error).With.
var (
	ErrUnnamedField     = New(CodeUnnamedField, "checkedbuilder does not support nameless fields")
	ErrTupleAggregate   = New(CodeTupleAggregate, "checkedbuilder does not support tuple aggregates")
	ErrUnitAggregate    = New(CodeUnitAggregate, "checkedbuilder does not support unit aggregates")
	ErrSumAggregate     = New(CodeSumAggregate, "checkedbuilder does not support sum-typed aggregates")
	ErrUnionAggregate   = New(CodeUnionAggregate, "checkedbuilder does not support union aggregates")
	ErrUnsupportedShape = New(CodeUnsupportedShape, "checkedbuilder only supports struct aggregates")
)
