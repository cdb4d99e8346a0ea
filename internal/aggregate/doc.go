// Package aggregate models the data aggregates a checked builder is generated
// for.
//
// Front-ends (Go source, HCL and YAML declaration files) produce raw
// Declarations. FromDeclaration applies the shape guards and returns an
// immutable Aggregate: a name plus an ordered list of uniquely named, typed
// fields. Field order only drives deterministic naming and diagnostic order.
package aggregate
