// Package gogen renders checked builder lattices as Go source.
//
// The rendered builder is one generic struct per aggregate holding a value
// slot per field and one phantom type parameter per field, instantiated with
// either the Set or the Unset marker. A setter is a method that returns the
// same builder with its own parameter flipped to Set, so every state is an
// instantiation and earlier states stay valid. Getters and the build gate
// are generic functions whose parameter types fix the positions they need to
// Set, so reading an unset field or building an incomplete aggregate is a
// compile error in the caller. The lattice's state descriptors and getter
// capabilities become generic aliases over the positions they leave free.
package gogen
