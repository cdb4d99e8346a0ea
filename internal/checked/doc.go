// Package checked derives the capability lattice of a checked builder.
//
// A checked builder is a staged construction API: every field setter returns
// a more capable state, and the build gate only accepts states that have set
// every field at least once.
//
// # Artifacts
//
// Generate turns an aggregate into a Lattice, a self-describing set of
// generation-time artifacts:
//   - a base marker every construction state satisfies, and the initial state
//   - one state descriptor per field, wrapping whatever state preceded it
//   - one setter capability per field, available from every state
//   - one getter capability per field, satisfied directly by that field's
//     state descriptor and forwarded by every other field's descriptor
//   - the build gate, requiring every getter
//
// No registry ties these together: each state descriptor lists the getter it
// satisfies directly and the getters it forwards from the state it wraps.
//
// # Runtime chains
//
// Chain interprets a Lattice at runtime. Each Set appends one immutable link;
// Get resolves a field by direct satisfaction on the outermost link that set
// it, forwarding inward otherwise, so the most recent value always wins.
// Build reports the first unset field in declaration order.
//
// Bound and Handle express the partial hand-off: a chain passed across a
// boundary typed only by a set of getter capabilities.
package checked
