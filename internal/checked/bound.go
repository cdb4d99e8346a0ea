package checked

// Bound is an open-ended conjunction of capabilities: the marker plus a set
// of getters. It types a hand-off boundary without naming a concrete state.
type Bound struct {
	lattice *Lattice
	getters []string
}

// Bound builds a bound requiring the getters of the named fields.
func (l *Lattice) Bound(fields ...string) (Bound, error) {
	getters := make([]string, 0, len(fields))
	for _, field := range fields {
		getter, ok := l.Getter(field)
		if !ok {
			return Bound{}, unknownField(l.Aggregate.Name, field)
		}
		getters = append(getters, getter.Name)
	}
	return Bound{lattice: l, getters: l.ordered(getters)}, nil
}

// BoundByCapability builds a bound from generated capability names. The
// marker and setter names are accepted and add nothing, since every state
// satisfies them.
func (l *Lattice) BoundByCapability(names ...string) (Bound, error) {
	getters := make([]string, 0, len(names))
	for _, name := range names {
		if name == l.Marker {
			continue
		}
		capability, ok := l.Capability(name)
		if !ok {
			return Bound{}, unknownCapability(l.Aggregate.Name, name)
		}
		if capability.Kind == Getter {
			getters = append(getters, name)
		}
	}
	return Bound{lattice: l, getters: l.ordered(getters)}, nil
}

// ordered deduplicates getters and sorts them into declaration order.
func (l *Lattice) ordered(getters []string) []string {
	want := make(map[string]bool, len(getters))
	for _, getter := range getters {
		want[getter] = true
	}
	ordered := make([]string, 0, len(want))
	for _, getter := range l.Getters {
		if want[getter.Name] {
			ordered = append(ordered, getter.Name)
		}
	}
	return ordered
}

// Capabilities lists the bound: the marker followed by its getters.
func (b Bound) Capabilities() []string {
	if b.lattice == nil {
		return nil
	}
	return append([]string{b.lattice.Marker}, b.getters...)
}

// Admit checks c against the bound and wraps it in a Handle. A chain that
// has not set a required field is rejected with a missing-field error for
// the first such field in declaration order.
func (b Bound) Admit(c Chain) (Handle, error) {
	if b.lattice == nil || c.lattice == nil {
		return Handle{}, errEmptyChain
	}
	if c.lattice != b.lattice {
		return Handle{}, errForeignChain
	}
	for _, getter := range b.getters {
		if _, ok := c.resolve(getter); !ok {
			capability, _ := b.lattice.Capability(getter)
			return Handle{}, missingField(b.lattice.Aggregate.Name, capability.Field.Name)
		}
	}
	return Handle{bound: b, chain: c}, nil
}

// Handle is a chain seen only through a Bound. Every setter and the build
// gate remain available; getters are limited to those the bound names plus
// those the handle itself has since set.
type Handle struct {
	bound    Bound
	chain    Chain
	acquired []string
}

// Set sets field through the handle, which also makes field readable.
func (h Handle) Set(field string, value any) (Handle, error) {
	chain, err := h.chain.Set(field, value)
	if err != nil {
		return Handle{}, err
	}
	getter, _ := h.bound.lattice.Getter(field)
	acquired := h.acquired
	if !h.readable(getter.Name) {
		acquired = append(h.acquired[:len(h.acquired):len(h.acquired)], getter.Name)
	}
	return Handle{bound: h.bound, chain: chain, acquired: acquired}, nil
}

// Readable reports whether the handle may read field.
func (h Handle) Readable(field string) bool {
	if h.bound.lattice == nil {
		return false
	}
	getter, ok := h.bound.lattice.Getter(field)
	if !ok {
		return false
	}
	return h.readable(getter.Name)
}

func (h Handle) readable(getter string) bool {
	for _, name := range h.bound.getters {
		if name == getter {
			return true
		}
	}
	for _, name := range h.acquired {
		if name == getter {
			return true
		}
	}
	return false
}

// Get reads field when the handle may read it.
func (h Handle) Get(field string) (any, bool) {
	if !h.Readable(field) {
		return nil, false
	}
	return h.chain.Get(field)
}

// Build passes the underlying chain through the build gate.
func (h Handle) Build() (Assembly, error) {
	return h.chain.Build()
}
