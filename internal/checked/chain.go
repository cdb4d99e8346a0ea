package checked

// Chain is a construction state interpreted against a Lattice. It is an
// immutable value: Set returns a new chain one link longer and never
// modifies the receiver, so earlier chains stay valid.
type Chain struct {
	lattice *Lattice
	head    *link
}

type link struct {
	state *StateDescriptor
	value any
	prev  *link
	depth int
}

// FieldValue is one field of an assembled aggregate.
type FieldValue struct {
	Field string
	Value any
}

// Assembly is the result of a successful Build: every field's most recent
// value, in declaration order.
type Assembly struct {
	Aggregate string
	Values    []FieldValue
}

// Value returns the assembled value of field.
func (a Assembly) Value(field string) (any, bool) {
	for _, v := range a.Values {
		if v.Field == field {
			return v.Value, true
		}
	}
	return nil, false
}

// Map returns the assembled values keyed by field name.
func (a Assembly) Map() map[string]any {
	values := make(map[string]any, len(a.Values))
	for _, v := range a.Values {
		values[v.Field] = v.Value
	}
	return values
}

// Begin returns the initial state: the empty chain.
func (l *Lattice) Begin() Chain {
	return Chain{lattice: l}
}

// Len reports how many links the chain holds, one per Set call.
func (c Chain) Len() int {
	if c.head == nil {
		return 0
	}
	return c.head.depth
}

// State names the outermost state of the chain.
func (c Chain) State() string {
	if c.lattice == nil {
		return ""
	}
	if c.head == nil {
		return c.lattice.Initial
	}
	return c.head.state.Name
}

// Set wraps the chain in the state descriptor of field. Setters are available
// from every state, including ones that already set field.
func (c Chain) Set(field string, value any) (Chain, error) {
	if c.lattice == nil {
		return Chain{}, errEmptyChain
	}
	idx := c.lattice.fieldIndex(field)
	if idx < 0 {
		return Chain{}, unknownField(c.lattice.Aggregate.Name, field)
	}
	depth := 1
	if c.head != nil {
		depth = c.head.depth + 1
	}
	return Chain{
		lattice: c.lattice,
		head: &link{
			state: &c.lattice.States[idx],
			value: value,
			prev:  c.head,
			depth: depth,
		},
	}, nil
}

// Get reads field through its getter capability. It reports false when no
// link of the chain has set field.
func (c Chain) Get(field string) (any, bool) {
	if c.lattice == nil {
		return nil, false
	}
	getter, ok := c.lattice.Getter(field)
	if !ok {
		return nil, false
	}
	return c.resolve(getter.Name)
}

// resolve walks from the outermost link inward: a link satisfies getter
// directly when it set that field, and forwards it when it set another one.
func (c Chain) resolve(getter string) (any, bool) {
	for l := c.head; l != nil; l = l.prev {
		if l.state.Direct == getter {
			return l.value, true
		}
		if !l.state.forwards(getter) {
			return nil, false
		}
	}
	return nil, false
}

// Satisfies reports whether the chain's state satisfies the named capability.
// Every state satisfies the marker and every setter; getters are satisfied
// only once their field has been set.
func (c Chain) Satisfies(name string) bool {
	if c.lattice == nil {
		return false
	}
	if name == c.lattice.Marker {
		return true
	}
	capability, ok := c.lattice.Capability(name)
	if !ok {
		return false
	}
	if capability.Kind == Setter {
		return true
	}
	_, ok = c.resolve(name)
	return ok
}

// Build passes the chain through the lattice's build gate.
func (c Chain) Build() (Assembly, error) {
	if c.lattice == nil {
		return Assembly{}, errEmptyChain
	}
	return c.lattice.Build(c)
}

// Build reads every field through its getter, in declaration order. The
// first unset field aborts with a missing-field error; nothing is assembled
// partially.
func (l *Lattice) Build(c Chain) (Assembly, error) {
	if c.lattice != l {
		return Assembly{}, errForeignChain
	}
	values := make([]FieldValue, 0, len(l.Gate.Requires))
	for i, getter := range l.Gate.Requires {
		field := l.Aggregate.Fields[i].Name
		value, ok := c.resolve(getter)
		if !ok {
			return Assembly{}, missingField(l.Aggregate.Name, field)
		}
		values = append(values, FieldValue{Field: field, Value: value})
	}
	return Assembly{Aggregate: l.Aggregate.Name, Values: values}, nil
}
