package checked

import (
	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

// BuildMethod names the build gate operation.
const BuildMethod = "Build"

// CapabilityKind distinguishes setter and getter capabilities.
type CapabilityKind int

const (
	// Setter capabilities transition any state into "field is set".
	Setter CapabilityKind = iota + 1
	// Getter capabilities read a field some link of the chain has set.
	Getter
)

func (k CapabilityKind) String() string {
	switch k {
	case Setter:
		return "setter"
	case Getter:
		return "getter"
	default:
		return "unknown"
	}
}

// Capability is a named ability a construction state may satisfy.
type Capability struct {
	Kind   CapabilityKind
	Field  aggregate.Field
	Name   string // e.g. ConfigBuilderHostSetter, ConfigBuilderHost
	Method string // e.g. Host, GetHost
	// Result is the state descriptor a setter transitions into; empty for
	// getters.
	Result string
}

// StateDescriptor records "this chain has set Field", wrapping whatever state
// came before it. Every descriptor has the same two slots: the previous state
// and the value of its own field.
type StateDescriptor struct {
	Name  string
	Field aggregate.Field
	// Bound is the capability the wrapped state must satisfy: the marker.
	Bound string
	// Direct is the getter this descriptor satisfies from its own value.
	Direct string
	// Forwards lists, in declaration order, the getter of every other field.
	// The descriptor satisfies each of them whenever the state it wraps does.
	Forwards []string
}

// forwards reports whether the descriptor passes getter through to the state
// it wraps.
func (s *StateDescriptor) forwards(getter string) bool {
	for _, name := range s.Forwards {
		if name == getter {
			return true
		}
	}
	return false
}

// Forward is one transitive forwarding rule: State satisfies Getter whenever
// the state it wraps does.
type Forward struct {
	State  string
	Getter string
}

// Gate is the build operation: reachable only from states satisfying every
// getter in Requires, read in declaration order.
type Gate struct {
	Method    string
	Aggregate string
	Requires  []string
}

// Lattice is the full set of generation-time artifacts for one aggregate.
// It is immutable once Generate returns.
type Lattice struct {
	Aggregate aggregate.Aggregate
	Marker    string
	Initial   string
	States    []StateDescriptor
	Setters   []Capability
	Getters   []Capability
	Gate      Gate
}

// Generate derives the lattice for agg. It is pure and deterministic: the
// same aggregate always yields the same identifiers in the same order. On
// error no lattice is returned.
func Generate(agg aggregate.Aggregate) (*Lattice, error) {
	if len(agg.Fields) == 0 {
		return nil, apperrors.ErrUnitAggregate.With("aggregate", agg.Name)
	}
	fields := make([]aggregate.Field, len(agg.Fields))
	copy(fields, agg.Fields)
	agg = aggregate.Aggregate{Name: agg.Name, Fields: fields}

	l := &Lattice{
		Aggregate: agg,
		Marker:    MarkerName(agg.Name),
		Initial:   InitialName(agg.Name),
	}
	l.States = deriveStates(agg, l.Marker)
	l.Setters = deriveSetters(agg, l.States)
	l.Getters = deriveGetters(agg, l.States)
	l.Gate = deriveGate(agg, l.Getters)
	if err := checkCollisions(l); err != nil {
		return nil, err
	}
	return l, nil
}

func deriveStates(agg aggregate.Aggregate, marker string) []StateDescriptor {
	states := make([]StateDescriptor, len(agg.Fields))
	for i, field := range agg.Fields {
		states[i] = StateDescriptor{
			Name:  StateName(agg.Name, field.Name),
			Field: field,
			Bound: marker,
		}
	}
	return states
}

func deriveSetters(agg aggregate.Aggregate, states []StateDescriptor) []Capability {
	setters := make([]Capability, len(agg.Fields))
	for i, field := range agg.Fields {
		setters[i] = Capability{
			Kind:   Setter,
			Field:  field,
			Name:   SetterName(agg.Name, field.Name),
			Method: SetterMethod(field.Name),
			Result: states[i].Name,
		}
	}
	return setters
}

// deriveGetters emits one getter per field, then walks the field list a
// second time to attach direct satisfaction and the forwarding rules to
// every state descriptor.
func deriveGetters(agg aggregate.Aggregate, states []StateDescriptor) []Capability {
	getters := make([]Capability, len(agg.Fields))
	for i, field := range agg.Fields {
		getters[i] = Capability{
			Kind:   Getter,
			Field:  field,
			Name:   GetterName(agg.Name, field.Name),
			Method: GetterMethod(field.Name),
		}
	}
	for i := range states {
		states[i].Direct = getters[i].Name
		forwards := make([]string, 0, len(getters)-1)
		for j, getter := range getters {
			if j == i {
				continue
			}
			forwards = append(forwards, getter.Name)
		}
		states[i].Forwards = forwards
	}
	return getters
}

func deriveGate(agg aggregate.Aggregate, getters []Capability) Gate {
	requires := make([]string, len(getters))
	for i, getter := range getters {
		requires[i] = getter.Name
	}
	return Gate{
		Method:    BuildMethod,
		Aggregate: agg.Name,
		Requires:  requires,
	}
}

// checkCollisions rejects lattices whose derived identifiers clash, such as
// a field named "state" whose getter would be the marker itself.
func checkCollisions(l *Lattice) error {
	types := make(map[string]string)
	claim := func(name, owner string) error {
		if previous, ok := types[name]; ok {
			return apperrors.New(apperrors.CodeNameCollision, "generated identifier collides").
				With("aggregate", l.Aggregate.Name, "identifier", name, "first", previous, "second", owner)
		}
		types[name] = owner
		return nil
	}
	if err := claim(l.Aggregate.Name, "aggregate"); err != nil {
		return err
	}
	if err := claim(l.Marker, "marker"); err != nil {
		return err
	}
	if err := claim(l.Initial, "initial state"); err != nil {
		return err
	}
	for i, field := range l.Aggregate.Fields {
		if err := claim(l.States[i].Name, "state of "+field.Name); err != nil {
			return err
		}
		if err := claim(l.Setters[i].Name, "setter of "+field.Name); err != nil {
			return err
		}
		if err := claim(l.Getters[i].Name, "getter of "+field.Name); err != nil {
			return err
		}
	}

	methods := map[string]string{l.Gate.Method: "build gate"}
	for i, field := range l.Aggregate.Fields {
		for _, method := range []struct{ name, owner string }{
			{l.Setters[i].Method, "setter of " + field.Name},
			{l.Getters[i].Method, "getter of " + field.Name},
		} {
			if previous, ok := methods[method.name]; ok {
				return apperrors.New(apperrors.CodeNameCollision, "generated method collides").
					With("aggregate", l.Aggregate.Name, "method", method.name, "first", previous, "second", method.owner)
			}
			methods[method.name] = method.owner
		}
	}
	return nil
}

// fieldIndex returns the declaration index of field, or -1.
func (l *Lattice) fieldIndex(field string) int {
	for i, f := range l.Aggregate.Fields {
		if f.Name == field {
			return i
		}
	}
	return -1
}

// State returns the state descriptor for field.
func (l *Lattice) State(field string) (StateDescriptor, bool) {
	idx := l.fieldIndex(field)
	if idx < 0 {
		return StateDescriptor{}, false
	}
	return l.States[idx], true
}

// Setter returns the setter capability for field.
func (l *Lattice) Setter(field string) (Capability, bool) {
	idx := l.fieldIndex(field)
	if idx < 0 {
		return Capability{}, false
	}
	return l.Setters[idx], true
}

// Getter returns the getter capability for field.
func (l *Lattice) Getter(field string) (Capability, bool) {
	idx := l.fieldIndex(field)
	if idx < 0 {
		return Capability{}, false
	}
	return l.Getters[idx], true
}

// Capability looks a setter or getter up by its generated name.
func (l *Lattice) Capability(name string) (Capability, bool) {
	for _, c := range l.Setters {
		if c.Name == name {
			return c, true
		}
	}
	for _, c := range l.Getters {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}

// Forwards enumerates every forwarding rule: one per ordered pair of
// distinct fields, grouped by state in declaration order.
func (l *Lattice) Forwards() []Forward {
	n := len(l.States)
	forwards := make([]Forward, 0, n*(n-1))
	for _, state := range l.States {
		for _, getter := range state.Forwards {
			forwards = append(forwards, Forward{State: state.Name, Getter: getter})
		}
	}
	return forwards
}

// Identifiers lists every generated type-level identifier in emission order.
func (l *Lattice) Identifiers() []string {
	names := []string{l.Marker, l.Initial}
	for i := range l.Aggregate.Fields {
		names = append(names, l.States[i].Name, l.Setters[i].Name, l.Getters[i].Name)
	}
	return names
}
