package checkedbuilder

import (
	"gopkg.in/yaml.v3"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	"github.com/louisbranch/checkedbuilder/internal/checked"
	"github.com/louisbranch/checkedbuilder/internal/gogen"
)

// Manifest lists every identifier a run generated, for documentation.
type Manifest struct {
	Package    string              `yaml:"package"`
	Origin     string              `yaml:"origin"`
	Aggregates []AggregateManifest `yaml:"aggregates"`
}

type AggregateManifest struct {
	Name        string          `yaml:"name"`
	Constructor string          `yaml:"constructor"`
	Marker      string          `yaml:"marker"`
	Initial     string          `yaml:"initial"`
	Fields      []FieldManifest `yaml:"fields"`
	Gate        GateManifest    `yaml:"gate"`
}

type FieldManifest struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	State    string   `yaml:"state"`
	Setter   Method   `yaml:"setter"`
	Getter   Method   `yaml:"getter"`
	Forwards []string `yaml:"forwards,omitempty"`
}

// Method pairs a capability with the Go operation that exercises it: a
// method for setters, a generic function for getters.
type Method struct {
	Capability string `yaml:"capability"`
	Method     string `yaml:"method"`
}

type GateManifest struct {
	Method   string   `yaml:"method"`
	Requires []string `yaml:"requires"`
}

func describe(source aggregate.Source, lattices []*checked.Lattice) ([]byte, error) {
	manifest := Manifest{
		Package: source.Package,
		Origin:  string(source.Origin),
	}
	for _, l := range lattices {
		entry := AggregateManifest{
			Name:        l.Aggregate.Name,
			Constructor: gogen.Constructor(l),
			Marker:      l.Marker,
			Initial:     l.Initial,
			Gate: GateManifest{
				Method:   gogen.Gate(l),
				Requires: l.Gate.Requires,
			},
		}
		for i, field := range l.Aggregate.Fields {
			entry.Fields = append(entry.Fields, FieldManifest{
				Name:     field.Name,
				Type:     field.Type,
				State:    l.States[i].Name,
				Setter:   Method{Capability: l.Setters[i].Name, Method: l.Setters[i].Method},
				Getter:   Method{Capability: l.Getters[i].Name, Method: gogen.Accessor(l, i)},
				Forwards: l.States[i].Forwards,
			})
		}
		manifest.Aggregates = append(manifest.Aggregates, entry)
	}
	return yaml.Marshal(manifest)
}
