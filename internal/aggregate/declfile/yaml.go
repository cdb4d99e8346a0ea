package declfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
)

type yamlFile struct {
	Package    string          `yaml:"package"`
	Imports    []string        `yaml:"imports"`
	Aggregates []yamlAggregate `yaml:"aggregates"`
}

type yamlAggregate struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Fields []yamlField `yaml:"fields"`
	Line   int         `yaml:"-"`
}

type yamlField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// UnmarshalYAML records the line of each aggregate for diagnostics.
func (a *yamlAggregate) UnmarshalYAML(node *yaml.Node) error {
	type plain yamlAggregate
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*a = yamlAggregate(decoded)
	a.Line = node.Line
	return nil
}

// LoadYAML parses a YAML declaration file:
//
//	package: config
//	aggregates:
//	  - name: Config
//	    fields:
//	      - {name: enable_logging, type: string}
func LoadYAML(path string) (aggregate.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return aggregate.Source{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseYAML(data, path)
}

// ParseYAML parses YAML declarations held in memory; filename labels diagnostics.
func ParseYAML(src []byte, filename string) (aggregate.Source, error) {
	var parsed yamlFile
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return aggregate.Source{}, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}
	doc := document{
		Package: parsed.Package,
		Imports: parsed.Imports,
	}
	for _, item := range parsed.Aggregates {
		entry := documentAggregate{
			Name:     item.Name,
			Kind:     item.Kind,
			Position: fmt.Sprintf("%s:%d", filepath.Base(filename), item.Line),
		}
		for _, field := range item.Fields {
			entry.Fields = append(entry.Fields, aggregate.Field{Name: field.Name, Type: field.Type})
		}
		doc.Aggregates = append(doc.Aggregates, entry)
	}
	return doc.toSource(filename, aggregate.OriginYAML)
}
