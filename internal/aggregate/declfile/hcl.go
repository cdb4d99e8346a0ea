package declfile

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
)

type hclFile struct {
	Package    string          `hcl:"package"`
	Imports    []string        `hcl:"imports,optional"`
	Aggregates []*hclAggregate `hcl:"aggregate,block"`
}

type hclAggregate struct {
	Name   string      `hcl:"name,label"`
	Kind   string      `hcl:"kind,optional"`
	Fields []*hclField `hcl:"field,block"`
}

type hclField struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

// LoadHCL parses an HCL declaration file:
//
//	package = "config"
//	imports = ["time"]
//	aggregate "Config" {
//	  field "enable_logging" { type = "string" }
//	}
func LoadHCL(path string) (aggregate.Source, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return aggregate.Source{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeHCL(file, path)
}

// ParseHCL parses HCL declarations held in memory; filename labels diagnostics.
func ParseHCL(src []byte, filename string) (aggregate.Source, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return aggregate.Source{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeHCL(file, filename)
}

func decodeHCL(file *hcl.File, path string) (aggregate.Source, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return aggregate.Source{}, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	doc := document{
		Package: parsed.Package,
		Imports: parsed.Imports,
	}
	lines := aggregateLines(file)
	for i, block := range parsed.Aggregates {
		item := documentAggregate{
			Name: block.Name,
			Kind: block.Kind,
		}
		if i < len(lines) {
			item.Position = fmt.Sprintf("%s:%d", filepath.Base(path), lines[i])
		}
		for _, field := range block.Fields {
			item.Fields = append(item.Fields, aggregate.Field{Name: field.Name, Type: field.Type})
		}
		doc.Aggregates = append(doc.Aggregates, item)
	}
	return doc.toSource(path, aggregate.OriginHCL)
}

// aggregateLines returns the starting line of each aggregate block, in source
// order, which is also the order gohcl decodes them in.
func aggregateLines(file *hcl.File) []int {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil
	}
	var lines []int
	for _, block := range body.Blocks {
		if block.Type == "aggregate" {
			lines = append(lines, block.DefRange().Start.Line)
		}
	}
	return lines
}
