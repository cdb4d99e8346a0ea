package gogen

import (
	"go/ast"
	"go/parser"
	"sort"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	"github.com/louisbranch/checkedbuilder/internal/checked"
)

// referencedImports returns the imports whose local names appear as
// package qualifiers in any field type, sorted by path.
func referencedImports(available []aggregate.Import, lattices []*checked.Lattice) []aggregate.Import {
	qualifiers := make(map[string]struct{})
	for _, l := range lattices {
		for _, field := range l.Aggregate.Fields {
			for _, name := range typeQualifiers(field.Type) {
				qualifiers[name] = struct{}{}
			}
		}
	}
	seen := make(map[string]struct{})
	var used []aggregate.Import
	for _, imp := range available {
		if _, ok := qualifiers[imp.LocalName()]; !ok {
			continue
		}
		if _, dup := seen[imp.Path]; dup {
			continue
		}
		seen[imp.Path] = struct{}{}
		used = append(used, imp)
	}
	sort.Slice(used, func(i, j int) bool {
		return used[i].Path < used[j].Path
	})
	return used
}

// typeQualifiers lists the X of every X.Sel selector in a type expression.
func typeQualifiers(typeExpr string) []string {
	expr, err := parser.ParseExpr(typeExpr)
	if err != nil {
		return nil
	}
	var names []string
	ast.Inspect(expr, func(node ast.Node) bool {
		sel, ok := node.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok {
			names = append(names, ident.Name)
		}
		return false
	})
	return names
}
