// Package goload reads aggregate declarations from Go source files.
package goload

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

// LoadDir parses the non-test Go files of the package in dir and returns the
// requested types as aggregates, in request order. The first invalid
// declaration aborts the load.
func LoadDir(dir string, typeNames ...string) (aggregate.Source, error) {
	if len(typeNames) == 0 {
		return aggregate.Source{}, fmt.Errorf("at least one type name is required")
	}
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(info os.FileInfo) bool {
		return !strings.HasSuffix(info.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return aggregate.Source{}, fmt.Errorf("parse %s: %w", dir, err)
	}
	pkg, err := selectPackage(pkgs, dir)
	if err != nil {
		return aggregate.Source{}, err
	}

	specs := make(map[string]typeSite)
	var declared []string
	fileNames := make([]string, 0, len(pkg.Files))
	for name := range pkg.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)
	for _, name := range fileNames {
		file := pkg.Files[name]
		if !isBuilderOutput(file) {
			declared = append(declared, topLevelNames(file)...)
		}
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				specs[typeSpec.Name.Name] = typeSite{spec: typeSpec, file: file}
			}
		}
	}

	source := aggregate.Source{
		Package:  pkg.Name,
		File:     dir,
		Origin:   aggregate.OriginGo,
		Declared: declared,
	}
	importSeen := make(map[aggregate.Import]struct{})
	for _, typeName := range typeNames {
		site, ok := specs[typeName]
		if !ok {
			return aggregate.Source{}, apperrors.New(apperrors.CodeTypeNotFound, "type not found in package").With("aggregate", typeName, "package", pkg.Name)
		}
		decl := declarationFromSpec(fset, site.spec, dir)
		agg, err := aggregate.FromDeclaration(decl)
		if err != nil {
			return aggregate.Source{}, err
		}
		source.Aggregates = append(source.Aggregates, agg)
		for _, imp := range parseImports(site.file) {
			if _, ok := importSeen[imp]; ok {
				continue
			}
			importSeen[imp] = struct{}{}
			source.Imports = append(source.Imports, imp)
		}
	}
	return source, nil
}

// generatedMarker opens the header of every file this tool writes.
const generatedMarker = "Code generated by checkedbuilder "

// isBuilderOutput reports whether file is a previous run's output, whose
// names are regenerated rather than taken.
func isBuilderOutput(file *ast.File) bool {
	for _, group := range file.Comments {
		if group.Pos() > file.Package {
			return false
		}
		if strings.HasPrefix(group.Text(), generatedMarker) {
			return true
		}
	}
	return false
}

// topLevelNames lists the package-scope identifiers file declares.
func topLevelNames(file *ast.File) []string {
	var names []string
	add := func(ident *ast.Ident) {
		if ident.Name != "_" {
			names = append(names, ident.Name)
		}
	}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil && d.Name.Name != "init" {
				add(d.Name)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					add(s.Name)
				case *ast.ValueSpec:
					for _, ident := range s.Names {
						add(ident)
					}
				}
			}
		}
	}
	return names
}

type typeSite struct {
	spec *ast.TypeSpec
	file *ast.File
}

func selectPackage(pkgs map[string]*ast.Package, dir string) (*ast.Package, error) {
	var candidates []*ast.Package
	for name, pkg := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}
		candidates = append(candidates, pkg)
	}
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("no Go package found in %s", dir)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, 0, len(candidates))
		for _, pkg := range candidates {
			names = append(names, pkg.Name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("multiple packages in %s: %s", dir, strings.Join(names, ", "))
	}
}

// declarationFromSpec classifies a Go type declaration. Go has no tuple or
// enum syntax, so the nearest shapes stand in: arrays are tuples, sealed
// interfaces are sums and constraint interfaces with terms are unions.
func declarationFromSpec(fset *token.FileSet, spec *ast.TypeSpec, root string) aggregate.Declaration {
	decl := aggregate.Declaration{
		Name:     spec.Name.Name,
		Position: formatPosition(fset.Position(spec.Pos()), root),
	}
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		decl.Shape = aggregate.ShapeOther
		return decl
	}
	switch typed := spec.Type.(type) {
	case *ast.StructType:
		decl.Shape = aggregate.ShapeRecord
		if typed.Fields == nil || len(typed.Fields.List) == 0 {
			decl.Shape = aggregate.ShapeUnit
			return decl
		}
		for _, field := range typed.Fields.List {
			typeString := exprString(fset, field.Type)
			if len(field.Names) == 0 {
				decl.Fields = append(decl.Fields, aggregate.Field{Type: typeString})
				continue
			}
			for _, name := range field.Names {
				decl.Fields = append(decl.Fields, aggregate.Field{Name: name.Name, Type: typeString})
			}
		}
	case *ast.ArrayType:
		decl.Shape = aggregate.ShapeTuple
		if typed.Len == nil {
			decl.Shape = aggregate.ShapeOther
		}
	case *ast.InterfaceType:
		decl.Shape = aggregate.ShapeSum
		if hasUnionTerms(typed) {
			decl.Shape = aggregate.ShapeUnion
		}
	default:
		decl.Shape = aggregate.ShapeOther
	}
	return decl
}

func hasUnionTerms(iface *ast.InterfaceType) bool {
	if iface.Methods == nil {
		return false
	}
	for _, elem := range iface.Methods.List {
		if len(elem.Names) > 0 {
			continue
		}
		switch elem.Type.(type) {
		case *ast.BinaryExpr, *ast.UnaryExpr:
			// A | B, ~T
			return true
		}
	}
	return false
}

func parseImports(file *ast.File) []aggregate.Import {
	imports := make([]aggregate.Import, 0, len(file.Imports))
	for _, imp := range file.Imports {
		pathValue, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		entry := aggregate.Import{Path: pathValue}
		if imp.Name != nil {
			switch imp.Name.Name {
			case "_", ".":
				continue
			default:
				entry.Name = imp.Name.Name
			}
		}
		imports = append(imports, entry)
	}
	return imports
}

func exprString(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, fset, expr)
	return buf.String()
}

func formatPosition(pos token.Position, root string) string {
	rel, err := filepath.Rel(root, pos.Filename)
	if err != nil {
		rel = pos.Filename
	}
	return fmt.Sprintf("%s:%d", filepath.ToSlash(rel), pos.Line)
}
