package gogen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	"github.com/louisbranch/checkedbuilder/internal/checked"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
)

const configSource = `package config

type Config struct {
	EnableLogging string
	EnableTracing bool
	Host          string
	Port          uint16
}
`

func configLattice(t *testing.T) *checked.Lattice {
	t.Helper()
	l, err := checked.Generate(aggregate.Aggregate{
		Name: "Config",
		Fields: []aggregate.Field{
			{Name: "EnableLogging", Type: "string"},
			{Name: "EnableTracing", Type: "bool"},
			{Name: "Host", Type: "string"},
			{Name: "Port", Type: "uint16"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return l
}

func renderConfig(t *testing.T) []byte {
	t.Helper()
	out, err := Render(File{
		Package:  "config",
		Source:   "config.go",
		Lattices: []*checked.Lattice{configLattice(t)},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

// typeCheck parses and type-checks the files as one package, returning the
// first type error.
func typeCheck(t *testing.T, sources map[string]string) error {
	t.Helper()
	fset := token.NewFileSet()
	var files []*ast.File
	for name, src := range sources {
		file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		files = append(files, file)
	}
	conf := types.Config{}
	_, err := conf.Check("example.com/config", fset, files, nil)
	return err
}

func TestRenderHeaderAndFormatting(t *testing.T) {
	out := renderConfig(t)
	if !bytes.HasPrefix(out, []byte("// Code generated by checkedbuilder from config.go. DO NOT EDIT.\n")) {
		t.Fatalf("unexpected header:\n%s", out)
	}
	formatted, err := format.Source(out)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if !bytes.Equal(formatted, out) {
		t.Fatal("rendered source is not gofmt-clean")
	}
}

func TestRenderDeclaresEveryCapability(t *testing.T) {
	out := renderConfig(t)
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "config_builder.go", out, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	declared := make(map[string]bool)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				declared[spec.(*ast.TypeSpec).Name.Name] = true
			}
		case *ast.FuncDecl:
			if d.Recv == nil {
				declared[d.Name.Name] = true
			}
		}
	}
	want := []string{
		"ConfigBuilder",
		"ConfigBuilderSet",
		"ConfigBuilderUnset",
		"ConfigBuilderFlag",
		"ConfigBuilderState",
		"ConfigBuilderInitialState",
		"NewConfigBuilder",
		"BuildConfig",
	}
	for _, field := range []string{"EnableLogging", "EnableTracing", "Host", "Port"} {
		want = append(want,
			"ConfigBuilder"+field+"State",
			"ConfigBuilder"+field+"Setter",
			"ConfigBuilder"+field,
			"GetConfig"+field,
		)
	}
	for _, name := range want {
		if !declared[name] {
			t.Fatalf("missing declaration %s", name)
		}
	}
	if bytes.Contains(out, []byte("import")) {
		t.Fatalf("expected no imports:\n%s", out)
	}
}

func TestRenderTypeChecksWithConsumer(t *testing.T) {
	consumer := `package config

func fullChain() Config {
	return BuildConfig(NewConfigBuilder().
		EnableLogging("info").
		EnableTracing(false).
		Host("localhost").
		Port(8080))
}

func ListenOn[PortFlag ConfigBuilderFlag](b ConfigBuilder[ConfigBuilderSet, ConfigBuilderSet, ConfigBuilderSet, PortFlag], port uint16) Config {
	return BuildConfig(b.Port(port))
}

func address[EnableLoggingFlag, EnableTracingFlag, PortFlag ConfigBuilderFlag](b ConfigBuilderHost[EnableLoggingFlag, EnableTracingFlag, PortFlag]) string {
	return GetConfigHost(b)
}

func handOff() (string, Config) {
	partial := NewConfigBuilder().EnableLogging("info").EnableTracing(false).Host("localhost")
	return address(partial), ListenOn(partial, 8080)
}

func overwrite() ConfigBuilderPortState[ConfigBuilderUnset, ConfigBuilderUnset, ConfigBuilderUnset] {
	return NewConfigBuilder().Port(1).Port(2)
}

func anyOrder() Config {
	return BuildConfig(NewConfigBuilder().Port(1).Host("h").EnableTracing(true).EnableLogging("debug"))
}

var (
	_ ConfigBuilderState                                                                                   = NewConfigBuilder().Host("h")
	_ ConfigBuilderHostSetter[ConfigBuilderHostState[ConfigBuilderUnset, ConfigBuilderUnset, ConfigBuilderUnset]] = NewConfigBuilder()
)
`
	err := typeCheck(t, map[string]string{
		"config.go":         configSource,
		"config_builder.go": string(renderConfig(t)),
		"consumer.go":       consumer,
	})
	if err != nil {
		t.Fatalf("type check: %v", err)
	}
}

func TestRenderRejectsUncheckedUse(t *testing.T) {
	const listenOn = `
func ListenOn[PortFlag ConfigBuilderFlag](b ConfigBuilder[ConfigBuilderSet, ConfigBuilderSet, ConfigBuilderSet, PortFlag], port uint16) Config {
	return BuildConfig(b.Port(port))
}
`
	tests := []struct {
		name string
		body string
	}{
		{
			name: "build on an incomplete state",
			body: "func build() Config { return BuildConfig(NewConfigBuilder().Host(\"a\")) }\n",
		},
		{
			name: "hand-off without the bound's fields",
			body: listenOn + "func hand() Config { return ListenOn(NewConfigBuilder(), 8080) }\n",
		},
		{
			name: "hand-off missing one bound field",
			body: listenOn + "func hand() Config { return ListenOn(NewConfigBuilder().EnableLogging(\"info\").Host(\"h\"), 8080) }\n",
		},
		{
			name: "read an unset field",
			body: "func read() string { return GetConfigHost(NewConfigBuilder().Port(1)) }\n",
		},
		{
			name: "initial state as a getter",
			body: "var _ ConfigBuilderHost[ConfigBuilderUnset, ConfigBuilderUnset, ConfigBuilderUnset] = NewConfigBuilder()\n",
		},
		{
			name: "setter through the marker",
			body: "func set(b ConfigBuilderState) { b.Port(1) }\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typeCheck(t, map[string]string{
				"config.go":         configSource,
				"config_builder.go": string(renderConfig(t)),
				"consumer.go":       "package config\n" + tt.body,
			})
			if err == nil {
				t.Fatal("expected a type error")
			}
			if !strings.HasPrefix(err.Error(), "consumer.go:") {
				t.Fatalf("expected the error in the consumer, got %v", err)
			}
		})
	}
}

func TestRenderDeclaredAggregate(t *testing.T) {
	l, err := checked.Generate(aggregate.Aggregate{
		Name: "Server",
		Fields: []aggregate.Field{
			{Name: "listen_addr", Type: "string"},
			{Name: "read_timeout", Type: "time.Duration"},
			{Name: "tags", Type: "map[string]string"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out, err := Render(File{
		Package: "server",
		Source:  "server.hcl",
		Imports: []aggregate.Import{
			{Path: "time"},
			{Path: "net/http"},
			{Name: "yaml", Path: "gopkg.in/yaml.v3"},
		},
		Lattices: []*checked.Lattice{l},
		Declare:  true,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(out)
	if !strings.Contains(src, `"time"`) {
		t.Fatalf("expected time import:\n%s", src)
	}
	if strings.Contains(src, `"net/http"`) || strings.Contains(src, "yaml") {
		t.Fatalf("unused imports carried:\n%s", src)
	}
	for _, want := range []string{
		"type Server struct {",
		"ListenAddr  string",
		"ReadTimeout time.Duration",
		"type ServerBuilder[ListenAddrFlag, ReadTimeoutFlag, TagsFlag ServerBuilderFlag] struct {",
		"func NewServerBuilder() ServerBuilderInitialState",
		"ReadTimeout: b.readTimeoutValue,",
		"func BuildServer(b ServerBuilder[ServerBuilderSet, ServerBuilderSet, ServerBuilderSet]) Server {",
		"func GetServerReadTimeout[ListenAddrFlag, TagsFlag ServerBuilderFlag](b ServerBuilder[ListenAddrFlag, ServerBuilderSet, TagsFlag]) time.Duration {",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
}

func TestRenderUnexportedAggregate(t *testing.T) {
	l, err := checked.Generate(aggregate.Aggregate{
		Name:   "options",
		Fields: []aggregate.Field{{Name: "retries", Type: "int"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out, err := Render(File{Package: "opts", Lattices: []*checked.Lattice{l}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	src := string(out)
	for _, want := range []string{
		"func newOptionsBuilder() optionsBuilderInitialState",
		"type optionsBuilderRetriesState = optionsBuilder[optionsBuilderSet]",
		"func getOptionsRetries(b optionsBuilder[optionsBuilderSet]) int",
		"func buildOptions(b optionsBuilder[optionsBuilderSet]) options",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
	aggregateSrc := `package opts

type options struct{ retries int }

var built = buildOptions(newOptionsBuilder().Retries(1).Retries(3))

var retries = getOptionsRetries(newOptionsBuilder().Retries(2))
`
	if err := typeCheck(t, map[string]string{"opts.go": aggregateSrc, "opts_builder.go": src}); err != nil {
		t.Fatalf("type check: %v", err)
	}
}

func TestRenderRejectsTopLevelCollisions(t *testing.T) {
	first, err := checked.Generate(aggregate.Aggregate{
		Name:   "Config",
		Fields: []aggregate.Field{{Name: "host", Type: "string"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := checked.Generate(aggregate.Aggregate{
		Name:   "ConfigBuilderHost",
		Fields: []aggregate.Field{{Name: "port", Type: "int"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, err = Render(File{Package: "config", Lattices: []*checked.Lattice{first, second}, Declare: true})
	if apperrors.CodeOf(err) != apperrors.CodeNameCollision {
		t.Fatalf("expected name collision, got %v", err)
	}
}

func TestRenderRejectsMarkerCollisions(t *testing.T) {
	tests := []struct {
		name  string
		field aggregate.Field
	}{
		{name: "getter named like the set marker", field: aggregate.Field{Name: "set", Type: "bool"}},
		{name: "getter named like the flag constraint", field: aggregate.Field{Name: "flag", Type: "bool"}},
		{name: "type parameter shadows field type", field: aggregate.Field{Name: "level", Type: "[]LevelFlag"}},
		{name: "setter parameter shadows field type", field: aggregate.Field{Name: "after", Type: "func(Next) error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := checked.Generate(aggregate.Aggregate{Name: "Config", Fields: []aggregate.Field{tt.field}})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			_, err = Render(File{Package: "config", Lattices: []*checked.Lattice{l}})
			if apperrors.CodeOf(err) != apperrors.CodeNameCollision {
				t.Fatalf("expected name collision, got %v", err)
			}
		})
	}
}

func TestRenderRejectsReservedNames(t *testing.T) {
	reserved := []string{"Config", "ListenOn", "ConfigBuilderHost"}
	_, err := Render(File{
		Package:  "config",
		Lattices: []*checked.Lattice{configLattice(t)},
		Reserved: reserved,
	})
	if apperrors.CodeOf(err) != apperrors.CodeNameCollision {
		t.Fatalf("expected name collision, got %v", err)
	}
	var typed *apperrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if typed.Metadata["identifier"] != "ConfigBuilderHost" || typed.Metadata["first"] != "package config" {
		t.Fatalf("metadata = %v", typed.Metadata)
	}

	if _, err := Render(File{
		Package:  "config",
		Lattices: []*checked.Lattice{configLattice(t)},
		Reserved: reserved[:2],
	}); err != nil {
		t.Fatalf("unrelated package names should not collide: %v", err)
	}
}

func TestRenderRequiresPackageAndLattices(t *testing.T) {
	if _, err := Render(File{Lattices: []*checked.Lattice{configLattice(t)}}); err == nil {
		t.Fatal("expected error without package")
	}
	if _, err := Render(File{Package: "config"}); err == nil {
		t.Fatal("expected error without lattices")
	}
}

func TestTypeQualifiers(t *testing.T) {
	got := typeQualifiers("map[time.Duration][]*http.Request")
	if len(got) != 2 || got[0] != "time" || got[1] != "http" {
		t.Fatalf("qualifiers = %v", got)
	}
	if got := typeQualifiers("not a type ("); got != nil {
		t.Fatalf("expected nil for invalid expression, got %v", got)
	}
}

func TestTypeIdents(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{expr: "map[Key][]*time.Duration", want: []string{"Key"}},
		{expr: "func(value Next) error", want: []string{"Next", "error"}},
		{expr: "struct{ Next int }", want: []string{"int"}},
		{expr: "not a type (", want: nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, typeIdents(tt.expr)); diff != "" {
			t.Fatalf("typeIdents(%q) mismatch (-want +got):\n%s", tt.expr, diff)
		}
	}
}
