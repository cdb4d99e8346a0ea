package checkedbuilder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/checkedbuilder/internal/aggregate"
	"github.com/louisbranch/checkedbuilder/internal/aggregate/declfile"
	"github.com/louisbranch/checkedbuilder/internal/aggregate/goload"
	"github.com/louisbranch/checkedbuilder/internal/checked"
	"github.com/louisbranch/checkedbuilder/internal/gogen"
	apperrors "github.com/louisbranch/checkedbuilder/internal/platform/errors"
	"github.com/louisbranch/checkedbuilder/internal/platform/logging"
)

const tracerName = "github.com/louisbranch/checkedbuilder/internal/tools/checkedbuilder"

// stdoutPath selects standard output for -output and -describe.
const stdoutPath = "-"

// Run loads the configured aggregates, generates their builders and writes
// the result. Nothing is written unless every aggregate generates cleanly.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogMode, errOut)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := load(cfg)
	if err != nil {
		return err
	}
	logger.Debug("loaded aggregates",
		"origin", source.Origin,
		"package", source.Package,
		"aggregates", len(source.Aggregates),
	)

	tracer := otel.Tracer(tracerName)
	lattices := make([]*checked.Lattice, 0, len(source.Aggregates))
	for _, agg := range source.Aggregates {
		aggLogger := logger.With("aggregate", agg.Name)
		lattice, err := generate(ctx, tracer, agg)
		if err != nil {
			aggLogger.Error("generate failed", "code", string(apperrors.CodeOf(err)), "error", err)
			return fmt.Errorf("generate %s: %w", agg.Name, err)
		}
		aggLogger.Debug("generated lattice",
			"fields", len(agg.Fields),
			"forwards", len(lattice.Forwards()),
		)
		lattices = append(lattices, lattice)
	}

	code, err := gogen.Render(gogen.File{
		Package:  source.Package,
		Source:   headerSource(source),
		Imports:  source.Imports,
		Lattices: lattices,
		Declare:  source.Declare,
		Reserved: source.Declared,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	var manifest []byte
	if cfg.Describe != "" {
		manifest, err = describe(source, lattices)
		if err != nil {
			return fmt.Errorf("describe: %w", err)
		}
	}

	outputPath := resolveOutput(cfg, source)
	outputs := []output{{path: outputPath, content: code}}
	if cfg.Describe != "" {
		// the builder is renamed into place last
		outputs = append([]output{{path: cfg.Describe, content: manifest}}, outputs...)
	}
	if err := writeOutputs(outputs, out); err != nil {
		return err
	}
	logger.Info("wrote builder", "path", outputPath, "aggregates", len(lattices))
	if cfg.Describe != "" {
		logger.Info("wrote manifest", "path", cfg.Describe)
	}
	return nil
}

func load(cfg Config) (aggregate.Source, error) {
	if cfg.Decl != "" {
		source, err := declfile.Load(cfg.Decl)
		if err != nil {
			return aggregate.Source{}, fmt.Errorf("load %s: %w", cfg.Decl, err)
		}
		return source, nil
	}
	source, err := goload.LoadDir(cfg.Dir, cfg.Types...)
	if err != nil {
		return aggregate.Source{}, fmt.Errorf("load %s: %w", cfg.Dir, err)
	}
	return source, nil
}

func generate(ctx context.Context, tracer trace.Tracer, agg aggregate.Aggregate) (*checked.Lattice, error) {
	_, span := tracer.Start(ctx, "checkedbuilder.generate",
		trace.WithAttributes(
			attribute.String("aggregate", agg.Name),
			attribute.Int("fields", len(agg.Fields)),
		),
	)
	defer span.End()

	lattice, err := checked.Generate(agg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("forwards", len(lattice.Forwards())))
	return lattice, nil
}

func headerSource(source aggregate.Source) string {
	if source.Origin == aggregate.OriginGo {
		return "package " + source.Package
	}
	return filepath.Base(source.File)
}

// resolveOutput picks the output path: the explicit -output, or
// <name><suffix> next to the input, where name is the declaration file's
// base name or the first type in snake case.
func resolveOutput(cfg Config, source aggregate.Source) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	suffix := cfg.OutputSuffix
	if suffix == "" {
		suffix = "_builder.go"
	}
	if cfg.Decl != "" {
		base := strings.TrimSuffix(filepath.Base(cfg.Decl), filepath.Ext(cfg.Decl))
		return filepath.Join(filepath.Dir(cfg.Decl), base+suffix)
	}
	return filepath.Join(cfg.Dir, snakeCase(source.Aggregates[0].Name)+suffix)
}

func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || (nextLower && runes[i-1] != '_') {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// output is one file Run produces.
type output struct {
	path    string
	content []byte
}

type stagedOutput struct {
	temp string
	path string
}

// writeOutputs stages every file output next to its destination before
// renaming any of them into place, so a failure while staging leaves no
// output behind. Outputs addressed to stdout are written after the files.
func writeOutputs(outputs []output, out io.Writer) error {
	var staged []stagedOutput
	defer func() {
		for _, s := range staged {
			_ = os.Remove(s.temp)
		}
	}()
	for _, o := range outputs {
		if o.path == stdoutPath {
			continue
		}
		temp, err := stage(o)
		if err != nil {
			return err
		}
		staged = append(staged, stagedOutput{temp: temp, path: o.path})
	}
	for _, s := range staged {
		if err := os.Rename(s.temp, s.path); err != nil {
			return apperrors.Wrap(apperrors.CodeOutputWrite, "rename output", err).With("path", s.path)
		}
	}
	for _, o := range outputs {
		if o.path != stdoutPath {
			continue
		}
		if out == nil {
			return errors.New("stdout writer is required")
		}
		if _, err := out.Write(o.content); err != nil {
			return apperrors.Wrap(apperrors.CodeOutputWrite, "write stdout", err)
		}
	}
	return nil
}

// stage writes o to a temporary file in its destination directory and
// returns the temporary path.
func stage(o output) (string, error) {
	fail := func(message string, err error) (string, error) {
		return "", apperrors.Wrap(apperrors.CodeOutputWrite, message, err).With("path", o.path)
	}
	if info, err := os.Stat(o.path); err == nil && info.IsDir() {
		return fail("output path is a directory", fs.ErrExist)
	}
	dir := filepath.Dir(o.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail("create output dir", err)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(o.path)+".*")
	if err != nil {
		return fail("create temporary output", err)
	}
	temp := file.Name()
	if _, err := file.Write(o.content); err != nil {
		_ = file.Close()
		_ = os.Remove(temp)
		return fail("write temporary output", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(temp)
		return fail("close temporary output", err)
	}
	if err := os.Chmod(temp, 0o644); err != nil {
		_ = os.Remove(temp)
		return fail("chmod temporary output", err)
	}
	return temp, nil
}
