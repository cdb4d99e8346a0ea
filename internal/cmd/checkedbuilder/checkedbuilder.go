// Package checkedbuilder parses generator command flags and runs the
// generator under telemetry.
package checkedbuilder

import (
	"context"
	"flag"
	"io"
	"strings"

	entrypoint "github.com/louisbranch/checkedbuilder/internal/platform/cmd"
	generator "github.com/louisbranch/checkedbuilder/internal/tools/checkedbuilder"
)

// Config holds generator command configuration. Env tags are relative to
// the CHECKEDBUILDER_ prefix.
type Config struct {
	Types        string
	Dir          string
	Decl         string
	Output       string
	Describe     string
	LogMode      string `env:"LOG_MODE" envDefault:"quiet"`
	OutputSuffix string `env:"OUTPUT_SUFFIX" envDefault:"_builder.go"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Dir: "."}
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Types, "type", cfg.Types, "Comma-separated struct type names to read from -dir")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "Go package directory holding the -type declarations")
	fs.StringVar(&cfg.Decl, "decl", cfg.Decl, "HCL or YAML declaration file, instead of -type")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "Output file; - writes to stdout (default: <name>_builder.go next to the input)")
	fs.StringVar(&cfg.Describe, "describe", cfg.Describe, "Optional YAML manifest of every generated identifier")
	fs.StringVar(&cfg.LogMode, "log-mode", cfg.LogMode, "Log mode: quiet, dev or prod")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.generator().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the configured builders.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCheckedBuilder, func(ctx context.Context) error {
		return generator.Run(ctx, cfg.generator(), out, errOut)
	})
}

func (c Config) generator() generator.Config {
	return generator.Config{
		Types:        splitList(c.Types),
		Dir:          c.Dir,
		Decl:         c.Decl,
		Output:       c.Output,
		Describe:     c.Describe,
		LogMode:      c.LogMode,
		OutputSuffix: c.OutputSuffix,
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
