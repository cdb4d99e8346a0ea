// Command checkedbuilder generates compile-time checked builders for Go
// structs, typically from a go:generate directive:
//
//	//go:generate go run github.com/louisbranch/checkedbuilder/cmd/checkedbuilder -type=Config
//
// Each field is tracked by a type parameter of the generated builder, so
// reading an unset field or building an incomplete value fails to compile.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	checkedbuildercmd "github.com/louisbranch/checkedbuilder/internal/cmd/checkedbuilder"
	"github.com/louisbranch/checkedbuilder/internal/platform/config"
)

func main() {
	cfg, err := checkedbuildercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := checkedbuildercmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("generate: %v", err)
	}
}
