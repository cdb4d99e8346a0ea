package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// go generate reports the failing directive when the tool exits non-zero.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "checkedbuilder: "+format+"\n", args...)
	os.Exit(1)
}
