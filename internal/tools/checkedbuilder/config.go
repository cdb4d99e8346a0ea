// Package checkedbuilder loads aggregates, generates their checked builders
// and writes the rendered Go source.
package checkedbuilder

import "errors"

// Config holds generator settings.
type Config struct {
	Types        []string
	Dir          string
	Decl         string
	Output       string
	Describe     string
	LogMode      string
	OutputSuffix string
}

// Validate rejects configurations that select no input, or both inputs.
func (c Config) Validate() error {
	switch {
	case len(c.Types) == 0 && c.Decl == "":
		return errors.New("one of -type or -decl is required")
	case len(c.Types) > 0 && c.Decl != "":
		return errors.New("-type cannot be combined with -decl")
	case c.Describe != "" && c.Describe == c.Output:
		return errors.New("-describe must differ from -output")
	}
	return nil
}
