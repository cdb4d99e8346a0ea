package checked

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	markerSuffix  = "BuilderState"
	initialSuffix = "BuilderInitialState"
	builderInfix  = "Builder"
	stateSuffix   = "State"
	setterSuffix  = "Setter"
	getterPrefix  = "Get"
)

// MarkerName is the base "is a builder" capability: <Aggregate>BuilderState.
func MarkerName(aggregate string) string {
	return aggregate + markerSuffix
}

// InitialName is the zero-field root state: <Aggregate>BuilderInitialState.
func InitialName(aggregate string) string {
	return aggregate + initialSuffix
}

// StateName is the state descriptor for field: <Aggregate>Builder<Field>State.
func StateName(aggregate, field string) string {
	return aggregate + builderInfix + PascalCase(field) + stateSuffix
}

// SetterName is the setter capability for field: <Aggregate>Builder<Field>Setter.
func SetterName(aggregate, field string) string {
	return aggregate + builderInfix + PascalCase(field) + setterSuffix
}

// GetterName is the getter capability for field: <Aggregate>Builder<Field>.
func GetterName(aggregate, field string) string {
	return aggregate + builderInfix + PascalCase(field)
}

// SetterMethod is the operation a setter capability exposes.
func SetterMethod(field string) string {
	return PascalCase(field)
}

// GetterMethod is the accessor a getter capability exposes, the Go spelling
// of get_<field>.
func GetterMethod(field string) string {
	return getterPrefix + PascalCase(field)
}

// PascalCase converts snake_case or camelCase identifiers to PascalCase.
// Underscores separate words; the case of letters inside a word is kept, so
// "enable_logging", "enableLogging" and "EnableLogging" all map to
// "EnableLogging" and "HTTPPort" stays "HTTPPort".
func PascalCase(name string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, word := range strings.Split(name, "_") {
		if word == "" {
			continue
		}
		b.WriteString(caser.String(word))
	}
	return b.String()
}

// LowerFirst returns name with its first rune lowered, for unexported
// identifiers derived from exported ones.
func LowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
