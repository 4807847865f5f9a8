package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
)

// FieldError describes one invalid environment variable.
type FieldError struct {
	// Name is the environment variable name, empty for errors that cannot
	// be pinned to a single variable.
	Name   string
	Reason string
}

// ValidationError aggregates every schema violation found in one pass, so an
// operator can fix all of them at once instead of iterating variable by
// variable. Configuration errors are never recovered from.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(name, reason string) {
	e.Fields = append(e.Fields, FieldError{Name: name, Reason: reason})
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration:")
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		if f.Name != "" {
			b.WriteString(f.Name)
			b.WriteString(": ")
		}
		b.WriteString(f.Reason)
	}
	return b.String()
}

// collectParseErrors folds the coercion failures reported by env.Parse into
// verr, one entry per variable.
func collectParseErrors(verr *ValidationError, err error) {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		verr.add("", err.Error())
		return
	}
	for _, e := range agg.Errors {
		var pe env.ParseError
		if errors.As(e, &pe) {
			verr.add(envVarName(pe.Name), pe.Err.Error())
			continue
		}
		verr.add("", e.Error())
	}
}

// envVarName maps a settings struct field name back to the environment
// variable it is bound to.
func envVarName(field string) string {
	sf, ok := reflect.TypeOf(settings{}).FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(sf.Tag.Get("env"), ",")
	if name == "" {
		return field
	}
	return name
}
