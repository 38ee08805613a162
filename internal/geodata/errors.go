package geodata

import "fmt"

// IOError indicates the input could not be read or the output could not be written
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ParseError indicates the input is not well-formed JSON for a feature collection
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError indicates the root type discriminator is not FeatureCollection
type SchemaError struct {
	Source string
	Got    string
}

func (e *SchemaError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("%s: missing root type, want %q", e.Source, TypeFeatureCollection)
	}
	return fmt.Sprintf("%s: root type is %q, want %q", e.Source, e.Got, TypeFeatureCollection)
}
