package toga

import "fmt"

// ParseError represents a malformed value in a source table, with line context.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s at line %d: %s", e.File, e.Line, e.Message)
}

// SchemaError reports a required field that none of the candidate sources
// provide. Line is zero when the whole column is missing.
type SchemaError struct {
	File  string
	Field string
	Line  int
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schema error in %s at line %d: no value for required field %q", e.File, e.Line, e.Field)
	}
	return fmt.Sprintf("schema error in %s: required field %q not found in any source", e.File, e.Field)
}

// DuplicateKeyError reports a transcript identifier that appears more than
// once in the same source table.
type DuplicateKeyError struct {
	File      string
	Key       string
	FirstLine int
	Line      int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in %s at line %d (first seen at line %d)", e.Key, e.File, e.Line, e.FirstLine)
}
