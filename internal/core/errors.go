package core

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by the typed pipeline errors.
var (
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("empty file")
	ErrUnknownColumn       = errors.New("column not found")
	ErrColumnType          = errors.New("wrong column type")
	ErrUnknownChartKind    = errors.New("unknown chart kind")
	ErrInsufficientNumeric = errors.New("insufficient numeric columns")
	ErrNoChartRows         = errors.New("no rows to chart")
)

// LoadError reports a malformed or unsupported upload. No Dataset is
// produced and no later pipeline stage runs.
type LoadError struct {
	FileName string
	Err      error
}

func (e *LoadError) Error() string {
	if e.FileName == "" {
		return "load: " + e.Err.Error()
	}
	return fmt.Sprintf("load %s: %v", e.FileName, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a selection that references a column that is
// absent from the Dataset or has the wrong type for the requested step.
type ConfigurationError struct {
	Field  string // selection field, e.g. "sort.column"
	Column string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid selection %s=%q: %v", e.Field, e.Column, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func unknownColumn(field, column string) error {
	return &ConfigurationError{Field: field, Column: column, Err: ErrUnknownColumn}
}

func wrongType(field, column string, want ColumnType) error {
	return &ConfigurationError{
		Field:  field,
		Column: column,
		Err:    fmt.Errorf("%w: want %s column", ErrColumnType, want),
	}
}

// ChartError reports that the chosen chart cannot be drawn from the current
// View. It is recoverable: the caller shows a warning and keeps the session.
type ChartError struct {
	Kind ChartKind
	Err  error
}

func (e *ChartError) Error() string {
	return e.Err.Error()
}

func (e *ChartError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsChartError reports whether err is or wraps a *ChartError.
func IsChartError(err error) bool {
	var ce *ChartError
	return errors.As(err, &ce)
}
