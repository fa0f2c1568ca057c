// Package validation provides reusable input checks for table operations.
// Validators report failures as *errors.ComputeError so callers can classify
// them with errors.Is.
package validation

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/paveg/columnar/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ValidatorFunc adapts a function to the Validator interface. It lets a
// check that depends on earlier checks run only after they pass.
type ValidatorFunc func() error

// Validate calls f.
func (f ValidatorFunc) Validate() error { return f() }

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	table   ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(table ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		table:   table,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the table
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.table.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// UniqueNamesValidator rejects repeated column names
type UniqueNamesValidator struct {
	names []string
	op    string
}

// NewUniqueNamesValidator creates a validator for a list of column names
func NewUniqueNamesValidator(op string, names ...string) *UniqueNamesValidator {
	return &UniqueNamesValidator{names: names, op: op}
}

// Validate checks that no name appears twice
func (v *UniqueNamesValidator) Validate() error {
	seen := make(map[string]struct{}, len(v.names))
	for _, name := range v.names {
		if _, ok := seen[name]; ok {
			return errors.NewInvalidInputError(v.op, fmt.Sprintf("duplicate column name '%s'", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}

// LengthValidator validates array length consistency
type LengthValidator struct {
	expected int
	actual   int
	op       string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.NewLengthMismatchError(v.op, v.expected, v.actual)
	}
	return nil
}

// TypeValidator validates that a data type is accepted by an operation
type TypeValidator struct {
	dataType  arrow.DataType
	supported func(arrow.DataType) bool
	op        string
}

// NewTypeValidator creates a validator that accepts dt when supported
// returns true
func NewTypeValidator(dt arrow.DataType, op string, supported func(arrow.DataType) bool) *TypeValidator {
	return &TypeValidator{
		dataType:  dt,
		supported: supported,
		op:        op,
	}
}

// Validate checks if the data type is supported
func (v *TypeValidator) Validate() error {
	if !v.supported(v.dataType) {
		return errors.NewNotYetImplementedError(v.op, v.dataType)
	}
	return nil
}

// EmptyTableValidator validates operations that need at least one column
type EmptyTableValidator struct {
	table ColumnProvider
	op    string
}

// NewEmptyTableValidator creates a validator for empty table checks
func NewEmptyTableValidator(table ColumnProvider, op string) *EmptyTableValidator {
	return &EmptyTableValidator{
		table: table,
		op:    op,
	}
}

// Validate checks if the table has columns
func (v *EmptyTableValidator) Validate() error {
	if v.table.Width() == 0 {
		return errors.NewInvalidInputError(v.op, "operation not supported on a table without columns")
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(table ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(table, op, columns...).Validate()
}

// ValidateUniqueNames is a convenience function for duplicate name checks
func ValidateUniqueNames(op string, names ...string) error {
	return NewUniqueNamesValidator(op, names...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op string) error {
	return NewLengthValidator(expected, actual, op).Validate()
}

// ValidateType is a convenience function for type validation
func ValidateType(dt arrow.DataType, op string, supported func(arrow.DataType) bool) error {
	return NewTypeValidator(dt, op, supported).Validate()
}
