// Package validation checks join requests before any table is read: key
// column lists, their arity, and input paths.
package validation

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paveg/tablejoin/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// KeySpecValidator validates one side's key column list
type KeySpecValidator struct {
	columns []int
	side    errors.Side
	op      string
}

// NewKeySpecValidator creates a validator for 0-based key column indices
func NewKeySpecValidator(columns []int, side errors.Side, op string) *KeySpecValidator {
	return &KeySpecValidator{
		columns: columns,
		side:    side,
		op:      op,
	}
}

// Validate checks the list is non-empty with distinct, non-negative indices
func (v *KeySpecValidator) Validate() error {
	if len(v.columns) == 0 {
		return errors.NewInvalidInputError(v.op, fmt.Sprintf("no key columns given for the %s table", v.side))
	}

	seen := make(map[int]struct{}, len(v.columns))
	for _, col := range v.columns {
		if col < 0 {
			return errors.NewInvalidInputError(v.op, fmt.Sprintf("invalid key column %d for the %s table", col+1, v.side))
		}
		if _, dup := seen[col]; dup {
			return errors.NewInvalidInputError(v.op, fmt.Sprintf("key column %d repeated for the %s table", col+1, v.side))
		}
		seen[col] = struct{}{}
	}
	return nil
}

// ArityValidator validates that both sides name the same number of key columns
type ArityValidator struct {
	left  int
	right int
	op    string
}

// NewArityValidator creates a validator for key arity consistency
func NewArityValidator(left, right int, op string) *ArityValidator {
	return &ArityValidator{
		left:  left,
		right: right,
		op:    op,
	}
}

// Validate checks if arities match
func (v *ArityValidator) Validate() error {
	if v.left != v.right {
		message := fmt.Sprintf("key column counts differ: left has %d, right has %d", v.left, v.right)
		return errors.NewInvalidInputError(v.op, message)
	}
	return nil
}

// InputFileValidator validates that a path names a readable regular file
type InputFileValidator struct {
	path string
	side errors.Side
	op   string
}

// NewInputFileValidator creates a validator for an input table path
func NewInputFileValidator(path string, side errors.Side, op string) *InputFileValidator {
	return &InputFileValidator{
		path: path,
		side: side,
		op:   op,
	}
}

// Validate checks the file exists and is not a directory
func (v *InputFileValidator) Validate() error {
	info, err := os.Stat(v.path)
	if err != nil {
		return errors.NewIOError(v.op, v.side, err)
	}
	if info.IsDir() {
		return errors.NewInvalidInputError(v.op, fmt.Sprintf("%s input %s is a directory", v.side, v.path))
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

// ValidateKeySpecs checks both key column lists and their arity.
func ValidateKeySpecs(left, right []int, op string) error {
	return NewCompoundValidator(
		NewKeySpecValidator(left, errors.SideLeft, op),
		NewKeySpecValidator(right, errors.SideRight, op),
		NewArityValidator(len(left), len(right), op),
	).Validate()
}

// ParseKeyColumns parses a comma separated list of 1-based column numbers
// into 0-based indices: "1,3" gives [0 2].
func ParseKeyColumns(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.NewInvalidInputError("parse key columns", "empty key column list")
	}

	parts := strings.Split(s, ",")
	columns := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, errors.NewInvalidInputError("parse key columns",
				fmt.Sprintf("invalid column specified: %q (columns are numbered from 1)", part))
		}
		columns = append(columns, n-1)
	}
	return columns, nil
}
