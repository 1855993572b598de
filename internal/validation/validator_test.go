package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyColumns(t *testing.T) {
	tests := []struct {
		input    string
		expected []int
		wantErr  bool
	}{
		{"1", []int{0}, false},
		{"1,3", []int{0, 2}, false},
		{"3, 2", []int{2, 1}, false},
		{"", nil, true},
		{"0", nil, true},
		{"-2", nil, true},
		{"1,a", nil, true},
		{"1,,2", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cols, err := validation.ParseKeyColumns(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cols)
		})
	}
}

func TestKeySpecValidator(t *testing.T) {
	assert.NoError(t, validation.NewKeySpecValidator([]int{0, 2}, errors.SideLeft, "join").Validate())

	err := validation.NewKeySpecValidator(nil, errors.SideRight, "join").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key columns given for the right table")

	err = validation.NewKeySpecValidator([]int{1, 1}, errors.SideLeft, "join").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key column 2 repeated")

	err = validation.NewKeySpecValidator([]int{-1}, errors.SideLeft, "join").Validate()
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestValidateKeySpecs(t *testing.T) {
	assert.NoError(t, validation.ValidateKeySpecs([]int{0, 1}, []int{2, 0}, "join"))

	err := validation.ValidateKeySpecs([]int{0}, []int{0, 1}, "join")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left has 1, right has 2")
}

func TestInputFileValidator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "left.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o600))

	assert.NoError(t, validation.NewInputFileValidator(path, errors.SideLeft, "join").Validate())

	err := validation.NewInputFileValidator(filepath.Join(dir, "missing.tsv"), errors.SideRight, "join").Validate()
	assert.ErrorIs(t, err, errors.ErrIO)

	err = validation.NewInputFileValidator(dir, errors.SideLeft, "join").Validate()
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
