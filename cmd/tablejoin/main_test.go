package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/tablejoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func fixtures(t *testing.T) (dir, left, right string) {
	t.Helper()
	dir = t.TempDir()
	left = testutil.WriteTable(t, dir, "left.tsv", "A\t1\nB\t2\n")
	right = testutil.WriteTable(t, dir, "right.tsv", "B\tx\nA\ty\n")
	return dir, left, right
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "tablejoin")
	assert.Contains(t, stdout, "Go Version:")
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "a.tsv", "tsv", "1")
	assert.Equal(t, usageExitCode, code)
	assert.Contains(t, stderr, "expected 6 arguments, got 3")
	assert.Contains(t, stderr, "Usage: tablejoin")

	code, _, _ = runCLI(t, "-h")
	assert.Equal(t, 0, code)
}

func TestRun_InnerJoin(t *testing.T) {
	dir, left, right := fixtures(t)
	out := filepath.Join(dir, "out.tsv")

	// flags may follow the positional arguments
	code, stdout, _ := runCLI(t, left, "tsv", "1", right, "t", "1", "-o", out)
	require.Equal(t, 0, code)

	assert.Equal(t, "A\t1\ty\nB\t2\tx\n", testutil.ReadFile(t, out))
	assert.Contains(t, stdout, "JOIN METRICS:")
	assert.Contains(t, stdout, "Lines (O): 2")
}

func TestRun_DefaultOutputPath(t *testing.T) {
	dir, left, right := fixtures(t)

	code, _, _ := runCLI(t, "-j", "xor", left, "tsv", "1", right, "tsv", "1")
	require.Equal(t, 0, code)

	assert.Empty(t, testutil.ReadFile(t, filepath.Join(dir, "left__XOR__right.tsv")))
}

func TestRun_Flags(t *testing.T) {
	dir := t.TempDir()
	left := testutil.WriteTable(t, dir, "l.csv", "id,v\n2,b\n10,a\n")
	right := testutil.WriteTable(t, dir, "r.csv", "id,w\n10,x\n")
	out := filepath.Join(dir, "out.csv")

	code, _, _ := runCLI(t, "-H", "-j", "L", "-s", "reverse", "-o", out,
		left, "csv", "1", right, "csv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "id,v,w\n10,a,x\n2,b,\n", testutil.ReadFile(t, out))

	// -i=no compares keys as strings, so "10" sorts before "2"
	code, _, _ = runCLI(t, "-H", "-i=no", "-j", "left", "-o", out,
		left, "csv", "1", right, "csv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "id,v,w\n10,a,x\n2,b,\n", testutil.ReadFile(t, out))

	code, _, _ = runCLI(t, "-H=y", "-j", "left", "-o", out,
		left, "csv", "1", right, "csv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "id,v,w\n2,b,\n10,a,x\n", testutil.ReadFile(t, out))
}

func TestRun_BoolFlagSeparateValue(t *testing.T) {
	dir := t.TempDir()
	left := testutil.WriteTable(t, dir, "l.csv", "id,v\n2,b\n10,a\n")
	right := testutil.WriteTable(t, dir, "r.csv", "id,w\n10,x\n")
	out := filepath.Join(dir, "out.csv")

	code, _, _ := runCLI(t, "-H", "yes", "-i", "no", "-j", "left", "-o", out,
		left, "csv", "1", right, "csv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "id,v,w\n10,a,x\n2,b,\n", testutil.ReadFile(t, out))
}

func TestJoinBoolValues(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"separate answer", []string{"-H", "Y", "a"}, []string{"-H=Y", "a"}},
		{"double dash", []string{"--i", "false"}, []string{"--i=false"}},
		{"bare flag before positional", []string{"-H", "left.tsv"}, []string{"-H", "left.tsv"}},
		{"other flags untouched", []string{"-j", "no"}, []string{"-j", "no"}},
		{"after terminator", []string{"--", "-H", "y"}, []string{"--", "-H", "y"}},
		{"trailing flag", []string{"a", "-i"}, []string{"a", "-i"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, joinBoolValues(tt.args, "H", "i"))
		})
	}
}

func TestRun_InvalidFlagValue(t *testing.T) {
	_, left, right := fixtures(t)

	code, _, stderr := runCLI(t, "-j", "sideways", left, "tsv", "1", right, "tsv", "1")
	assert.Equal(t, usageExitCode, code)
	assert.Contains(t, stderr, "invalid join type")

	code, _, _ = runCLI(t, "-H=maybe", left, "tsv", "1", right, "tsv", "1")
	assert.Equal(t, usageExitCode, code)
}

func TestRun_NonUniqueKey(t *testing.T) {
	dir := t.TempDir()
	left := testutil.WriteTable(t, dir, "l.tsv", "A\t1\n")
	right := testutil.WriteTable(t, dir, "r.tsv", "A\tx\nA\ty\n")
	out := filepath.Join(dir, "out.tsv")

	code, stdout, stderr := runCLI(t, "-o", out, left, "tsv", "1", right, "tsv", "1")
	assert.Equal(t, 4, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "join failed")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	dir, left, right := fixtures(t)
	out := filepath.Join(dir, "out.tsv")
	cfg := testutil.WriteTable(t, dir, "tablejoin.yaml",
		"join_type: outer\nprint_metrics: false\nprint_progress: false\n")

	code, stdout, stderr := runCLI(t, "-config", cfg, "-o", out, left, "tsv", "1", right, "tsv", "1")
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	// environment overrides the file and flags override both
	t.Setenv("TABLEJOIN_SORT", "reverse")
	code, _, _ = runCLI(t, "-config", cfg, "-o", out, left, "tsv", "1", right, "tsv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "B\t2\tx\nA\t1\ty\n", testutil.ReadFile(t, out))

	code, _, _ = runCLI(t, "-config", cfg, "-s", "no", "-o", out, left, "tsv", "1", right, "tsv", "1")
	require.Equal(t, 0, code)
	assert.Equal(t, "A\t1\ty\nB\t2\tx\n", testutil.ReadFile(t, out))
}

func TestRun_PhaseTimings(t *testing.T) {
	dir, left, right := fixtures(t)
	t.Setenv("TABLEJOIN_METRICS_COLLECTION", "y")

	code, _, stderr := runCLI(t, "-o", filepath.Join(dir, "out.tsv"), left, "tsv", "1", right, "tsv", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stderr, "phase timings")
	assert.Contains(t, stderr, "operations=3")
}

func TestRun_WritePrevent(t *testing.T) {
	dir, left, right := fixtures(t)
	out := testutil.WriteTable(t, dir, "out.tsv", "keep\n")
	t.Setenv("TABLEJOIN_WRITE_PREVENT", "yes")

	code, _, _ := runCLI(t, "-o", out, left, "tsv", "1", right, "tsv", "1")
	assert.Equal(t, 5, code)
	assert.Equal(t, "keep\n", testutil.ReadFile(t, out))
}
