package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunEmitsIRByDefault(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "t.ash", `function int main() { return 0; }`)
	out := filepath.Join(dir, "t.ll")

	extraInputs = nil
	outputType = "ir"
	require.NoError(t, run(in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "define")
}

func TestRunRejectsUnknownOutputType(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "t.ash", `function int main() { return 0; }`)
	out := filepath.Join(dir, "t.ll")

	extraInputs = nil
	outputType = "bogus"
	err := run(in, out)
	assert.Error(t, err)
}

func TestRunPropagatesTypeError(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "t.ash", `function int f() { return true; }`)
	out := filepath.Join(dir, "t.ll")

	extraInputs = nil
	outputType = "ir"
	err := run(in, out)
	assert.Error(t, err)
}

func TestRunAcceptsExtraInputs(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "a.ash", `module a; function int helper() { return 1; }`)
	_ = writeTemp(t, dir, "b.ash", `using a; function int main() { return helper(); }`)
	out := filepath.Join(dir, "a.ll")

	extraInputs = []string{filepath.Join(dir, "b.ash")}
	outputType = "ir"
	require.NoError(t, run(in, out))
}

func TestRootCommandRequiresTwoArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"only-one-arg"})
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stdout)
	assert.Error(t, cmd.Execute())
}
