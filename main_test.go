package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/refaktor/bridgegen/config"
)

func writeDescription(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

const counterTOML = `
output = "gen"

[module]
name = "counter"

[[module.type]]
name = "Counter"
side = "native"

[[module.function]]
name = "add"
side = "native"
type = "Counter"
receiver = "mut"

[[module.function.param]]
name = "n"
type = "u64"
`

const listenerYAML = `
module:
  name: listener
  type:
    - {name: Listener, side: foreign}
  function:
    - {name: notify, side: foreign, type: Listener, receiver: borrowed}
`

func TestRun(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	files := []string{
		writeDescription(t, dir, "counter.toml", counterTOML),
		writeDescription(t, dir, "listener.yaml", listenerYAML),
	}
	// Left over from an earlier run which exported functions.
	require.NoError(os.WriteFile(filepath.Join(dir, "listener_bridge.c"), []byte("stale"), 0666))

	var log bytes.Buffer
	results, err := run(context.Background(), newLogger(&log, false, false), options{}, files)
	require.NoError(err)
	require.Len(results, 2)
	require.Equal("counter", results[0].out.Module)
	require.Equal(filepath.Join(dir, "gen"), results[0].dir)
	require.Equal("listener", results[1].out.Module)

	goCode, err := os.ReadFile(filepath.Join(dir, "gen", "counter_bridge.go"))
	require.NoError(err)
	require.Contains(string(goCode), "package counter\n")
	require.Contains(string(goCode), "//export __bridge__Counter_add\n")
	require.FileExists(filepath.Join(dir, "gen", "counter_bridge.c"))

	goCode, err = os.ReadFile(filepath.Join(dir, "listener_bridge.go"))
	require.NoError(err)
	require.Contains(string(goCode), "func (this *Listener) Notify() {")
	require.NoFileExists(filepath.Join(dir, "listener_bridge.c"))

	require.Equal(2, strings.Count(log.String(), "generated bridge"))
}

func TestRunOverrides(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	file := writeDescription(t, dir, "counter.toml", counterTOML)

	_, err := run(context.Background(), zap.NewNop(), options{outDir: outDir, prefix: "__swift_bridge__"}, []string{file})
	require.NoError(err)

	c, err := os.ReadFile(filepath.Join(outDir, "counter_bridge.c"))
	require.NoError(err)
	require.Contains(string(c), `BRIDGE_LINK_NAME("__swift_bridge__$Counter$add")`)
	require.NoDirExists(filepath.Join(dir, "gen"))
}

func TestRunDuplicateOutput(t *testing.T) {
	dir := t.TempDir()
	a := writeDescription(t, dir, "a.toml", counterTOML)
	b := writeDescription(t, dir, "b.toml", counterTOML)

	_, err := run(context.Background(), zap.NewNop(), options{}, []string{a, b})
	require.ErrorContains(t, err, "both generate")
}

func TestRunInvalidDescription(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	file := writeDescription(t, dir, "bad.toml", `
[module]
name = "bad"

[[module.function]]
name = "f"
side = "nowhere"
receiver = "owned"
`)

	_, err := run(context.Background(), zap.NewNop(), options{}, []string{file})
	require.Error(err)
	var cErr *config.Error
	require.True(errors.As(err, &cErr))

	var out bytes.Buffer
	reportError(&out, err)
	require.True(strings.HasPrefix(out.String(), "ERROR:\n  Error in file "))
	require.Contains(out.String(), `invalid side "nowhere"`)
	require.Contains(out.String(), `receiver "owned" requires a type`)
	require.NoFileExists(filepath.Join(dir, "bad_bridge.go"))
}

func TestReportErrorSingleLine(t *testing.T) {
	var out bytes.Buffer
	reportError(&out, errors.New("something failed"))
	require.Equal(t, "ERROR: something failed\n", out.String())
}

func TestPrintSymbols(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	files := []string{
		writeDescription(t, dir, "counter.toml", counterTOML),
		writeDescription(t, dir, "listener.yaml", listenerYAML),
	}
	results, err := run(context.Background(), zap.NewNop(), options{}, files)
	require.NoError(err)

	var out bytes.Buffer
	printSymbols(&out, results)
	table := out.String()
	for _, want := range []string{
		"Implemented by",
		"__bridge__$Counter$add",
		"__bridge__$Counter$_free",
		"__bridge__$Listener$notify",
		"__bridge__Listener_notify",
	} {
		require.Contains(table, want)
	}
	require.Less(strings.Index(table, "__bridge__$Counter$add"), strings.Index(table, "__bridge__$Listener$notify"))
}

func TestNewLogger(t *testing.T) {
	require := require.New(t)

	var out bytes.Buffer
	logger := newLogger(&out, false, false)
	logger.Debug("hidden")
	logger.Info("shown", zap.String("module", "foo"))
	require.NotContains(out.String(), "hidden")
	require.Contains(out.String(), "INFO\tshown\t{\"module\": \"foo\"}")

	out.Reset()
	logger = newLogger(&out, true, false)
	logger.Debug("details")
	require.Contains(out.String(), "DEBUG")
	require.Contains(out.String(), "details")
}
