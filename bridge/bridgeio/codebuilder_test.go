package bridgeio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeBuilderAppend(t *testing.T) {
	require := require.New(t)

	var cb CodeBuilder
	cb.Indent = 1
	cb.Append("a\n\nb")
	require.Equal("\ta\n\n\tb\n", cb.String())
}

func TestCodeBuilderBlock(t *testing.T) {
	var cb CodeBuilder
	cb.Block("if x {", "}", func() {
		cb.Linef("return %v", 1)
	})
	cb.Blank()
	require.Equal(t, "if x {\n\treturn 1\n}\n\n", cb.String())
	require.Equal(t, 0, cb.Indent)
}

func TestCodeBuilderFormatError(t *testing.T) {
	require := require.New(t)

	var cb CodeBuilder
	cb.Linef("package foo")
	cb.Linef("func {")
	_, err := cb.FmtString("foo.go")
	require.Error(err)

	var fmtErr *FormatError
	require.True(errors.As(err, &fmtErr))
	require.Equal("foo.go", fmtErr.Filename)
	require.Contains(fmtErr.String(), "   2| func {")
	require.NotNil(errors.Unwrap(err))
}
