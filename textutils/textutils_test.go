package textutils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndentString(t *testing.T) {
	require := require.New(t)

	require.Equal(`  Hello
  World`,
		IndentString(`Hello
World`, "  ", 1),
	)

	require.Equal(`  Hello
  World
`,
		IndentString(`Hello
World
`, "  ", 1),
	)

	require.Equal(`  Hello
  World
`,
		IndentString(`Hello
World
  `, "  ", 1),
	)

	require.Equal(`  Hello

  World
`,
		IndentString(`Hello
  
World
`, "  ", 1),
	)
}

func TestCommentString(t *testing.T) {
	require := require.New(t)

	require.Equal("// Hello", CommentString("Hello", "// "))
	require.Equal("// Hello\n//\n// World", CommentString("Hello\n\nWorld\n", "// "))
	require.Equal(" * a\n * b", CommentString("a\nb", " * "))
}
