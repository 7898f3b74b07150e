// Package bridgeio builds and formats generated source text.
package bridgeio

import (
	"bufio"
	"fmt"
	"strings"

	"golang.org/x/tools/imports"
)

// CodeBuilder is a wrapper around [strings.Builder] that simplifies
// building Go and C code.
//
// The zero value is safely ready to use.
type CodeBuilder struct {
	// Indent is the indentation level (indentation is tabs).
	Indent int

	b strings.Builder
}

// Write appends a raw string.
func (w *CodeBuilder) Write(s string) {
	w.b.WriteString(s)
}

// Append writes the given string line by line with correct indentation.
func (w *CodeBuilder) Append(s string) {
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if sc.Text() == "" {
			w.Blank()
			continue
		}
		w.Linef("%v", sc.Text())
	}
}

// Linef writes a single line, prepended by the current indentation.
//
// Takes format and args like [fmt.Printf].
func (w *CodeBuilder) Linef(format string, args ...any) {
	for i := 0; i < w.Indent; i++ {
		w.b.WriteString("\t")
	}
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteString("\n")
}

// Blank writes an empty line.
func (w *CodeBuilder) Blank() {
	w.b.WriteString("\n")
}

// Block writes head, calls body one indentation level deeper and closes
// with tail, e.g. Block("func f() {", "}", ...).
func (w *CodeBuilder) Block(head, tail string, body func()) {
	w.Linef("%v", head)
	w.Indent++
	body()
	w.Indent--
	w.Linef("%v", tail)
}

// String returns the current code without applying any formatting.
func (w *CodeBuilder) String() string {
	return w.b.String()
}

// FmtString attempts to format the current code as Go source code.
// Imports are sorted and grouped, but never added or removed.
// filename is only used in error messages.
func (w *CodeBuilder) FmtString(filename string) (string, error) {
	code, err := imports.Process(filename, []byte(w.String()), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return "", &FormatError{Filename: filename, Code: w.String(), Err: err}
	}
	return string(code), nil
}
