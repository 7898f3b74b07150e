package bridgeio

import (
	"fmt"
	"strings"

	"github.com/refaktor/bridgegen/textutils"
)

// FormatError is returned when generated code fails to format, which
// always indicates a generator bug.
type FormatError struct {
	Filename string
	Code     string // unformatted code
	Err      error
}

// Error returns a short error message.
func (e *FormatError) Error() string {
	return "format " + e.Filename + ": " + e.Err.Error()
}

// String returns the error followed by a numbered listing of the
// unformatted code.
func (e *FormatError) String() string {
	var listing strings.Builder
	for i, ln := range strings.Split(strings.TrimRight(e.Code, "\n"), "\n") {
		fmt.Fprintf(&listing, "%4d| %v\n", i+1, ln)
	}
	return e.Error() + "\n" + textutils.IndentString(listing.String(), "  ", 1)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
