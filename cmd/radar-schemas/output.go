package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
)

// errDiagnostics fails a command whose diagnostics were already printed.
var errDiagnostics = errors.New("validation failed")

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

// marks returns the success and failure marks for w, coloured only on a
// terminal.
func marks(w io.Writer) (ok, fail string) {
	if f, isFile := w.(*os.File); isFile && term.IsTerminal(int(f.Fd())) {
		return checkMark, crossMark
	}
	return "✓", "✗"
}

// report prints diags and a summary line. It returns errDiagnostics if
// there are any.
func report(w io.Writer, diags []validation.Diagnostic, validated int, quiet bool) error {
	ok, fail := marks(w)
	if len(diags) > 0 {
		fmt.Fprint(w, validation.FormatAll(diags))
		fmt.Fprintf(w, "%s %d validation errors\n", fail, len(diags))
		return errDiagnostics
	}
	if !quiet {
		fmt.Fprintf(w, "%s %d schemas validated\n", ok, validated)
	}
	return nil
}
