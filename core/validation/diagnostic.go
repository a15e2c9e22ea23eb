// Package validation runs composable validators concurrently against a
// shared context and collects every reported violation.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Diagnostic is a single reported violation. It never aborts a run.
type Diagnostic struct {
	Message string
	Cause   error
}

// Error implements error so a diagnostic can be returned where one is expected.
func (d Diagnostic) Error() string {
	if d.Cause == nil {
		return d.Message
	}
	return d.Message + ": " + d.Cause.Error()
}

// Unwrap returns the cause.
func (d Diagnostic) Unwrap() error {
	return d.Cause
}

func (d Diagnostic) key() string {
	if d.Cause == nil {
		return d.Message
	}
	return d.Message + "\x00" + d.Cause.Error()
}

// Format renders the diagnostic as a block of text.
func (d Diagnostic) Format() string {
	var b strings.Builder
	b.WriteString("Validation FAILED:\n")
	b.WriteString(d.Message)
	if d.Cause != nil {
		fmt.Fprintf(&b, "\nCaused by: %v", d.Cause)
	}
	b.WriteString("\n\n")
	return b.String()
}

// FormatAll renders every diagnostic as one block each.
func FormatAll(diags []Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(d.Format())
	}
	return b.String()
}

// Merge combines the results of several runs, dropping repeats. The result
// is sorted like the result of a single run.
func Merge(lists ...[]Diagnostic) []Diagnostic {
	seen := make(map[string]struct{})
	var merged []Diagnostic
	for _, list := range lists {
		for _, d := range list {
			k := d.key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, d)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].key() < merged[j].key() })
	return merged
}
