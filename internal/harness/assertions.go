package harness

import (
	"fmt"
	"strings"
)

// AssertionError is one unmet expectation.
type AssertionError struct {
	Case     string // Case name
	Type     string // Expectation kind: tree, diagnostics, contains, ...
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "case %q: %s mismatch\n", e.Case, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkCase compares what a case produced with what it expects.
func checkCase(c Case, got CaseResult) []*AssertionError {
	var failures []*AssertionError
	fail := func(kind, expected, actual string) {
		failures = append(failures, &AssertionError{Case: c.Name, Type: kind, Expected: expected, Actual: actual})
	}

	want := c.Expect

	if want.Tree != "" && want.Tree != got.Tree {
		fail("tree", want.Tree, got.Tree)
	}

	if err := checkDiagnostics(want.Diagnostics, got.Diagnostics); err != "" {
		fail("diagnostics", fmt.Sprintf("%q", want.Diagnostics), err)
	}

	if want.Error != "" {
		if got.Error == "" {
			fail("error", want.Error, "compile succeeded: "+got.Query)
		} else if !strings.Contains(got.Error, want.Error) {
			fail("error", want.Error, got.Error)
		}
		return failures
	}

	if got.Error != "" {
		fail("error", "no error", got.Error)
		return failures
	}

	if want.Query != "" && want.Query != got.Query {
		fail("query", want.Query, got.Query)
	}
	for _, s := range want.Contains {
		if !strings.Contains(got.Query, s) {
			fail("contains", s, got.Query)
		}
	}
	for _, s := range want.NotContains {
		if strings.Contains(got.Query, s) {
			fail("not_contains", s, got.Query)
		}
	}

	return failures
}

// checkDiagnostics returns "" when got matches want position by position
// (substring match) with the same count, otherwise a description of got.
func checkDiagnostics(want, got []string) string {
	if len(want) != len(got) {
		return fmt.Sprintf("%d diagnostics %q", len(got), got)
	}
	for i := range want {
		if !strings.Contains(got[i], want[i]) {
			return fmt.Sprintf("diagnostic %d is %q", i, got[i])
		}
	}
	return ""
}
