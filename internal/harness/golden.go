package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Report renders a result as deterministic text, one block per case.
//
//	scenario: <name>
//	pass: true
//
//	case: <name>
//	  input: <query text>
//	  tree: <filter tree>
//	  diagnostic: <message>      (one line each, if any)
//	  query: <compiled query>    (or error: <message>)
func Report(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	fmt.Fprintf(&b, "pass: %t\n", result.Pass)
	for _, c := range result.Cases {
		fmt.Fprintf(&b, "\ncase: %s\n", c.Name)
		fmt.Fprintf(&b, "  input: %s\n", c.Input)
		fmt.Fprintf(&b, "  tree: %s\n", c.Tree)
		for _, d := range c.Diagnostics {
			fmt.Fprintf(&b, "  diagnostic: %s\n", d)
		}
		if c.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", c.Error)
		} else {
			fmt.Fprintf(&b, "  query: %s\n", c.Query)
		}
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its report against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's report against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Report(name, result))
}
