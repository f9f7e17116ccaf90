package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mangaq/internal/field"
	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/queryir"
	"github.com/roach88/mangaq/internal/search"
	"github.com/roach88/mangaq/internal/store"
	"github.com/roach88/mangaq/internal/testutil"
)

// Default request values for cases that leave them unset.
const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// Harness holds the per-scenario pipeline.
type Harness struct {
	store    *store.Store
	fields   *field.Registry
	compiler *search.Compiler
	scenario *Scenario
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory directory for isolation, with
// sequential ids so compiled text is reproducible.
//
// Execution flow:
// 1. Load the field registry
// 2. Create and seed an in-memory directory
// 3. Parse and compile every case in order
// 4. Check each case's expectations
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	fields := field.MangaRegistry()
	if scenario.Fields != "" {
		reg, err := field.LoadFile(scenario.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to load field registry: %w", err)
		}
		fields = reg
	}

	ids := testutil.NewSequentialIDs()
	st, err := store.Open(":memory:", store.WithIDFunc(ids.Next))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Seed(ctx, &scenario.Directory); err != nil {
		return nil, fmt.Errorf("failed to seed directory: %w", err)
	}

	h := &Harness{
		store:  st,
		fields: fields,
		compiler: search.NewCompiler(st, search.Config{
			Viewer:      scenario.Viewer,
			Fields:      scenario.Select,
			Concurrency: 1,
			Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		}),
		scenario: scenario,
	}

	result := NewResult()
	for _, c := range scenario.Cases {
		got := h.runCase(ctx, c)
		result.Cases = append(result.Cases, got)
		for _, failure := range checkCase(c, got) {
			result.AddError(failure.Error())
		}
	}

	return result, nil
}

// runCase parses and compiles one case. Compile errors are recorded, not
// returned: an expected error is a passing case.
func (h *Harness) runCase(ctx context.Context, c Case) CaseResult {
	root, diags := filter.Parse(c.Query, h.scenario.DefaultOr, h.fields)
	got := CaseResult{
		Name:        c.Name,
		Input:       c.Query,
		Tree:        root.String(),
		Diagnostics: diags,
	}

	req, err := buildRequest(c.Request, root)
	if err != nil {
		got.Error = err.Error()
		return got
	}

	q, err := h.compiler.Compile(ctx, req)
	if err != nil {
		got.Error = err.Error()
		return got
	}
	got.Query = q
	return got
}

func buildRequest(spec RequestSpec, root *filter.Group) (search.Request, error) {
	req := search.Request{
		Order:  queryir.OrderCreated,
		Desc:   spec.Desc,
		Page:   spec.Page,
		Limit:  spec.Limit,
		Filter: root,
	}
	if spec.Order != "" {
		order, err := queryir.ParseOrder(spec.Order)
		if err != nil {
			return search.Request{}, err
		}
		req.Order = order
	}
	if req.Page == 0 {
		req.Page = DefaultPage
	}
	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	return req, nil
}
