package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/queryir"
	"github.com/roach88/mangaq/internal/querysql"
	"github.com/roach88/mangaq/internal/resolve"
)

// ErrInvalidInput marks every failure caused by the request itself: bad
// paging, unresolvable leaves, or a plan that cannot be rendered.
var ErrInvalidInput = errors.New("invalid input")

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// DefaultFields is the projection used when Config.Fields is empty.
var DefaultFields = []string{
	"titles", "kind", "description", "tags", "status", "visibility", "uploader",
	"artists", "authors", "covers", "chapters", "sources", "relations", "scraper",
}

// DefaultConcurrency bounds in-flight lookups when Config.Concurrency is 0.
const DefaultConcurrency = 8

// Request is one search: a parsed filter and its ordering and paging.
type Request struct {
	Order queryir.Order
	Desc  bool

	// Page is 1-based.
	Page  uint
	Limit uint

	// Filter is the parsed root group. Nil matches everything.
	Filter *filter.Group
}

// Offset returns the number of records skipped before Page. Plan rejects
// requests where this would overflow.
func (r Request) Offset() uint {
	if r.Page == 0 {
		return 0
	}
	return (r.Page - 1) * r.Limit
}

// Config configures a Compiler.
type Config struct {
	// Viewer is the record id of the user searching. Favorites, Reading
	// and LastRead ordering need it.
	Viewer string

	Fields      []string
	Concurrency int

	// Rules overrides the resolver's rule table. Empty uses resolve.MangaRules.
	Rules []resolve.Rule

	// Schema overrides querysql.DefaultSchema.
	Schema *querysql.Schema

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Compiler turns requests into query strings. It holds no per-request state
// and is safe for concurrent use if its Lookups are.
type Compiler struct {
	resolver    *resolve.Resolver
	renderer    *querysql.Compiler
	viewer      string
	fields      []string
	concurrency int
	logger      *slog.Logger
}

// NewCompiler wires a Compiler to its identifier lookups.
func NewCompiler(lookups resolve.Lookups, cfg Config) *Compiler {
	c := &Compiler{
		resolver:    resolve.NewResolver(lookups, cfg.Rules...),
		renderer:    querysql.NewCompiler(),
		viewer:      cfg.Viewer,
		fields:      cfg.Fields,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
	if len(c.fields) == 0 {
		c.fields = DefaultFields
	}
	if c.concurrency <= 0 {
		c.concurrency = DefaultConcurrency
	}
	if cfg.Schema != nil {
		c.renderer.Schema = *cfg.Schema
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compile resolves and renders req.
func (c *Compiler) Compile(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	fingerprint := c.fingerprint(req.Filter)

	c.logger.Debug("compiling search",
		"order", req.Order.String(),
		"desc", req.Desc,
		"page", req.Page,
		"limit", req.Limit,
		"leaves", len(filter.Leaves(rootOrEmpty(req.Filter))),
		"fingerprint", fingerprint)

	sel, err := c.Plan(ctx, req)
	if err != nil {
		c.logger.Warn("search rejected", "fingerprint", fingerprint, "error", err)
		return "", err
	}

	out, err := c.renderer.Compile(sel)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
		c.logger.Warn("search rejected", "fingerprint", fingerprint, "error", err)
		return "", err
	}

	c.logger.Debug("compiled search",
		"fingerprint", fingerprint,
		"duration", time.Since(start))
	return out, nil
}

// Plan resolves req into a queryir.Select without rendering it.
func (c *Compiler) Plan(ctx context.Context, req Request) (queryir.Select, error) {
	if req.Page < 1 {
		return queryir.Select{}, fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidInput, req.Page)
	}
	if req.Limit < 1 {
		return queryir.Select{}, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidInput, req.Limit)
	}
	if hi, _ := bits.Mul(req.Page-1, req.Limit); hi != 0 {
		return queryir.Select{}, fmt.Errorf("%w: page %d with limit %d overflows the offset", ErrInvalidInput, req.Page, req.Limit)
	}

	root := rootOrEmpty(req.Filter)
	preds, err := c.resolveLeaves(ctx, filter.Leaves(root))
	if err != nil {
		return queryir.Select{}, err
	}

	next := 0
	f := buildFilter(root, preds, &next)

	source, order, err := c.sourceAndOrder(req)
	if err != nil {
		return queryir.Select{}, err
	}

	return queryir.Select{
		Fields: c.fields,
		Source: source,
		Filter: f,
		Order:  order,
		Limit:  req.Limit,
		Offset: req.Offset(),
		Viewer: c.viewer,
	}, nil
}

// resolveLeaves resolves leaves concurrently. Results keep tree order.
func (c *Compiler) resolveLeaves(ctx context.Context, leaves []filter.Leaf) ([]queryir.Predicate, error) {
	preds := make([]queryir.Predicate, len(leaves))
	errs := make([]error, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, leaf := range leaves {
		i, leaf := i, leaf
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			p, err := c.resolver.Resolve(gctx, leaf)
			if err != nil {
				errs[i] = err
				return err
			}
			preds[i] = p
			return nil
		})
	}
	waitErr := g.Wait()
	if waitErr == nil {
		return preds, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("compile search: %w", err)
	}

	// Leaves cancelled because a sibling failed report context.Canceled;
	// the real cause is the first error in tree order that is not that.
	for i, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Debug("leaf resolution failed", "field", leaves[i].Field, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidInput, waitErr)
}

// buildFilter mirrors the group structure, consuming resolved predicates in
// the same leaf order filter.Leaves produced them.
func buildFilter(g *filter.Group, preds []queryir.Predicate, next *int) queryir.Bool {
	out := queryir.Bool{Or: g.Or, Terms: make([]queryir.Filter, 0, len(g.Children))}
	for _, child := range g.Children {
		switch n := child.(type) {
		case filter.Leaf:
			out.Terms = append(out.Terms, queryir.Cond{Predicate: preds[*next], Negate: n.Negate})
			*next++
		case *filter.Group:
			out.Terms = append(out.Terms, buildFilter(n, preds, next))
		}
	}
	return out
}

func (c *Compiler) sourceAndOrder(req Request) (queryir.Base, queryir.Ordering, error) {
	table := queryir.Table{Name: c.renderer.Schema.Records}
	switch req.Order {
	case queryir.OrderLastRead:
		return queryir.LatestActivity{Viewer: c.viewer, Desc: req.Desc}, nil, nil
	case queryir.OrderRandom:
		return table, queryir.Random{}, nil
	case queryir.OrderCreated:
		return table, queryir.OrderBy{Column: "created", Desc: req.Desc}, nil
	case queryir.OrderAlphabetical:
		return table, queryir.OrderBy{Column: "title", Desc: req.Desc}, nil
	case queryir.OrderUpdated:
		return table, queryir.OrderBy{Column: "updated", Desc: req.Desc}, nil
	case queryir.OrderPopularity:
		return table, queryir.OrderBy{Column: querysql.PopularityColumn, Desc: req.Desc}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown order %s", ErrInvalidInput, req.Order)
	}
}

func (c *Compiler) fingerprint(g *filter.Group) string {
	fp, err := filter.Fingerprint(rootOrEmpty(g))
	if err != nil {
		return ""
	}
	return fp
}

func rootOrEmpty(g *filter.Group) *filter.Group {
	if g == nil {
		return &filter.Group{}
	}
	return g
}
