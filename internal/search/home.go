package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/ir"
	"github.com/roach88/mangaq/internal/queryir"
)

// HomeLimit is the row size of every home page section.
const HomeLimit = 20

// Preset is one named home page section.
type Preset struct {
	Name    string
	Request Request
}

// Section is a compiled Preset.
type Section struct {
	Name  string
	Query string
}

// HomePresets returns the home page sections in display order.
func HomePresets() []Preset {
	page := func(order queryir.Order, desc bool, children ...filter.Node) Request {
		return Request{
			Order:  order,
			Desc:   desc,
			Page:   1,
			Limit:  HomeLimit,
			Filter: &filter.Group{Children: children},
		}
	}
	return []Preset{
		{Name: "newest", Request: page(queryir.OrderCreated, true)},
		{Name: "trending", Request: page(queryir.OrderPopularity, true)},
		{Name: "reading", Request: page(queryir.OrderLastRead, true)},
		{Name: "favorites", Request: page(queryir.OrderAlphabetical, false,
			filter.Leaf{Field: "favorites", Value: ir.None{}})},
		{Name: "latest_updates", Request: page(queryir.OrderUpdated, true)},
		{Name: "random", Request: page(queryir.OrderRandom, true)},
	}
}

// CompileHome compiles every home preset concurrently. Sections keep
// HomePresets order; any failure fails the whole page.
func (c *Compiler) CompileHome(ctx context.Context) ([]Section, error) {
	presets := HomePresets()
	sections := make([]Section, len(presets))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range presets {
		i, p := i, p
		g.Go(func() error {
			q, err := c.Compile(gctx, p.Request)
			if err != nil {
				return fmt.Errorf("home section %s: %w", p.Name, err)
			}
			sections[i] = Section{Name: p.Name, Query: q}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}
