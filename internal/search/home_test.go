package search

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mangaq/internal/testutil"
)

func TestHomePresets(t *testing.T) {
	presets := HomePresets()

	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
		assert.Equal(t, uint(1), p.Request.Page)
		assert.Equal(t, uint(HomeLimit), p.Request.Limit)
	}
	assert.Equal(t, []string{"newest", "trending", "reading", "favorites", "latest_updates", "random"}, names)
}

func TestCompileHome_Golden(t *testing.T) {
	sections, err := newCompiler(testutil.NewLookups()).CompileHome(context.Background())
	require.NoError(t, err)

	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "%s\t%s\n", s.Name, s.Query)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "home", []byte(b.String()))
}

func TestCompileHome_NeedsViewer(t *testing.T) {
	_, err := NewCompiler(testutil.NewLookups(), Config{}).CompileHome(context.Background())

	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
	assert.Contains(t, err.Error(), "home section")
}
