package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/ir"
	"github.com/roach88/mangaq/internal/queryir"
	"github.com/roach88/mangaq/internal/testutil"
)

func leaf(field string, v ir.Value) filter.Leaf {
	return filter.Leaf{Field: field, Value: v}
}

func TestResolve_Variants(t *testing.T) {
	female := queryir.TagSexFemale
	gte5 := ir.CmpInt{GreaterThan: true, OrEqual: true, Value: 5}

	tests := []struct {
		name string
		leaf filter.Leaf
		want queryir.Predicate
	}{
		{"favorites", leaf("favorites", ir.None{}), queryir.Favorites{}},
		{"reading", leaf("reading", ir.None{}), queryir.Reading{}},
		{"title", leaf("title", ir.String("one piece")), queryir.Title{Text: "one piece"}},
		{"source", leaf("source", ir.String("example.org")), queryir.Source{Text: "example.org"}},
		{"artist", leaf("artist", ir.String("Oda")), queryir.Artist{Name: "Oda", ID: "user:oda"}},
		{"author", leaf("author", ir.String("toriyama")), queryir.Author{Name: "toriyama", ID: "user:toriyama"}},
		{"uploader", leaf("uploader", ir.String("archivist")), queryir.Uploader{Name: "archivist", ID: "user:archivist"}},
		{"chapters", leaf("chapters", gte5), queryir.ChapterCount{Cmp: gte5}},
		{"uploaded", leaf("uploaded", gte5), queryir.UploadedAt{Cmp: gte5}},
		{"kind", leaf("kind", ir.String("manhwa")), queryir.Kind{Name: "manhwa", ID: "kind:manhwa"}},
		{"status", leaf("status", ir.Int(2)), queryir.Status{Value: 2}},
		{"tag", leaf("tag", ir.String("romance")), queryir.Tag{Text: "romance", IDs: []string{"tag:romance"}}},
		{"tag with sex", leaf("tag", ir.String("female:glasses")), queryir.Tag{Sex: &female, Text: "glasses", IDs: []string{"tag:glasses-f"}}},
		{"field case", leaf("Title", ir.String("a")), queryir.Title{Text: "a"}},
	}

	r := NewResolver(testutil.NewLookups())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.leaf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_WrongShapeIsUnknownPredicate(t *testing.T) {
	r := NewResolver(testutil.NewLookups())

	_, err := r.Resolve(context.Background(), leaf("status", ir.String("ongoing")))

	require.Error(t, err)
	assert.True(t, IsUnknownPredicate(err))
	assert.EqualError(t, err, "Couldn't find ItemData: status")
}

func TestResolve_UnregisteredField(t *testing.T) {
	r := NewResolver(testutil.NewLookups())

	_, err := r.Resolve(context.Background(), leaf("rating", ir.Int(5)))

	assert.True(t, IsUnknownPredicate(err))
}

func TestResolve_LookupMiss(t *testing.T) {
	r := NewResolver(testutil.NewLookups())

	_, err := r.Resolve(context.Background(), leaf("artist", ir.String("nobody")))

	require.Error(t, err)
	assert.True(t, IsLookupFailed(err))
	assert.False(t, IsUnknownPredicate(err))
	assert.ErrorIs(t, err, testutil.ErrUnknownName)

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "artist", re.Field)
	assert.Equal(t, "nobody", re.Text)
}

func TestResolve_EmptyTagSetFails(t *testing.T) {
	r := NewResolver(testutil.NewLookups())

	_, err := r.Resolve(context.Background(), leaf("tag", ir.String("mecha")))

	assert.True(t, IsLookupFailed(err))
	assert.ErrorIs(t, err, ErrNoTags)
	assert.Contains(t, err.Error(), `tag "mecha"`)
}

func TestResolve_OneLookupPerLeaf(t *testing.T) {
	lookups := testutil.NewLookups()
	r := NewResolver(lookups)

	for _, l := range []filter.Leaf{
		leaf("artist", ir.String("oda")),
		leaf("kind", ir.String("manga")),
		leaf("tag", ir.String("romance")),
		leaf("title", ir.String("no lookup")),
		leaf("status", ir.Int(1)),
	} {
		_, err := r.Resolve(context.Background(), l)
		require.NoError(t, err)
	}

	calls := lookups.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "user", calls[0].Method)
	assert.Equal(t, "kind", calls[1].Method)
	assert.Equal(t, "tag", calls[2].Method)
}

func TestResolve_CustomRules(t *testing.T) {
	r := NewResolver(nil, Rule{
		Field: "name",
		Shape: ir.ShapeString,
		Build: func(_ context.Context, _ Lookups, v ir.Value) (queryir.Predicate, error) {
			return queryir.Title{Text: string(v.(ir.String))}, nil
		},
	})

	got, err := r.Resolve(context.Background(), leaf("NAME", ir.String("x")))
	require.NoError(t, err)
	assert.Equal(t, queryir.Title{Text: "x"}, got)

	_, err = r.Resolve(context.Background(), leaf("title", ir.String("x")))
	assert.True(t, IsUnknownPredicate(err))
}

func TestSplitTag(t *testing.T) {
	sex, text := SplitTag("male:glasses")
	require.NotNil(t, sex)
	assert.Equal(t, queryir.TagSexMale, *sex)
	assert.Equal(t, "glasses", text)

	sex, text = SplitTag("sci:fi")
	assert.Nil(t, sex)
	assert.Equal(t, "sci:fi", text)

	sex, text = SplitTag("plain")
	assert.Nil(t, sex)
	assert.Equal(t, "plain", text)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "favorites", Describe(queryir.Favorites{}))
	assert.Equal(t, `title ~ "a"`, Describe(queryir.Title{Text: "a"}))
	assert.Equal(t, "chapters >5", Describe(queryir.ChapterCount{Cmp: ir.CmpInt{GreaterThan: true, Value: 5}}))
}
