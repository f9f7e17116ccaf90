package querysql

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mangaq/internal/ir"
	"github.com/roach88/mangaq/internal/queryir"
)

const viewer = "users:alice"

func base(filter queryir.Filter) queryir.Select {
	return queryir.Select{
		Fields: []string{"titles", "kind"},
		Source: queryir.Table{Name: "mangas"},
		Filter: filter,
		Order:  queryir.OrderBy{Column: "created", Desc: true},
		Limit:  20,
		Viewer: viewer,
	}
}

func compile(t *testing.T, sel queryir.Select) string {
	t.Helper()
	out, err := NewCompiler().Compile(sel)
	require.NoError(t, err)
	return out
}

func TestCompile_NoFilterOmitsWhere(t *testing.T) {
	got := compile(t, base(queryir.Bool{}))

	assert.Equal(t, "SELECT titles, kind FROM mangas ORDER BY created DESC LIMIT 20 OFFSET 0", got)
	assert.NotContains(t, got, "WHERE")
}

func TestCompile_NilFilterOmitsWhere(t *testing.T) {
	got := compile(t, base(nil))
	assert.NotContains(t, got, "WHERE")
}

func TestCompile_Offset(t *testing.T) {
	sel := base(nil)
	sel.Offset = 40

	assert.Equal(t, "SELECT titles, kind FROM mangas ORDER BY created DESC LIMIT 20 OFFSET 40", compile(t, sel))
}

func TestCompile_Conditions(t *testing.T) {
	gte5 := ir.CmpInt{GreaterThan: true, OrEqual: true, Value: 5}
	gt5 := ir.CmpInt{GreaterThan: true, Value: 5}

	tests := []struct {
		name   string
		pred   queryir.Predicate
		negate bool
		want   string
	}{
		{"title", queryir.Title{Text: "one piece"}, false, `(array::flatten(object::values(titles)) *~ "one piece") = true`},
		{"title negated", queryir.Title{Text: "one piece"}, true, `(array::flatten(object::values(titles)) *~ "one piece") != true`},
		{"source", queryir.Source{Text: "example.org"}, false, `(sources *~ "example.org") = true`},
		{"artist", queryir.Artist{Name: "oda", ID: "users:oda"}, false, "artists CONTAINS users:oda"},
		{"artist negated", queryir.Artist{Name: "oda", ID: "users:oda"}, true, "artists CONTAINSNOT users:oda"},
		{"author", queryir.Author{Name: "oda", ID: "users:oda"}, false, "authors CONTAINS users:oda"},
		{"uploader negated", queryir.Uploader{Name: "a", ID: "users:a"}, true, "uploader != users:a"},
		{"kind", queryir.Kind{Name: "manga", ID: "kinds:manga"}, false, "kind = kinds:manga"},
		{"status", queryir.Status{Value: 2}, false, "status = 2"},
		{"status negated", queryir.Status{Value: 2}, true, "status != 2"},
		{"chapters", queryir.ChapterCount{Cmp: gte5}, false, "count(chapters) >= 5"},
		{"chapters negated inclusive", queryir.ChapterCount{Cmp: gte5}, true, "count(chapters) < 5"},
		{"chapters negated strict", queryir.ChapterCount{Cmp: gt5}, true, "count(chapters) <= 5"},
		{"uploaded", queryir.UploadedAt{Cmp: ir.CmpInt{GreaterThan: true, Value: 1700000000000}}, false, `created > d"2023-11-14T22:13:20Z"`},
		{"tag", queryir.Tag{Text: "rom", IDs: []string{"tags:a", "tags:b"}}, false, "[tags:a, tags:b] ANYINSIDE tags"},
		{"tag negated", queryir.Tag{Text: "rom", IDs: []string{"tags:a"}}, true, "[tags:a] NONEINSIDE tags"},
		{"favorites", queryir.Favorites{}, false, `count(SELECT id FROM scrape_list WHERE scrape_list.name = "Favorites" AND scrape_list.user = users:alice AND scrape_list.mangas CONTAINS mangas.id LIMIT 1) = 1`},
		{"favorites negated", queryir.Favorites{}, true, `count(SELECT id FROM scrape_list WHERE scrape_list.name = "Favorites" AND scrape_list.user = users:alice AND scrape_list.mangas CONTAINS mangas.id LIMIT 1) != 1`},
		{"reading", queryir.Reading{}, false, "count(SELECT id FROM user_progress WHERE user_progress.user = users:alice AND user_progress.manga = mangas.id LIMIT 1) = 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compile(t, base(queryir.Cond{Predicate: tt.pred, Negate: tt.negate}))
			assert.Contains(t, got, " WHERE "+tt.want+" ORDER BY ")
			assert.NotContains(t, got, " NOT ", "negation must flip the operator, not wrap")
		})
	}
}

func TestCompile_GroupJoinAndNesting(t *testing.T) {
	filter := queryir.Bool{Terms: []queryir.Filter{
		queryir.Cond{Predicate: queryir.Status{Value: 1}},
		queryir.Bool{Or: true, Terms: []queryir.Filter{
			queryir.Cond{Predicate: queryir.Status{Value: 2}},
			queryir.Cond{Predicate: queryir.Status{Value: 3}},
		}},
		queryir.Bool{Or: true, Terms: []queryir.Filter{
			queryir.Cond{Predicate: queryir.Status{Value: 4}},
		}},
		queryir.Bool{},
	}}

	got := compile(t, base(filter))

	assert.Contains(t, got, " WHERE status = 1 AND (status = 2 OR status = 3) AND status = 4 ORDER BY ")
}

func TestCompile_RootOr(t *testing.T) {
	filter := queryir.Bool{Or: true, Terms: []queryir.Filter{
		queryir.Cond{Predicate: queryir.Status{Value: 1}},
		queryir.Cond{Predicate: queryir.Status{Value: 2}},
	}}

	assert.Contains(t, compile(t, base(filter)), " WHERE status = 1 OR status = 2 ORDER BY ")
}

func TestCompile_Random(t *testing.T) {
	sel := base(nil)
	sel.Order = queryir.Random{}

	assert.Equal(t, "SELECT titles, kind FROM mangas ORDER BY RAND() LIMIT 20 OFFSET 0", compile(t, sel))
}

func TestCompile_LatestActivityHasNoOrderBy(t *testing.T) {
	sel := base(nil)
	sel.Source = queryir.LatestActivity{Viewer: viewer, Desc: true}
	sel.Order = nil

	got := compile(t, sel)

	assert.Equal(t,
		"SELECT titles, kind FROM (SELECT manga FROM (SELECT manga, time::max(updated) AS max FROM user_progress WHERE user = users:alice GROUP BY manga) ORDER BY max DESC) LIMIT 20 OFFSET 0",
		got)
	assert.NotContains(t, got, ") ORDER BY created")
}

func TestCompile_PopularityProjectsAggregate(t *testing.T) {
	sel := base(nil)
	sel.Order = queryir.OrderBy{Column: PopularityColumn}

	assert.Equal(t,
		"SELECT titles, kind, count(SELECT id FROM user_progress WHERE user_progress.manga = mangas.id) AS list_count FROM mangas ORDER BY list_count ASC LIMIT 20 OFFSET 0",
		compile(t, sel))
}

func TestCompile_CustomSchema(t *testing.T) {
	c := &Compiler{Schema: Schema{Records: "books", Lists: "shelves", Progress: "reads"}}
	sel := base(queryir.Cond{Predicate: queryir.Reading{}})
	sel.Source = queryir.Table{Name: "books"}

	got, err := c.Compile(sel)
	require.NoError(t, err)
	assert.Contains(t, got, "FROM reads WHERE reads.user = users:alice AND reads.manga = books.id")
}

func TestCompile_InvalidPlan(t *testing.T) {
	sel := base(queryir.Cond{Predicate: queryir.Tag{Text: "x"}})

	_, err := NewCompiler().Compile(sel)

	assert.ErrorContains(t, err, "invalid query plan")
	assert.ErrorContains(t, err, `tag "x" resolved to no identifiers`)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"plain"`, Quote("plain"))
	assert.Equal(t, `"say \"hi\""`, Quote(`say "hi"`))
	assert.Equal(t, `"a\\b"`, Quote(`a\b`))
	assert.Equal(t, `"line\nbreak"`, Quote("line\nbreak"))
}

func TestDatetime(t *testing.T) {
	assert.Equal(t, `d"1970-01-01T00:00:00Z"`, Datetime(0))
	assert.Equal(t, `d"1970-01-01T00:00:00.5Z"`, Datetime(500))
}

func TestDatetime_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, `d"9999-12-31T23:59:59.999Z"`, Datetime(math.MaxInt64))
	assert.Equal(t, `d"0000-01-01T00:00:00Z"`, Datetime(math.MinInt64))
	assert.Equal(t, `d"9999-12-31T23:59:59.999Z"`, Datetime(253402300799999))

	got := compile(t, base(queryir.Cond{Predicate: queryir.UploadedAt{Cmp: ir.CmpInt{GreaterThan: true, Value: math.MaxInt64}}}))
	assert.Contains(t, got, `WHERE created > d"9999-12-31T23:59:59.999Z" ORDER BY`)
}
