package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/mangaq/internal/ir"
	"github.com/roach88/mangaq/internal/queryir"
)

// Schema names the record-store tables the rendered query refers to.
type Schema struct {
	// Records is the primary record table.
	Records string

	// Lists holds named per-user record lists ("Favorites").
	Lists string

	// Progress holds per-user reading activity, one row per update.
	Progress string
}

// DefaultSchema returns the catalog's table names.
func DefaultSchema() Schema {
	return Schema{Records: "mangas", Lists: "scrape_list", Progress: "user_progress"}
}

// PopularityColumn is the computed column the Popularity ordering sorts by.
const PopularityColumn = "list_count"

// Compiler renders a queryir.Select to record-store query text.
//
// Values are inlined as escaped literals: the output is a single query
// string handed to the store as-is, with no parameter list.
type Compiler struct {
	Schema Schema
}

// NewCompiler creates a Compiler over DefaultSchema.
func NewCompiler() *Compiler {
	return &Compiler{Schema: DefaultSchema()}
}

// Compile validates sel and renders it.
//
//	SELECT <fields> FROM <source>[ WHERE <filter>][ <order>] LIMIT <limit> OFFSET <offset>
//
// WHERE is omitted when the filter renders empty. ORDER is omitted for
// sources that carry their own ordering.
func (c *Compiler) Compile(sel queryir.Select) (string, error) {
	if err := queryir.Validate(sel).Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(c.projection(sel))
	b.WriteString(" FROM ")

	switch src := sel.Source.(type) {
	case queryir.Table:
		b.WriteString(src.Name)
	case queryir.LatestActivity:
		b.WriteString(c.latestActivity(src))
	}

	if sel.Filter != nil {
		where, err := c.renderFilter(sel.Filter, sel.Viewer, true)
		if err != nil {
			return "", fmt.Errorf("compile filter: %w", err)
		}
		if where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
		}
	}

	switch ord := sel.Order.(type) {
	case queryir.OrderBy:
		fmt.Fprintf(&b, " ORDER BY %s %s", ord.Column, direction(ord.Desc))
	case queryir.Random:
		b.WriteString(" ORDER BY RAND()")
	}

	fmt.Fprintf(&b, " LIMIT %d OFFSET %d", sel.Limit, sel.Offset)
	return b.String(), nil
}

// projection joins the selected fields, adding the popularity aggregate when
// the ordering needs it.
func (c *Compiler) projection(sel queryir.Select) string {
	fields := strings.Join(sel.Fields, ", ")
	if ob, ok := sel.Order.(queryir.OrderBy); ok && ob.Column == PopularityColumn {
		fields += fmt.Sprintf(", count(SELECT id FROM %s WHERE %s.manga = %s.id) AS %s",
			c.Schema.Progress, c.Schema.Progress, c.Schema.Records, PopularityColumn)
	}
	return fields
}

// latestActivity groups the viewer's progress rows by record, keeping the
// newest timestamp, and orders by it.
func (c *Compiler) latestActivity(src queryir.LatestActivity) string {
	return fmt.Sprintf("(SELECT manga FROM (SELECT manga, time::max(updated) AS max FROM %s WHERE user = %s GROUP BY manga) ORDER BY max %s)",
		c.Schema.Progress, src.Viewer, direction(src.Desc))
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// renderFilter renders one filter node. Non-root Bools with more than one
// rendered term are parenthesised so a nested OR inside an AND keeps its
// meaning. Terms that render empty are skipped.
func (c *Compiler) renderFilter(f queryir.Filter, viewer string, root bool) (string, error) {
	switch node := f.(type) {
	case queryir.Cond:
		return c.renderCond(node, viewer)
	case queryir.Bool:
		parts := make([]string, 0, len(node.Terms))
		for _, term := range node.Terms {
			s, err := c.renderFilter(term, viewer, false)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		sep := " AND "
		if node.Or {
			sep = " OR "
		}
		out := strings.Join(parts, sep)
		if !root && len(parts) > 1 {
			out = "(" + out + ")"
		}
		return out, nil
	default:
		return "", fmt.Errorf("unsupported filter type: %T", f)
	}
}

// renderCond renders one predicate as a single comparison. Negation flips
// the operator: = and !=, CONTAINS and CONTAINSNOT, ANYINSIDE and
// NONEINSIDE, and both flags of a numeric comparison.
func (c *Compiler) renderCond(cond queryir.Cond, viewer string) (string, error) {
	neg := cond.Negate
	s := c.Schema

	switch p := cond.Predicate.(type) {
	case queryir.Favorites:
		return fmt.Sprintf(`count(SELECT id FROM %s WHERE %s.name = "Favorites" AND %s.user = %s AND %s.mangas CONTAINS %s.id LIMIT 1) %s 1`,
			s.Lists, s.Lists, s.Lists, viewer, s.Lists, s.Records, eq(neg)), nil
	case queryir.Reading:
		return fmt.Sprintf("count(SELECT id FROM %s WHERE %s.user = %s AND %s.manga = %s.id LIMIT 1) %s 1",
			s.Progress, s.Progress, viewer, s.Progress, s.Records, eq(neg)), nil
	case queryir.Title:
		return fmt.Sprintf("(array::flatten(object::values(titles)) *~ %s) %s true", Quote(p.Text), eq(neg)), nil
	case queryir.Source:
		return fmt.Sprintf("(sources *~ %s) %s true", Quote(p.Text), eq(neg)), nil
	case queryir.Artist:
		return fmt.Sprintf("artists %s %s", contains(neg), p.ID), nil
	case queryir.Author:
		return fmt.Sprintf("authors %s %s", contains(neg), p.ID), nil
	case queryir.Uploader:
		return fmt.Sprintf("uploader %s %s", eq(neg), p.ID), nil
	case queryir.Kind:
		return fmt.Sprintf("kind %s %s", eq(neg), p.ID), nil
	case queryir.Status:
		return fmt.Sprintf("status %s %d", eq(neg), p.Value), nil
	case queryir.ChapterCount:
		cmp := flip(p.Cmp, neg)
		return fmt.Sprintf("count(chapters) %s %d", cmp.Operator(), cmp.Value), nil
	case queryir.UploadedAt:
		cmp := flip(p.Cmp, neg)
		return fmt.Sprintf("created %s %s", cmp.Operator(), Datetime(cmp.Value)), nil
	case queryir.Tag:
		op := "ANYINSIDE"
		if neg {
			op = "NONEINSIDE"
		}
		return fmt.Sprintf("[%s] %s tags", strings.Join(p.IDs, ", "), op), nil
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", cond.Predicate)
	}
}

func eq(neg bool) string {
	if neg {
		return "!="
	}
	return "="
}

func contains(neg bool) string {
	if neg {
		return "CONTAINSNOT"
	}
	return "CONTAINS"
}

func flip(c ir.CmpInt, neg bool) ir.CmpInt {
	if neg {
		return c.Negate()
	}
	return c
}

// Quote renders s as a double-quoted string literal.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Datetime range the record store accepts: four-digit years.
var (
	minDatetime = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxDatetime = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()
)

// Datetime renders epoch milliseconds as a UTC datetime literal. Values
// outside years 0000 to 9999 clamp to the nearest end of that range.
func Datetime(ms int64) string {
	ms = min(max(ms, minDatetime), maxDatetime)
	return `d"` + time.UnixMilli(ms).UTC().Format(time.RFC3339Nano) + `"`
}
