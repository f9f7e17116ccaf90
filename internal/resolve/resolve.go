package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/mangaq/internal/filter"
	"github.com/roach88/mangaq/internal/ir"
	"github.com/roach88/mangaq/internal/queryir"
)

// Lookups turns user-facing names into record identifiers.
//
// Implementations must be safe for concurrent use: the search compiler
// resolves independent leaves in parallel.
type Lookups interface {
	ResolveUserID(ctx context.Context, name string) (string, error)
	ResolveKindID(ctx context.Context, name string) (string, error)
	ResolveTagIDs(ctx context.Context, sex *queryir.TagSex, text string) ([]string, error)
}

// BuildFunc constructs a predicate from a value of the rule's shape.
type BuildFunc func(ctx context.Context, lookups Lookups, v ir.Value) (queryir.Predicate, error)

// Rule binds one field name and value shape to a predicate constructor.
type Rule struct {
	Field string
	Shape ir.Shape
	Build BuildFunc
}

type ruleKey struct {
	field string
	shape ir.Shape
}

// Resolver resolves filter leaves. It is immutable after construction and
// safe for concurrent use if its Lookups are.
type Resolver struct {
	lookups Lookups
	rules   map[ruleKey]Rule
}

// NewResolver builds a resolver over rules. With no rules, MangaRules is used.
// A later rule for the same (field, shape) replaces an earlier one.
func NewResolver(lookups Lookups, rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = MangaRules()
	}
	r := &Resolver{lookups: lookups, rules: make(map[ruleKey]Rule, len(rules))}
	for _, rule := range rules {
		r.rules[ruleKey{strings.ToLower(rule.Field), rule.Shape}] = rule
	}
	return r
}

// Resolve maps one leaf to its predicate. Negation is not applied here; the
// caller wraps the result in a queryir.Cond carrying leaf.Negate.
func (r *Resolver) Resolve(ctx context.Context, leaf filter.Leaf) (queryir.Predicate, error) {
	if leaf.Value == nil {
		return nil, &Error{Code: ErrCodeUnknownPredicate, Field: leaf.Field}
	}
	rule, ok := r.rules[ruleKey{strings.ToLower(leaf.Field), leaf.Value.Shape()}]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownPredicate, Field: leaf.Field}
	}
	return rule.Build(ctx, r.lookups, leaf.Value)
}

// MangaRules is the rule table for the manga catalog registry.
func MangaRules() []Rule {
	return []Rule{
		{Field: "favorites", Shape: ir.ShapeNone, Build: constant(queryir.Favorites{})},
		{Field: "reading", Shape: ir.ShapeNone, Build: constant(queryir.Reading{})},
		{Field: "title", Shape: ir.ShapeString, Build: text(func(s string) queryir.Predicate { return queryir.Title{Text: s} })},
		{Field: "source", Shape: ir.ShapeString, Build: text(func(s string) queryir.Predicate { return queryir.Source{Text: s} })},
		{Field: "artist", Shape: ir.ShapeString, Build: user("artist", func(name, id string) queryir.Predicate {
			return queryir.Artist{Name: name, ID: id}
		})},
		{Field: "author", Shape: ir.ShapeString, Build: user("author", func(name, id string) queryir.Predicate {
			return queryir.Author{Name: name, ID: id}
		})},
		{Field: "uploader", Shape: ir.ShapeString, Build: user("uploader", func(name, id string) queryir.Predicate {
			return queryir.Uploader{Name: name, ID: id}
		})},
		{Field: "chapters", Shape: ir.ShapeCmpInt, Build: cmp(func(c ir.CmpInt) queryir.Predicate { return queryir.ChapterCount{Cmp: c} })},
		{Field: "uploaded", Shape: ir.ShapeCmpInt, Build: cmp(func(c ir.CmpInt) queryir.Predicate { return queryir.UploadedAt{Cmp: c} })},
		{Field: "kind", Shape: ir.ShapeString, Build: buildKind},
		{Field: "status", Shape: ir.ShapeInt, Build: buildStatus},
		{Field: "tag", Shape: ir.ShapeString, Build: buildTag},
	}
}

func constant(p queryir.Predicate) BuildFunc {
	return func(context.Context, Lookups, ir.Value) (queryir.Predicate, error) {
		return p, nil
	}
}

func text(fn func(string) queryir.Predicate) BuildFunc {
	return func(_ context.Context, _ Lookups, v ir.Value) (queryir.Predicate, error) {
		return fn(string(v.(ir.String))), nil
	}
}

func cmp(fn func(ir.CmpInt) queryir.Predicate) BuildFunc {
	return func(_ context.Context, _ Lookups, v ir.Value) (queryir.Predicate, error) {
		return fn(v.(ir.CmpInt)), nil
	}
}

func user(field string, fn func(name, id string) queryir.Predicate) BuildFunc {
	return func(ctx context.Context, l Lookups, v ir.Value) (queryir.Predicate, error) {
		name := string(v.(ir.String))
		id, err := l.ResolveUserID(ctx, name)
		if err != nil {
			return nil, &Error{Code: ErrCodeLookupFailed, Field: field, Text: name, Err: err}
		}
		return fn(name, id), nil
	}
}

func buildKind(ctx context.Context, l Lookups, v ir.Value) (queryir.Predicate, error) {
	name := string(v.(ir.String))
	id, err := l.ResolveKindID(ctx, name)
	if err != nil {
		return nil, &Error{Code: ErrCodeLookupFailed, Field: "kind", Text: name, Err: err}
	}
	return queryir.Kind{Name: name, ID: id}, nil
}

func buildStatus(_ context.Context, _ Lookups, v ir.Value) (queryir.Predicate, error) {
	return queryir.Status{Value: int64(v.(ir.Int))}, nil
}

func buildTag(ctx context.Context, l Lookups, v ir.Value) (queryir.Predicate, error) {
	raw := string(v.(ir.String))
	sex, search := SplitTag(raw)
	ids, err := l.ResolveTagIDs(ctx, sex, search)
	if err == nil && len(ids) == 0 {
		err = ErrNoTags
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeLookupFailed, Field: "tag", Text: raw, Err: err}
	}
	return queryir.Tag{Sex: sex, Text: search, IDs: ids}, nil
}

// SplitTag separates an optional "female:", "male:" or "unisex:" prefix from
// a tag search. Any other prefix is kept as part of the text.
func SplitTag(raw string) (*queryir.TagSex, string) {
	prefix, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, raw
	}
	sex, ok := queryir.ParseTagSex(prefix)
	if !ok {
		return nil, raw
	}
	return &sex, rest
}

// Describe renders a predicate for logs and CLI output.
func Describe(p queryir.Predicate) string {
	switch pred := p.(type) {
	case queryir.Favorites, queryir.Reading:
		return pred.Field()
	case queryir.Title:
		return fmt.Sprintf("title ~ %q", pred.Text)
	case queryir.Source:
		return fmt.Sprintf("source ~ %q", pred.Text)
	case queryir.Artist:
		return fmt.Sprintf("artist %q (%s)", pred.Name, pred.ID)
	case queryir.Author:
		return fmt.Sprintf("author %q (%s)", pred.Name, pred.ID)
	case queryir.Uploader:
		return fmt.Sprintf("uploader %q (%s)", pred.Name, pred.ID)
	case queryir.Kind:
		return fmt.Sprintf("kind %q (%s)", pred.Name, pred.ID)
	case queryir.ChapterCount:
		return "chapters " + pred.Cmp.String()
	case queryir.UploadedAt:
		return "uploaded " + pred.Cmp.String()
	case queryir.Status:
		return fmt.Sprintf("status %d", pred.Value)
	case queryir.Tag:
		if pred.Sex != nil {
			return fmt.Sprintf("tag %s:%q %v", pred.Sex, pred.Text, pred.IDs)
		}
		return fmt.Sprintf("tag %q %v", pred.Text, pred.IDs)
	default:
		return fmt.Sprintf("%T", p)
	}
}
