package filter

import (
	"strings"

	"github.com/roach88/mangaq/internal/field"
)

// Parse scans raw left to right and returns the root group together with
// non-fatal diagnostics. The root uses defaultOr as its operator, as does
// any unprefixed "(" group.
//
// Parse is pure: it holds no shared state and may run concurrently.
func Parse(raw string, defaultOr bool, fields *field.Registry) (*Group, []string) {
	root := &Group{Or: defaultOr}
	p := &parser{
		fields: fields,
		stack:  []*Group{root},
	}

	var (
		segment    strings.Builder
		inQuotes   bool
		escapeNext bool
	)

	for _, c := range raw {
		switch {
		case escapeNext:
			segment.WriteRune(c)
			escapeNext = false

		case c == '\\':
			escapeNext = true

		case c == '"':
			// The quote stays in the token so field parsing can strip the
			// pair. A closing quote always ends the token.
			inQuotes = !inQuotes
			segment.WriteRune(c)
			if !inQuotes {
				p.flush(&segment)
			}

		case inQuotes:
			segment.WriteRune(c)

		case c == ' ':
			p.flush(&segment)

		case c == '(':
			or := defaultOr
			switch segment.String() {
			case "or:":
				or = true
			case "and:":
				or = false
			}
			segment.Reset()
			p.open(or)

		case c == ')':
			p.flush(&segment)
			p.close()

		default:
			segment.WriteRune(c)
		}
	}
	p.flush(&segment)

	return root, p.diagnostics
}

// parser tracks the open groups. stack[0] is the root and is never popped,
// so unmatched ")" saturate instead of underflowing.
type parser struct {
	fields      *field.Registry
	stack       []*Group
	diagnostics []string
}

// top returns the innermost open group.
func (p *parser) top() *Group {
	return p.stack[len(p.stack)-1]
}

func (p *parser) open(or bool) {
	g := &Group{Or: or}
	top := p.top()
	top.Children = append(top.Children, g)
	p.stack = append(p.stack, g)
}

func (p *parser) close() {
	if len(p.stack) > 1 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// flush converts the accumulated segment into a leaf and clears it.
// Blank segments produce nothing; bad tokens become diagnostics.
func (p *parser) flush(segment *strings.Builder) {
	raw := segment.String()
	segment.Reset()
	if strings.TrimSpace(raw) == "" {
		return
	}

	tok, err := p.fields.ParseToken(raw)
	if err != nil {
		p.diagnostics = append(p.diagnostics, err.Error())
		return
	}

	top := p.top()
	top.Children = append(top.Children, Leaf{Negate: tok.Negate, Field: tok.Field, Value: tok.Value})
}
