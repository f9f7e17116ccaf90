package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface representing a parsed filter literal.
// Only None, String, Int and CmpInt implement this.
type Value interface {
	value() // Sealed - only these types implement it

	// Shape reports which variant the value is. Resolution dispatches on it.
	Shape() Shape
}

// Shape identifies the variant of a Value.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeString
	ShapeInt
	ShapeCmpInt
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeString:
		return "string"
	case ShapeInt:
		return "int"
	case ShapeCmpInt:
		return "cmp_int"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// None is the value of a zero-argument field such as "favorites:".
type None struct{}

func (None) value()       {}
func (None) Shape() Shape { return ShapeNone }

// String is a verbatim text value.
type String string

func (String) value()       {}
func (String) Shape() Shape { return ShapeString }

// Int is an exact integer value.
type Int int64

func (Int) value()       {}
func (Int) Shape() Shape { return ShapeInt }

// CmpInt is an integer carrying a comparison direction and inclusivity flag.
//
//	>=5  CmpInt{GreaterThan: true,  OrEqual: true,  Value: 5}
//	>5   CmpInt{GreaterThan: true,  OrEqual: false, Value: 5}
//	<=5  CmpInt{GreaterThan: false, OrEqual: true,  Value: 5}
//	<5   CmpInt{GreaterThan: false, OrEqual: false, Value: 5}
type CmpInt struct {
	GreaterThan bool
	OrEqual     bool
	Value       int64
}

func (CmpInt) value()       {}
func (CmpInt) Shape() Shape { return ShapeCmpInt }

// Negate returns the complementary comparison. Both flags flip together,
// so >=5 becomes <5 and >5 becomes <=5.
func (c CmpInt) Negate() CmpInt {
	return CmpInt{GreaterThan: !c.GreaterThan, OrEqual: !c.OrEqual, Value: c.Value}
}

// Operator renders the comparison operator (">", ">=", "<", "<=").
func (c CmpInt) Operator() string {
	op := "<"
	if c.GreaterThan {
		op = ">"
	}
	if c.OrEqual {
		op += "="
	}
	return op
}

func (c CmpInt) String() string {
	return c.Operator() + strconv.FormatInt(c.Value, 10)
}

// ParseCmpInt parses an optional comparator followed by an integer.
//
// Accepted comparators are ">", ">=", "<" and "<=". A bare integer has no
// equality form in CmpInt and is read as ">=": "5" means "at least 5".
func ParseCmpInt(s string) (CmpInt, error) {
	var c CmpInt
	rest := s
	switch {
	case strings.HasPrefix(rest, ">="):
		c.GreaterThan, c.OrEqual = true, true
		rest = rest[2:]
	case strings.HasPrefix(rest, "<="):
		c.OrEqual = true
		rest = rest[2:]
	case strings.HasPrefix(rest, ">"):
		c.GreaterThan = true
		rest = rest[1:]
	case strings.HasPrefix(rest, "<"):
		rest = rest[1:]
	default:
		c.GreaterThan, c.OrEqual = true, true
	}

	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return CmpInt{}, fmt.Errorf("invalid comparison %q: expected [>|>=|<|<=]<integer>", s)
	}
	c.Value = n
	return c, nil
}

// Literal renders v the way a user would type it after "field:".
// Strings are always quoted so the result re-parses to the same value.
func Literal(v Value) string {
	switch val := v.(type) {
	case None:
		return ""
	case String:
		return quote(string(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case CmpInt:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quote wraps s in double quotes, escaping quotes and backslashes with the
// same backslash rule the filter tokenizer understands.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Encode converts v into the map form used for canonical JSON.
func Encode(v Value) map[string]any {
	switch val := v.(type) {
	case None:
		return map[string]any{"shape": ShapeNone.String()}
	case String:
		return map[string]any{"shape": ShapeString.String(), "value": string(val)}
	case Int:
		return map[string]any{"shape": ShapeInt.String(), "value": int64(val)}
	case CmpInt:
		return map[string]any{
			"shape":        ShapeCmpInt.String(),
			"greater_than": val.GreaterThan,
			"or_equal":     val.OrEqual,
			"value":        val.Value,
		}
	default:
		return map[string]any{"shape": "unknown"}
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	// If all compared units are equal, shorter string comes first
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
