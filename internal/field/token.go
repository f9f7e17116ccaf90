package field

import (
	"fmt"
	"strings"

	"github.com/roach88/mangaq/internal/ir"
)

// DefaultField receives tokens that carry no "field:" prefix.
const DefaultField = "title"

// Token is one validated "field:value" condition.
// Field holds the registry's spelling of the name, not the user's.
type Token struct {
	Negate bool
	Field  string
	Value  ir.Value
}

// ParseToken converts one raw token into a Token.
//
//	field:value    plain condition
//	field:!value   negated condition (split at the first ":!")
//	value          condition on DefaultField
//
// A value wrapped in one pair of double quotes has that pair stripped.
// Unknown field names and malformed literals are reported as errors; the
// parser turns those into diagnostics.
func (r *Registry) ParseToken(raw string) (Token, error) {
	var name, value string
	negate := strings.Contains(raw, ":!")
	if negate {
		name, value, _ = strings.Cut(raw, ":!")
	} else if n, v, ok := strings.Cut(raw, ":"); ok {
		name, value = n, v
	} else {
		name, value = DefaultField, raw
	}

	if len(value) > 1 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}

	def, ok := r.Lookup(name)
	if !ok {
		return Token{}, fmt.Errorf("Category: %s not found", name)
	}

	v, err := def.Parse(value)
	if err != nil {
		return Token{}, err
	}

	return Token{Negate: negate, Field: def.Name, Value: v}, nil
}
