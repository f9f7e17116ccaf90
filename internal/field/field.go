package field

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/mangaq/internal/ir"
)

// Kind determines the literal grammar a field accepts.
type Kind int

const (
	// PlainString accepts any text verbatim.
	PlainString Kind = iota
	// CmpInt accepts an optional comparator followed by an integer.
	CmpInt
	// ZeroArg accepts only an empty value.
	ZeroArg
	// IntEquals accepts an integer.
	IntEquals
)

var kindNames = map[Kind]string{
	PlainString: "string",
	CmpInt:      "cmp_int",
	ZeroArg:     "zero_arg",
	IntEquals:   "int",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name ("string", "cmp_int", "zero_arg", "int") to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q: must be one of string, cmp_int, zero_arg, int", name)
}

// Definition declares one recognized field.
type Definition struct {
	Name string
	Kind Kind
}

// Parse converts a raw value according to the definition's kind.
func (d Definition) Parse(raw string) (ir.Value, error) {
	switch d.Kind {
	case PlainString:
		return ir.String(raw), nil
	case CmpInt:
		c, err := ir.ParseCmpInt(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		return c, nil
	case ZeroArg:
		if raw != "" {
			return nil, fmt.Errorf("%s: takes no value, got %q", d.Name, raw)
		}
		return ir.None{}, nil
	case IntEquals:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: expected an integer, got %q", d.Name, raw)
		}
		return ir.Int(n), nil
	default:
		return nil, fmt.Errorf("%s: unsupported field kind %s", d.Name, d.Kind)
	}
}

// Registry is an immutable, case-insensitive set of field definitions.
type Registry struct {
	defs  []Definition
	index map[string]int
}

// NewRegistry builds a registry. Names must be non-empty and unique after
// case folding.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("field name must not be empty")
		}
		if strings.ContainsAny(d.Name, ": ()\"\\") {
			return nil, fmt.Errorf("field name %q contains a reserved character", d.Name)
		}
		key := fold(d.Name)
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", d.Name)
		}
		r.index[key] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on error. For static tables only.
func MustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a definition by name, ignoring case.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.index[fold(name)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns the definitions in declaration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of fields.
func (r *Registry) Len() int { return len(r.defs) }

// fold case-folds a field name for lookup.
func fold(name string) string {
	return cases.Fold().String(name)
}

// MangaRegistry returns the fields of the manga catalog search.
func MangaRegistry() *Registry {
	return MustRegistry(
		Definition{Name: "favorites", Kind: ZeroArg},
		Definition{Name: "reading", Kind: ZeroArg},
		Definition{Name: "title", Kind: PlainString},
		Definition{Name: "artist", Kind: PlainString},
		Definition{Name: "author", Kind: PlainString},
		Definition{Name: "uploader", Kind: PlainString},
		Definition{Name: "chapters", Kind: CmpInt},
		Definition{Name: "uploaded", Kind: CmpInt},
		Definition{Name: "kind", Kind: PlainString},
		Definition{Name: "source", Kind: PlainString},
		Definition{Name: "status", Kind: IntEquals},
		Definition{Name: "tag", Kind: PlainString},
	)
}
