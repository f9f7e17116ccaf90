package field

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// LoadError reports a problem in a CUE field declaration.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile reads a CUE file and compiles its "fields" struct into a Registry.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field registry: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile builds a Registry from a CUE value containing a "fields" struct.
// Labels are field names and values are kind names:
//
//	fields: { title: "string", chapters: "cmp_int" }
//
// Declaration order is preserved.
func Compile(v cue.Value) (*Registry, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &LoadError{
			Field:   "fields",
			Message: "fields is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, &LoadError{
			Field:   "fields",
			Message: "fields must be a struct of name: kind",
			Pos:     fieldsVal.Pos(),
		}
	}

	var defs []Definition
	for iter.Next() {
		name := iter.Label()
		kindVal := iter.Value()

		kindName, err := kindVal.String()
		if err != nil {
			return nil, &LoadError{
				Field:   "fields." + name,
				Message: "kind must be a string",
				Pos:     kindVal.Pos(),
			}
		}
		kind, err := ParseKind(kindName)
		if err != nil {
			return nil, &LoadError{
				Field:   "fields." + name,
				Message: err.Error(),
				Pos:     kindVal.Pos(),
			}
		}
		defs = append(defs, Definition{Name: name, Kind: kind})
	}

	if len(defs) == 0 {
		return nil, &LoadError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     fieldsVal.Pos(),
		}
	}

	reg, err := NewRegistry(defs...)
	if err != nil {
		return nil, &LoadError{Field: "fields", Message: err.Error(), Pos: fieldsVal.Pos()}
	}
	return reg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	pos := token.NoPos
	if positions := errors.Positions(first); len(positions) > 0 {
		pos = positions[0]
	}
	return &LoadError{
		Field:   "cue",
		Message: first.Error(),
		Pos:     pos,
	}
}
