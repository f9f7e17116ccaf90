package queryir

import (
	"fmt"
	"strings"
)

// ValidationResult lists structural problems in a Select.
type ValidationResult struct {
	// OK is true when Problems is empty.
	OK bool

	// Problems is in traversal order.
	Problems []string
}

// Err returns nil when the plan is valid, or a single error joining every
// problem.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return fmt.Errorf("invalid query plan: %s", strings.Join(r.Problems, "; "))
}

// Validate checks a Select for plans the renderer cannot turn into a
// meaningful query:
//  1. at least one projected field
//  2. a source, and a positive limit
//  3. a viewer whenever a viewer-scoped predicate or source is used
//  4. every resolved Tag carries at least one identifier
//  5. a LatestActivity source carries no extra ordering
//
// Validate is a pure function with no side effects.
func Validate(sel Select) ValidationResult {
	v := &validator{viewer: sel.Viewer, problems: []string{}}
	v.validateSelect(sel)
	return ValidationResult{OK: len(v.problems) == 0, Problems: v.problems}
}

type validator struct {
	viewer   string
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateSelect(sel Select) {
	if len(sel.Fields) == 0 {
		v.addProblem("no projected fields")
	}
	if sel.Limit == 0 {
		v.addProblem("limit must be positive")
	}

	switch src := sel.Source.(type) {
	case nil:
		v.addProblem("nil source")
	case Table:
		if src.Name == "" {
			v.addProblem("table source has no name")
		}
	case LatestActivity:
		if src.Viewer == "" {
			v.addProblem("latest activity source requires a viewer")
		}
		if sel.Order != nil {
			v.addProblem("latest activity source is already ordered, got %T ordering", sel.Order)
		}
	default:
		v.addProblem("unknown source type %T", src)
	}

	if ob, ok := sel.Order.(OrderBy); ok && ob.Column == "" {
		v.addProblem("order by has no column")
	}

	if sel.Filter != nil {
		v.validateFilter(sel.Filter)
	}
}

func (v *validator) validateFilter(f Filter) {
	switch node := f.(type) {
	case Cond:
		v.validatePredicate(node.Predicate)
	case Bool:
		for _, t := range node.Terms {
			v.validateFilter(t)
		}
	case nil:
		v.addProblem("nil filter term")
	default:
		v.addProblem("unknown filter type %T", node)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate")
	case Favorites, Reading:
		if v.viewer == "" {
			v.addProblem("%s requires a viewer", pred.Field())
		}
	case Tag:
		if len(pred.IDs) == 0 {
			v.addProblem("tag %q resolved to no identifiers", pred.Text)
		}
	case Artist:
		v.requireID(pred.Field(), pred.Name, pred.ID)
	case Author:
		v.requireID(pred.Field(), pred.Name, pred.ID)
	case Uploader:
		v.requireID(pred.Field(), pred.Name, pred.ID)
	case Kind:
		v.requireID(pred.Field(), pred.Name, pred.ID)
	}
}

func (v *validator) requireID(field, name, id string) {
	if id == "" {
		v.addProblem("%s %q has no resolved identifier", field, name)
	}
}
