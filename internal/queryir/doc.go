// Package queryir provides the resolved query intermediate representation
// for catalog searches.
//
// QueryIR is the boundary between the filter language and the record
// store's query text:
//
//	[filter text] → [filter tree] → [Query IR] → [query string]
//
// Everything in the IR is already validated and resolved: field/value
// pairings have been checked and names have been turned into record
// identifiers. Rendering the IR never performs lookups.
//
// SEALED INTERFACES:
//
// Predicate, Filter, Base and Ordering are sealed with marker methods.
// Only types in this package implement them, so renderers can use
// exhaustive type switches:
//
//	switch p := pred.(type) {
//	case Title:
//	    // fuzzy title match
//	case Tag:
//	    // tag set membership
//	}
//
// NEGATION:
//
// There is no Not node. Negation lives on Cond and is applied by the
// renderer flipping the comparison operator in place, so every rendered
// condition stays a single comparison.
package queryir
