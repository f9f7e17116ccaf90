// Package resolve maps validated filter leaves onto queryir predicates.
//
// A Resolver owns a table of Rules, one per (field, value shape) pairing.
// A leaf whose field is known to the registry but whose value shape has no
// rule is an UNKNOWN_PREDICATE error; a rule whose identifier lookup misses
// is a LOOKUP_FAILED error. Both abort compilation of the whole request.
//
// Identifier lookups go through the Lookups capability handed to
// NewResolver. Each lookup-backed rule performs exactly one call.
package resolve
