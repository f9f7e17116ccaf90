// Package filter turns the user-facing search text into a filter tree.
//
// GRAMMAR:
//
//	field:value      condition on field
//	field:!value     negated condition
//	value            condition on the default field (title)
//	"a b"            double quotes keep spaces and parens literal
//	\x               backslash escapes the next character anywhere
//	( ... )          group using the caller's default operator
//	or:( ... )       disjunctive group
//	and:( ... )      conjunctive group
//
// Parsing never fails. Unknown fields and malformed literals drop only the
// offending token and are returned as diagnostics; stray quotes and
// unbalanced parentheses degrade to best-effort grouping.
//
// TREE:
//
// Node is a sealed interface implemented by Leaf and *Group. A Group never
// mixes AND and OR; mixing requires nesting. Children keep input order.
// Trees are built once per query string and treated as immutable.
package filter
