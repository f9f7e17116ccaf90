// Package search compiles a parsed filter plus a request envelope into one
// record-store query string.
//
//	text ──filter.Parse──▶ *filter.Group ──Compiler.Compile──▶ query string
//
// Compile resolves every leaf through a resolve.Resolver, concurrently and
// bounded by Config.Concurrency. Unlike parsing, resolution is strict: the
// first failing leaf (in tree order) cancels outstanding lookups and the
// whole compile fails with an error wrapping ErrInvalidInput. Dropping an
// unresolved leaf would widen the result set.
//
// The ordering picks the base source as well as the ORDER clause:
//
//	Created, Alphabetical,
//	Updated, Popularity   primary table, ORDER BY <column>
//	Random                primary table, ORDER BY RAND()
//	LastRead              latest-activity pivot, no extra ORDER BY
package search
