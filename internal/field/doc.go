// Package field declares which filter fields a search context recognizes
// and how each field's literal is parsed.
//
// A Registry is immutable once built and is safe to share between
// goroutines. Names are matched case-insensitively using Unicode case
// folding, so "Title:x" and "title:x" select the same field.
//
// Registries come from MangaRegistry for the built-in catalog fields, or
// from a CUE file of the form:
//
//	fields: {
//		title:     "string"
//		chapters:  "cmp_int"
//		favorites: "zero_arg"
//		status:    "int"
//	}
package field
