// Package harness runs filter-language scenarios end to end.
//
// A scenario seeds an in-memory identifier directory, then parses and
// compiles each case's query text, checking the filter tree, diagnostics
// and compiled query against the case's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	viewer: users:⟨1⟩
//	default_or: false
//	directory:
//	  users: [oda]
//	  kinds: [manga]
//	  tags:
//	    - {name: romance, sex: unisex}
//	cases:
//	  - name: two titles
//	    query: "a b"
//	    request: {order: created, desc: true, page: 1, limit: 20}
//	    expect:
//	      tree: 'and:(title:"a" title:"b")'
//	      contains: ["ORDER BY created DESC"]
//
// # Expectations
//
//   - tree: exact filter tree, as printed by filter.Group.String
//   - diagnostics: expected parse diagnostics, each a substring of the
//     diagnostic at the same position; the count must match
//   - contains / not_contains: substrings of the compiled query
//   - query: exact compiled query
//   - error: substring of the compile error; compile must fail
//
// # Deterministic Testing
//
// Directory ids come from testutil.SequentialIDs, so the same scenario
// always compiles to the same text and reports compare byte for byte
// against golden files.
package harness
