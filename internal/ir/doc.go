// Package ir provides the literal value types shared by every stage of the
// filter pipeline.
//
// This package contains value definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the literal layer at the bottom of the dependency graph.
//
// Key design constraints:
//   - Value is sealed: None, String, Int and CmpInt are the only variants
//   - Integers are always int64, never floats
//   - Canonical JSON (sorted keys, NFC strings) is the only encoding used
//     for fingerprints
package ir
