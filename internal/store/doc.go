// Package store provides the SQLite-backed identifier directory that
// answers the search compiler's name lookups.
//
// The directory holds three tables:
//   - users: display names of artists, authors and uploaders
//   - kinds: record kinds (manga, manhwa, ...)
//   - tags:  tag names, each bound to a demographic (female, male, unisex)
//
// Store implements resolve.Lookups. Names match case-insensitively; tag
// searches match by substring, optionally narrowed to one demographic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All listing queries order by name, then id COLLATE BINARY, so output is
// identical across runs.
package store
