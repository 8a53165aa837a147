// Package snapshot persists cross-link sets in SQLite.
//
// A snapshot is an immutable copy of an xlink.Store: its key map, extra
// columns and records in order. Each record row carries its canonical JSON
// in the fields column and its content identity, so sets can be filtered in
// SQL (see internal/xlsql) and records located across snapshots.
//
// # Ordering
//
// Snapshots are numbered with a logical seq on save and listed by it.
// Records keep their store position as seq. Every query orders by seq ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Records are deleted with their snapshot
package snapshot
