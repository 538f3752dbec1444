// Package migrations holds the SQLite schema for the search store: the
// documents table, its FTS5 index and the index_meta row.
package migrations

import "embed"

// FS holds the *.up.sql and *.down.sql files.
//
//go:embed *.sql
var FS embed.FS
