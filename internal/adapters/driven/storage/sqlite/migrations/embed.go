// Package migrations holds the schema of the SQLite snapshot store.
//
// Files are named NNN_description.up.sql and applied in version order.
package migrations

import "embed"

// FS holds the migration scripts.
//
//go:embed *.sql
var FS embed.FS
