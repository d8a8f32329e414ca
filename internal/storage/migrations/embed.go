// Package migrations holds the embedded schemas for both databases and the
// startup code that applies them.
package migrations

import "embed"

// PostgresFS holds the registry, lock, bootstrap and balance schemas.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the settlement event schema.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
