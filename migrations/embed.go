// Package migrations embeds the versioned SQL schema applied by cmd/migrate.
package migrations

import "embed"

// FS holds the up/down migration pairs, named <version>_<title>.<up|down>.sql.
//
//go:embed *.sql
var FS embed.FS
