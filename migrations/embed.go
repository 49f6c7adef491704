// Package migrations embeds the golang-migrate SQL files of the schema.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
