package migrations

import "embed"

// FS embeds the SQL migration files for goose.
//
//go:embed *.sql
var FS embed.FS
