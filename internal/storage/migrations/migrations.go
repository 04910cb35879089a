// Package migrations embeds the SQL schema migrations applied via goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
