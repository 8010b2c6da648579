// Package migrations embeds the SQL schema of the dialogs database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
