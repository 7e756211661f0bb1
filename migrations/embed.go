// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

//go:embed postgres
var FS embed.FS
