// Package migrations embeds the SQL migrations of the pbx schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
