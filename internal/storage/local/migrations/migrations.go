// Package migrations embeds the schema of the on-device database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
