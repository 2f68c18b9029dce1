// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds every *.up.sql file in lexical order of application.
//
//go:embed *.sql
var FS embed.FS
