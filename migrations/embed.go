// Package migrations embeds the SQL schema migrations so both cmd/migrate
// and the API startup path can run them without filesystem access.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
