// Package migrations embeds the SQL schema migrations for every supported
// database driver. Each driver has its own subdirectory.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
