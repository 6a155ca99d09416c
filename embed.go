// Package shopcore exposes the embedded database migrations.
package shopcore

import "embed"

//go:embed migrations
var MigrationsFS embed.FS
