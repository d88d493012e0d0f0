// Package migrations содержит встроенную SQL-схему.
// Применяется через golang-migrate при старте, если database.migrate = true.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
