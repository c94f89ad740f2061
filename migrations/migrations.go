// Package migrations contiene el esquema SQL versionado, aplicado con goose al arrancar.
package migrations

import "embed"

// FS migraciones goose embebidas en el binario.
//
//go:embed *.sql
var FS embed.FS
