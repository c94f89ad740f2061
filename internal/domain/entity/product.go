package entity

import (
	"strings"
	"time"
)

// Product representa un producto terminado. El ID es el código normalizado.
// CurrentStock solo cambia vía movimientos o fabricación.
type Product struct {
	ID           string
	Code         string
	Name         string
	Category     string
	Location     string
	CurrentStock int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeCode devuelve el código de negocio recortado y en minúsculas (usado como ID).
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
