package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un insumo (materia prima) consumido por la fabricación.
// Stock siempre está expresado en la unidad menor (Unit); ConversionFactor indica
// cuántas unidades menores hay en una unidad mayor (MajorUnit).
type Material struct {
	ID               string
	Code             string
	Name             string
	Category         string
	Unit             string // unidad menor, ej. "g"
	MajorUnit        string // unidad mayor, ej. "kg"
	ConversionFactor decimal.Decimal
	Location         string
	Stock            int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveFactor devuelve el factor de conversión; cero, negativo o ausente equivale a 1.
func (m *Material) EffectiveFactor() decimal.Decimal {
	if m == nil || m.ConversionFactor.Sign() <= 0 {
		return decimal.NewFromInt(1)
	}
	return m.ConversionFactor
}

// IsLowStock indica si el stock es menor a una unidad mayor (stock < factor).
func (m *Material) IsLowStock() bool {
	if m.ConversionFactor.Sign() <= 0 {
		return false
	}
	return decimal.NewFromInt(m.Stock).LessThan(m.ConversionFactor)
}
