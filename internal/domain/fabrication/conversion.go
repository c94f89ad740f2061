package fabrication

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// NormalizeUnit recorta espacios y pliega mayúsculas/minúsculas para comparar unidades.
func NormalizeUnit(unit string) string {
	return cases.Fold().String(strings.TrimSpace(unit))
}

// IsMajorUnit indica si la unidad de la línea de receta coincide con la unidad mayor del insumo.
// Una unidad vacía nunca coincide.
func IsMajorUnit(m *entity.Material, line entity.RecipeLine) bool {
	lineUnit := NormalizeUnit(line.Unit)
	major := NormalizeUnit(m.MajorUnit)
	return lineUnit != "" && major != "" && lineUnit == major
}

// PerUnitMinor cantidad de la línea expresada en unidad menor para un único producto.
// Si la receta está en unidad mayor multiplica por el factor; si no, la toma tal cual.
func PerUnitMinor(m *entity.Material, line entity.RecipeLine) decimal.Decimal {
	if IsMajorUnit(m, line) {
		return line.Quantity.Mul(m.EffectiveFactor())
	}
	return line.Quantity
}

var maxStock = decimal.NewFromInt(math.MaxInt64)

// RequiredMinorUnits cantidad a descontar del stock (unidad menor) para fabricar units productos.
// El resultado se trunca hacia abajo (no se redondea) y nunca es negativo.
// ok es false si la cantidad no cabe en int64: ningún stock puede cubrirla.
// Función pura: no lee ni escribe estado.
func RequiredMinorUnits(m *entity.Material, line entity.RecipeLine, units int64) (required int64, ok bool) {
	total := PerUnitMinor(m, line).Mul(decimal.NewFromInt(units)).Floor()
	if total.Sign() <= 0 {
		return 0, true
	}
	if total.GreaterThan(maxStock) {
		return math.MaxInt64, false
	}
	return total.IntPart(), true
}

// DeclaredConsumption cantidad declarada en la receta multiplicada por las unidades (para auditoría).
func DeclaredConsumption(line entity.RecipeLine, units int64) decimal.Decimal {
	return line.Quantity.Mul(decimal.NewFromInt(units))
}
