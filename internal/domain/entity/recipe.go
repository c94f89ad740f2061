package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownMaterialName se guarda como nombre cuando el insumo asignado no existe.
const UnknownMaterialName = "Insumo desconocido"

// RecipeLine es una línea de la receta de un producto: cantidad de un insumo por unidad fabricada.
// MaterialID es una referencia débil: el insumo puede haber sido eliminado.
type RecipeLine struct {
	ID                   string
	ProductID            string
	MaterialID           string
	Quantity             decimal.Decimal
	Unit                 string
	MaterialNameSnapshot string
	CreatedAt            time.Time
}

// DisplayName nombre a mostrar para la línea (snapshot o, en su defecto, el ID del insumo).
func (l RecipeLine) DisplayName() string {
	if l.MaterialNameSnapshot != "" {
		return l.MaterialNameSnapshot
	}
	return l.MaterialID
}
