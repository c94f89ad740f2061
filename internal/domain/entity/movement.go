package entity

import "time"

// Tipos de movimiento de producto terminado.
const (
	MovementTypeEntry = "entrada"
	MovementTypeExit  = "salida"
)

// Movement registra una entrada o salida manual de un producto. Inmutable.
type Movement struct {
	ID        string
	ProductID string
	Type      string
	Quantity  int64
	Reason    string
	UserEmail string
	Date      time.Time
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (m *Movement) Sign() int64 {
	if m.Type == MovementTypeExit {
		return -1
	}
	return 1
}

// ValidMovementType indica si t es un tipo de movimiento soportado.
func ValidMovementType(t string) bool {
	return t == MovementTypeEntry || t == MovementTypeExit
}
