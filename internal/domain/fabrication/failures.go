package fabrication

import (
	"fmt"
	"strings"

	"github.com/jhoicas/insumos-api/internal/domain"
)

// FailureKind tipo de problema detectado para una línea de receta.
type FailureKind string

const (
	FailureMaterialNotFound  FailureKind = "MATERIAL_NOT_FOUND"
	FailureInsufficientStock FailureKind = "INSUFFICIENT_STOCK"
)

// MaterialFailure problema bloqueante de una línea de receta.
type MaterialFailure struct {
	Kind         FailureKind
	MaterialID   string
	MaterialName string
	Required     int64
	Available    int64
	Unit         string
}

func (f MaterialFailure) Error() string {
	if f.Kind == FailureMaterialNotFound {
		return "Insumo inexistente: " + f.MaterialName
	}
	return fmt.Sprintf("%s: requiere %d %s, hay %d %s", f.MaterialName, f.Required, f.Unit, f.Available, f.Unit)
}

func (f MaterialFailure) Unwrap() error {
	if f.Kind == FailureMaterialNotFound {
		return domain.ErrMaterialNotFound
	}
	return domain.ErrInsufficientStock
}

// Failures acumula los problemas de la pasada de validación.
type Failures []MaterialFailure

// MaterialNotFound agrega un insumo inexistente.
func (fs *Failures) MaterialNotFound(materialID, name string) {
	if name == "" {
		name = materialID
	}
	*fs = append(*fs, MaterialFailure{Kind: FailureMaterialNotFound, MaterialID: materialID, MaterialName: name})
}

// InsufficientStock agrega un faltante de stock.
func (fs *Failures) InsufficientStock(materialID, name string, required, available int64, unit string) {
	if unit == "" {
		unit = "u"
	}
	*fs = append(*fs, MaterialFailure{
		Kind:         FailureInsufficientStock,
		MaterialID:   materialID,
		MaterialName: name,
		Required:     required,
		Available:    available,
		Unit:         unit,
	})
}

// Err devuelve nil si no hay problemas o un *AbortedError con todos ellos.
func (fs Failures) Err() error {
	if len(fs) == 0 {
		return nil
	}
	out := make([]MaterialFailure, len(fs))
	copy(out, fs)
	return &AbortedError{Failures: out}
}

// AbortedError fabricación abortada antes de escribir; lista todos los motivos bloqueantes.
type AbortedError struct {
	Failures []MaterialFailure
}

func (e *AbortedError) Error() string {
	return strings.Join(e.Messages(), " | ")
}

// Messages mensajes legibles de cada problema, en el orden de la receta.
func (e *AbortedError) Messages() []string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return msgs
}

// Is permite errors.Is(err, domain.ErrFabricationAborted).
func (e *AbortedError) Is(target error) bool {
	return target == domain.ErrFabricationAborted
}

func (e *AbortedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
