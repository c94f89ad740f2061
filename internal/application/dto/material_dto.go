package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// CreateMaterialRequest entrada para crear un insumo. Stock en unidad menor.
type CreateMaterialRequest struct {
	Code             string          `json:"code" validate:"required,max=100"`
	Name             string          `json:"name" validate:"required,max=200"`
	Category         string          `json:"category" validate:"max=100"`
	Unit             string          `json:"unit" validate:"required,max=20"`
	MajorUnit        string          `json:"major_unit" validate:"max=20"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Location         string          `json:"location" validate:"max=100"`
	Stock            int64           `json:"stock" validate:"gte=0"`
}

// UpdateMaterialRequest actualización parcial de un insumo.
type UpdateMaterialRequest struct {
	Code             *string          `json:"code" validate:"omitempty,min=1,max=100"`
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category         *string          `json:"category" validate:"omitempty,max=100"`
	Unit             *string          `json:"unit" validate:"omitempty,min=1,max=20"`
	MajorUnit        *string          `json:"major_unit" validate:"omitempty,max=20"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
	Location         *string          `json:"location" validate:"omitempty,max=100"`
	Stock            *int64           `json:"stock" validate:"omitempty,gte=0"`
}

// BulkDeleteMaterialsRequest eliminación de varios insumos.
type BulkDeleteMaterialsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// MaterialResponse salida de un insumo.
type MaterialResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Unit             string          `json:"unit"`
	MajorUnit        string          `json:"major_unit"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	Location         string          `json:"location"`
	Stock            int64           `json:"stock"`
	StockDisplay     string          `json:"stock_display"`
	LowStock         bool            `json:"low_stock"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MaterialListResponse lista paginada de insumos.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToMaterialResponse mapea la entidad a su DTO.
func ToMaterialResponse(m *entity.Material) *MaterialResponse {
	if m == nil {
		return nil
	}
	return &MaterialResponse{
		ID:               m.ID,
		Code:             m.Code,
		Name:             m.Name,
		Category:         m.Category,
		Unit:             m.Unit,
		MajorUnit:        m.MajorUnit,
		ConversionFactor: m.ConversionFactor,
		Location:         m.Location,
		Stock:            m.Stock,
		StockDisplay:     StockDisplay(m),
		LowStock:         m.IsLowStock(),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// StockDisplay stock legible: "2500 g (2 kg y 500 g)" cuando el factor es mayor a 1.
func StockDisplay(m *entity.Material) string {
	if m.ConversionFactor.LessThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Sprintf("%d %s", m.Stock, m.Unit)
	}
	stock := decimal.NewFromInt(m.Stock)
	major := stock.Div(m.ConversionFactor).Floor()
	rest := stock.Mod(m.ConversionFactor)
	return fmt.Sprintf("%d %s (%s %s y %s %s)", m.Stock, m.Unit, major.String(), m.MajorUnit, rest.String(), m.Unit)
}
