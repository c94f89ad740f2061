package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// ManufactureRequest body para POST /api/fabrications.
type ManufactureRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ConsumedMaterialResponse insumo consumido (cantidad declarada en receta × unidades).
type ConsumedMaterialResponse struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// FabricationResponse registro de fabricación.
type FabricationResponse struct {
	ID                string                     `json:"id"`
	ProductID         string                     `json:"product_id"`
	ProductName       string                     `json:"product_name"`
	Quantity          int64                      `json:"quantity"`
	MaterialsConsumed []ConsumedMaterialResponse `json:"materials_consumed"`
	Date              time.Time                  `json:"date"`
	UserEmail         string                     `json:"user_email"`
}

// FabricationListResponse historial paginado.
type FabricationListResponse struct {
	Items []FabricationResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ToFabricationResponse mapea la entidad a su DTO.
func ToFabricationResponse(f *entity.Fabrication) *FabricationResponse {
	if f == nil {
		return nil
	}
	consumed := make([]ConsumedMaterialResponse, 0, len(f.MaterialsConsumed))
	for _, c := range f.MaterialsConsumed {
		consumed = append(consumed, ConsumedMaterialResponse{Name: c.Name, Quantity: c.Quantity, Unit: c.Unit})
	}
	return &FabricationResponse{
		ID:                f.ID,
		ProductID:         f.ProductID,
		ProductName:       f.ProductName,
		Quantity:          f.Quantity,
		MaterialsConsumed: consumed,
		Date:              f.Date,
		UserEmail:         f.UserEmail,
	}
}

// ToFabricationList mapea una página de fabricaciones.
func ToFabricationList(list []*entity.Fabrication, limit, offset int) *FabricationListResponse {
	items := make([]FabricationResponse, 0, len(list))
	for _, f := range list {
		items = append(items, *ToFabricationResponse(f))
	}
	return &FabricationListResponse{Items: items, Page: PageResponse{Limit: limit, Offset: offset}}
}
