package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/application/fabrication"
)

// FabricationHandler fabricación de productos e historial (protegido).
type FabricationHandler struct {
	manufacture *fabrication.ManufactureUseCase
	history     *fabrication.HistoryUseCase
}

// NewFabricationHandler construye el handler.
func NewFabricationHandler(manufacture *fabrication.ManufactureUseCase, history *fabrication.HistoryUseCase) *FabricationHandler {
	return &FabricationHandler{manufacture: manufacture, history: history}
}

// Manufacture godoc
// @Summary      Fabricar producto
// @Description  Descuenta los insumos de la receta, suma stock al producto y registra la fabricación en una sola transacción.
// @Description  Si algún insumo falta o no alcanza, no se modifica nada y se listan todos los motivos.
// @Tags         fabrications
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ManufactureRequest  true  "product_id y quantity (entero > 0)"
// @Success      201   {object}  dto.FabricationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/fabrications [post]
func (h *FabricationHandler) Manufacture(c *fiber.Ctx) error {
	var in dto.ManufactureRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	fab, err := h.manufacture.Manufacture(c.UserContext(), fabrication.ManufactureInput{
		ProductID: in.ProductID,
		Units:     in.Quantity,
		UserEmail: GetActingUser(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToFabricationResponse(fab))
}

// List godoc
// @Summary      Historial de fabricaciones
// @Tags         fabrications
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  dto.FabricationListResponse
// @Router       /api/fabrications [get]
func (h *FabricationHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.history.List(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Historial de fabricaciones de un producto
// @Tags         fabrications
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.FabricationListResponse
// @Router       /api/products/{id}/fabrications [get]
func (h *FabricationHandler) ListByProduct(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.history.ListByProduct(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener fabricación
// @Tags         fabrications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la fabricación"
// @Success      200  {object}  dto.FabricationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/fabrications/{id} [get]
func (h *FabricationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.history.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "fabricación no encontrada")
	}
	return c.JSON(out)
}
