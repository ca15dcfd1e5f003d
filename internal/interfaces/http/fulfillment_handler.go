package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/fulfillment"
)

// FulfillmentHandler maneja las peticiones HTTP del flujo de despacho de órdenes de venta.
type FulfillmentHandler struct {
	uc *fulfillment.UseCase
}

// NewFulfillmentHandler construye el handler.
func NewFulfillmentHandler(uc *fulfillment.UseCase) *FulfillmentHandler {
	return &FulfillmentHandler{uc: uc}
}

// Confirm godoc
// @Summary      Confirmar una orden de venta reservando todas sus líneas
// @Description  Todo o nada: si una línea no alcanza disponible, la llamada falla sin
//	dejar ninguna reserva neta.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Orden de venta"
// @Param        X-Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.ConfirmRequest  false  "warehouse_id para líneas sin bodega propia"
// @Success      201  {object}  fulfillment.ConfirmResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/confirm [post]
func (h *FulfillmentHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	result, err := h.uc.Confirm(c.Context(), c.Params("id"), in.WarehouseID, idempotencyKey(c, in.IdempotencyKey))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Ship godoc
// @Summary      Despachar una orden de venta
// @Description  Sin líneas consume cada reserva pendiente por completo; con líneas
//	despacha cantidades parciales dejando el resto reservado.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Orden de venta"
// @Param        X-Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.ShipRequest  false  "lines opcionales para despacho parcial"
// @Success      200  {object}  fulfillment.ShipResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/ship [post]
func (h *FulfillmentHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	lines := make([]fulfillment.ShipLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, fulfillment.ShipLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	result, err := h.uc.Ship(c.Context(), c.Params("id"), lines, idempotencyKey(c, in.IdempotencyKey))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Cancel godoc
// @Summary      Cancelar una orden de venta liberando sus reservas activas
// @Description  Lo ya despachado no se revierte: una devolución es un ajuste explícito.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Orden de venta"
// @Param        X-Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200  {object}  fulfillment.CancelResult
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/cancel [post]
func (h *FulfillmentHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	result, err := h.uc.Cancel(c.Context(), c.Params("id"), idempotencyKey(c, in.IdempotencyKey))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
