package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/receiving"
)

// ReceivingHandler maneja las peticiones HTTP de recepción de órdenes de compra.
type ReceivingHandler struct {
	uc *receiving.ReceiveUseCase
}

// NewReceivingHandler construye el handler.
func NewReceivingHandler(uc *receiving.ReceiveUseCase) *ReceivingHandler {
	return &ReceivingHandler{uc: uc}
}

// Receive godoc
// @Summary      Registrar recepción contra una orden de compra
// @Description  Valida cada línea contra lo pendiente de la orden y aplica todas en una
//	sola unidad atómica. Un reenvío con la misma clave devuelve el resultado
//	original sin duplicar stock.
// @Tags         receiving
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.ReceiveRequest  true  "purchase_order_id, warehouse_id, lines"
// @Success      201  {object}  receiving.ReceiveResult
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receiving/receipts [post]
func (h *ReceivingHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]receiving.ReceiveLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, receiving.ReceiveLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		})
	}
	result, err := h.uc.Receive(c.Context(), receiving.ReceiveInput{
		PurchaseOrderID: in.PurchaseOrderID,
		WarehouseID:     in.WarehouseID,
		Lines:           lines,
		IdempotencyKey:  idempotencyKey(c, in.IdempotencyKey),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
