package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP de stock y del libro de movimientos.
type StockHandler struct {
	uc *inventory.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetAvailable godoc
// @Summary      Disponible de un repuesto en una bodega
// @Tags         stock
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.AvailableResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/available [get]
func (h *StockHandler) GetAvailable(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	available, err := h.uc.GetAvailable(c.Context(), productID, warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.AvailableResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Available:   available,
	})
}

// Receipt godoc
// @Summary      Recepción directa de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.ReceiptRequest  true  "product_id, warehouse_id, quantity, unit_cost"
// @Success      201  {object}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *StockHandler) Receipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.ApplyReceipt(c.Context(), inventory.ReceiptInput{
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		Reference:      in.Reference,
		ReferenceType:  in.ReferenceType,
		IdempotencyKey: idempotencyKey(c, ""),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// Adjustment godoc
// @Summary      Ajuste por conteo físico
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, warehouse_id, quantity_delta (firmado), reason"
// @Success      201  {object}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.ApplyAdjustment(c.Context(), inventory.AdjustmentInput{
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		QuantityDelta: in.QuantityDelta,
		Reason:        in.Reason,
		Reference:     in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// Consumption godoc
// @Summary      Consumo de repuestos en orden de trabajo
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumptionRequest  true  "product_id, warehouse_id, quantity, work_order_id"
// @Success      201  {object}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/consumptions [post]
func (h *StockHandler) Consumption(c *fiber.Ctx) error {
	var in dto.ConsumptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.ApplyConsumption(c.Context(), inventory.ConsumptionInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		WorkOrderID: in.WorkOrderID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201  {array}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movs, err := h.uc.Transfer(c.Context(), inventory.TransferInput{
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Reference:       in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, movementToDTO(m))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Consulta del libro de movimientos
// @Tags         stock
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega afectada"
// @Param        type          query  string  false  "receipt, issue, adjustment, consumption, transfer"
// @Param        reference     query  string  false  "Filtrar por referencia"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        limit         query  int     false  "Máx 200"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		Reference:   c.Query("reference"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		filter.To = &t
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	movs, err := h.uc.ListMovements(c.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, movementToDTO(m))
	}
	return c.JSON(fiber.Map{
		"movements": out,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(out)},
	})
}

// Rebuild godoc
// @Summary      Reconstruir un registro de stock desde el libro
// @Description  Vía de reparación explícita: rehace cantidad y costo promedio desde los
//	asientos y lo reservado desde las reservas activas.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RebuildRequest  true  "product_id, warehouse_id"
// @Success      200  {object}  dto.StockRecordDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/rebuild [post]
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	var in dto.RebuildRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.RebuildFromLedger(c.Context(), in.ProductID, in.WarehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stockRecordToDTO(rec))
}

func movementToDTO(m *entity.Movement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:                m.ID,
		Seq:               m.Seq,
		Type:              m.Type,
		ProductID:         m.ProductID,
		QuantityDelta:     m.QuantityDelta,
		WarehouseFrom:     m.WarehouseFrom,
		WarehouseTo:       m.WarehouseTo,
		UnitCost:          m.UnitCost,
		Reference:         m.Reference,
		ReferenceType:     m.ReferenceType,
		ResultingQuantity: m.ResultingQuantity,
		Reason:            m.Reason,
		Metadata:          m.Metadata,
		CreatedAt:         m.CreatedAt,
	}
}

func stockRecordToDTO(r *entity.StockRecord) dto.StockRecordDTO {
	return dto.StockRecordDTO{
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		Reserved:    r.Reserved,
		Available:   r.Available(),
		AvgCost:     r.AvgCost,
		UpdatedAt:   r.UpdatedAt,
	}
}
