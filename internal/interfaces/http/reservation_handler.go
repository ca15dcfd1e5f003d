package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// ReservationHandler maneja las peticiones HTTP de reservas.
type ReservationHandler struct {
	manager *inventory.ReservationManager
}

// NewReservationHandler construye el handler.
func NewReservationHandler(manager *inventory.ReservationManager) *ReservationHandler {
	return &ReservationHandler{manager: manager}
}

// Reserve godoc
// @Summary      Apartar stock para una línea de orden de venta
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "product_id, warehouse_id, quantity, sales_order_line_id"
// @Success      201  {object}  dto.ReservationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.manager.Reserve(c.Context(), in.ProductID, in.WarehouseID, in.Quantity, in.SalesOrderLineID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reservationToDTO(res))
}

// Get godoc
// @Summary      Consultar una reserva
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reserva"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	res, err := h.manager.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reservationToDTO(res))
}

// Consume godoc
// @Summary      Despachar unidades contra una reserva
// @Description  Puede llamarse varias veces hasta agotar la reserva; cada consumo deja
//	su asiento issue valuado al costo promedio vigente.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Reserva"
// @Param        body  body  dto.ConsumeRequest  true  "actual_quantity"
// @Success      201  {object}  dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/consume [post]
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.manager.Consume(c.Context(), c.Params("id"), in.ActualQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementToDTO(mov))
}

// Cancel godoc
// @Summary      Cancelar una reserva y liberar lo retenido
// @Tags         reservations
// @Produce      json
// @Param        id  path  string  true  "Reserva"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	if err := h.manager.Cancel(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva cancelada"})
}

func reservationToDTO(r *entity.Reservation) dto.ReservationDTO {
	return dto.ReservationDTO{
		ID:               r.ID,
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		SalesOrderLineID: r.SalesOrderLineID,
		Quantity:         r.Quantity,
		State:            r.State,
		CreatedAt:        r.CreatedAt,
		ConsumedAt:       r.ConsumedAt,
		CancelledAt:      r.CancelledAt,
	}
}
