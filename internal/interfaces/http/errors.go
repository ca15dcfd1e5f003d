package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
)

// respondError traduce los errores de dominio a estatus HTTP. Los conflictos de
// concurrencia llegan hasta aquí solo si se agotaron los reintentos del caso de uso.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		code := "INSUFFICIENT_STOCK"
		if errors.Is(err, domain.ErrOverReceipt) {
			code = "OVER_RECEIPT"
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    code,
			Message: err.Error(),
			Detail: fiber.Map{
				"product_id":   stockErr.ProductID,
				"warehouse_id": stockErr.WarehouseID,
				"requested":    stockErr.Requested,
				"available":    stockErr.Available,
			},
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidReservationState):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_RESERVATION_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrOverReceipt):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OVER_RECEIPT", Message: err.Error()})
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// idempotencyKey resuelve la clave: header X-Idempotency-Key o el campo del body.
func idempotencyKey(c *fiber.Ctx, bodyKey string) string {
	if h := c.Get("X-Idempotency-Key"); h != "" {
		return h
	}
	return bodyKey
}
