package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/fulfillment"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/receiving"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC     *inventory.StockUseCase
	Reservation *inventory.ReservationManager
	ReceiveUC   *receiving.ReceiveUseCase
	Fulfillment *fulfillment.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Stock y libro de movimientos
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/available", stockHandler.GetAvailable)
	stock.Post("/receipts", stockHandler.Receipt)
	stock.Post("/adjustments", stockHandler.Adjustment)
	stock.Post("/consumptions", stockHandler.Consumption)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Get("/movements", stockHandler.ListMovements)
	stock.Post("/rebuild", stockHandler.Rebuild)

	// Reservas
	reservations := api.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservation)
	reservations.Post("/", reservationHandler.Reserve)
	reservations.Get("/:id", reservationHandler.Get)
	reservations.Post("/:id/consume", reservationHandler.Consume)
	reservations.Post("/:id/cancel", reservationHandler.Cancel)

	// Recepción de compras
	recv := api.Group("/receiving")
	receivingHandler := NewReceivingHandler(deps.ReceiveUC)
	recv.Post("/receipts", receivingHandler.Receive)

	// Despacho de ventas
	salesOrders := api.Group("/sales-orders")
	fulfillmentHandler := NewFulfillmentHandler(deps.Fulfillment)
	salesOrders.Post("/:id/confirm", fulfillmentHandler.Confirm)
	salesOrders.Post("/:id/ship", fulfillmentHandler.Ship)
	salesOrders.Post("/:id/cancel", fulfillmentHandler.Cancel)
}
