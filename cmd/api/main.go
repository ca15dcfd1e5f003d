package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/fulfillment"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/receiving"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Taller-Repuestos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Taller-Repuestos-api/internal/interfaces/http"
	"github.com/jhoicas/Taller-Repuestos-api/pkg/config"
	"github.com/jhoicas/Taller-Repuestos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner  inventory.TxRunner
		stockRepo repository.StockRecordRepository
		movRepo   repository.MovementRepository
		resRepo   repository.ReservationRepository
		idemRepo  repository.IdempotencyRepository
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		stockRepo = postgres.NewStockRecordRepository(pool)
		movRepo = postgres.NewMovementRepository(pool)
		resRepo = postgres.NewReservationRepository(pool)
		idemRepo = postgres.NewIdempotencyRepository(pool)
	default:
		store := memory.NewStore()
		txRunner = memory.NewTxRunner(store)
		stockRepo = memory.NewStockRecordRepository(store)
		movRepo = memory.NewMovementRepository(store)
		resRepo = memory.NewReservationRepository(store)
		idemRepo = memory.NewIdempotencyRepository(store)
	}

	guard := inventory.NewIdempotencyGuard(txRunner, idemRepo)
	stockUC := inventory.NewStockUseCase(txRunner, guard, stockRepo, movRepo)
	reservationManager := inventory.NewReservationManager(txRunner, resRepo)
	receiveUC := receiving.NewReceiveUseCase(guard)
	fulfillmentUC := fulfillment.NewUseCase(guard)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:     stockUC,
		Reservation: reservationManager,
		ReceiveUC:   receiveUC,
		Fulfillment: fulfillmentUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
