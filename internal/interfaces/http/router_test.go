package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Taller-Repuestos-api/internal/application/fulfillment"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/receiving"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Taller-Repuestos-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test: app Fiber completa sobre el store en memoria.
// ──────────────────────────────────────────────────────────────────────────────

func buildTestApp() (*fiber.App, *memory.Store) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	guard := inventory.NewIdempotencyGuard(runner, memory.NewIdempotencyRepository(store))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:     inventory.NewStockUseCase(runner, guard, memory.NewStockRecordRepository(store), memory.NewMovementRepository(store)),
		Reservation: inventory.NewReservationManager(runner, memory.NewReservationRepository(store)),
		ReceiveUC:   receiving.NewReceiveUseCase(guard),
		Fulfillment: fulfillment.NewUseCase(guard),
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo por la superficie HTTP: recepción, reserva, consumo, libro.
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_FlujoRecepcionReservaConsumo(t *testing.T) {
	app, _ := buildTestApp()

	// Recepción directa con clave de idempotencia por header.
	resp, raw := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id":   "filtro-aceite",
		"warehouse_id": "central",
		"quantity":     10,
		"unit_cost":    "12.50",
	}, map[string]string{"X-Idempotency-Key": "rec-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var mov struct {
		Type              string `json:"type"`
		ResultingQuantity int64  `json:"resulting_quantity"`
	}
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, entity.MovementTypeReceipt, mov.Type)
	assert.Equal(t, int64(10), mov.ResultingQuantity)

	// Disponible.
	resp, raw = doJSON(t, app, http.MethodGet, "/api/stock/available?product_id=filtro-aceite&warehouse_id=central", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avail struct {
		Available int64 `json:"available"`
	}
	require.NoError(t, json.Unmarshal(raw, &avail))
	assert.Equal(t, int64(10), avail.Available)

	// Reservar 4.
	resp, raw = doJSON(t, app, http.MethodPost, "/api/reservations", fiber.Map{
		"product_id":          "filtro-aceite",
		"warehouse_id":        "central",
		"quantity":            4,
		"sales_order_line_id": "l-1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var res struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, entity.ReservationStateActive, res.State)

	// Consumir 4: asiento issue.
	resp, raw = doJSON(t, app, http.MethodPost, "/api/reservations/"+res.ID+"/consume", fiber.Map{
		"actual_quantity": 4,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &mov))
	assert.Equal(t, entity.MovementTypeIssue, mov.Type)
	assert.Equal(t, int64(6), mov.ResultingQuantity)

	// El libro registra recepción y salida.
	resp, raw = doJSON(t, app, http.MethodGet, "/api/stock/movements?product_id=filtro-aceite", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Movements []json.RawMessage `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Movements, 2)
}

func TestHTTP_IdempotenciaPorHeader(t *testing.T) {
	app, _ := buildTestApp()
	body := fiber.Map{
		"product_id":   "bujia",
		"warehouse_id": "central",
		"quantity":     5,
		"unit_cost":    "3",
	}
	headers := map[string]string{"X-Idempotency-Key": "rec-99"}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/stock/receipts", body, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/stock/receipts", body, headers)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/stock/available?product_id=bujia&warehouse_id=central", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avail struct {
		Available int64 `json:"available"`
	}
	require.NoError(t, json.Unmarshal(raw, &avail))
	assert.Equal(t, int64(5), avail.Available, "el reenvío con la misma clave no duplica stock")
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a estatus HTTP.
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_MapeoDeErrores(t *testing.T) {
	app, store := buildTestApp()

	// 400: validación.
	resp, raw := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id": "p", "warehouse_id": "w", "quantity": -1, "unit_cost": "1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))

	// 409 con detalle: stock insuficiente.
	resp, raw = doJSON(t, app, http.MethodPost, "/api/reservations", fiber.Map{
		"product_id": "p", "warehouse_id": "w", "quantity": 3, "sales_order_line_id": "l-1",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp struct {
		Code   string `json:"code"`
		Detail struct {
			Requested int64 `json:"requested"`
			Available int64 `json:"available"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.Equal(t, int64(3), errResp.Detail.Requested)
	assert.Equal(t, int64(0), errResp.Detail.Available)

	// 404: reserva inexistente.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/reservations/no-existe", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// 422: consumir una reserva cancelada.
	seedStock(t, app, "p2", "w", 10)
	resp, raw = doJSON(t, app, http.MethodPost, "/api/reservations", fiber.Map{
		"product_id": "p2", "warehouse_id": "w", "quantity": 2, "sales_order_line_id": "l-2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &res))
	resp, _ = doJSON(t, app, http.MethodPost, "/api/reservations/"+res.ID+"/cancel", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/reservations/"+res.ID+"/consume", fiber.Map{"actual_quantity": 1}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// 409: sobre-recepción contra una orden de compra sembrada.
	store.SeedPurchaseOrderLine(&entity.PurchaseOrderLine{
		ID: "oc-1-l1", PurchaseOrderID: "oc-1", ProductID: "p2",
		OrderedQty: 5, UnitCost: decimal.NewFromInt(2),
	})
	resp, raw = doJSON(t, app, http.MethodPost, "/api/receiving/receipts", fiber.Map{
		"purchase_order_id": "oc-1",
		"warehouse_id":      "w",
		"lines":             []fiber.Map{{"product_id": "p2", "quantity": 6, "unit_cost": "2"}},
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &errResp))
	assert.Equal(t, "OVER_RECEIPT", errResp.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de despacho por HTTP.
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_DespachoDeOrdenDeVenta(t *testing.T) {
	app, store := buildTestApp()
	seedStock(t, app, "filtro-aceite", "central", 10)
	store.SeedSalesOrderLine(&entity.SalesOrderLine{
		ID: "ov-1-l1", SalesOrderID: "ov-1", ProductID: "filtro-aceite", Quantity: 5,
	})

	resp, raw := doJSON(t, app, http.MethodPost, "/api/sales-orders/ov-1/confirm", fiber.Map{
		"warehouse_id": "central",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, http.MethodPost, "/api/sales-orders/ov-1/ship", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var ship struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &ship))
	assert.Equal(t, entity.SalesOrderStatusShipped, ship.Status)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/stock/available?product_id=filtro-aceite&warehouse_id=central", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avail struct {
		Available int64 `json:"available"`
	}
	require.NoError(t, json.Unmarshal(raw, &avail))
	assert.Equal(t, int64(5), avail.Available)
}

// seedStock recibe stock vía el endpoint para no saltarse la superficie HTTP.
func seedStock(t *testing.T, app *fiber.App, productID, warehouseID string, qty int64) {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/stock/receipts", fiber.Map{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"quantity":     qty,
		"unit_cost":    "10",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, fmt.Sprintf("seed de %s: %s", productID, raw))
}
