package inventory_test

import (
	"testing"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado por bodega:
//
//	NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada))
//	           / (StockActual + CantEntrada)
//
// Escenario de referencia: recibir 50 @ 10.00 sobre bodega vacía y luego
// 50 @ 20.00 debe dejar 100 unidades a costo promedio 15.00.
// ──────────────────────────────────────────────────────────────────────────────

func TestAverageCost_PromedioPonderado(t *testing.T) {
	primera := inventory.AverageCost(0, decimal.Zero, 50, decimal.NewFromInt(10))
	assert.True(t, primera.Equal(decimal.NewFromInt(10)),
		"sobre bodega vacía el promedio es el costo de la entrada, obtuvo %s", primera)

	segunda := inventory.AverageCost(50, primera, 50, decimal.NewFromInt(20))
	assert.True(t, segunda.Equal(decimal.NewFromInt(15)),
		"50@10 + 50@20 debe promediar 15, obtuvo %s", segunda)
}

func TestAverageCost_EntradaMasCaraSubePromedio(t *testing.T) {
	avg := inventory.AverageCost(10, decimal.NewFromInt(100), 5, decimal.NewFromInt(160))
	esperado := decimal.NewFromInt(120)
	assert.True(t, avg.Equal(esperado), "esperaba %s, obtuvo %s", esperado, avg)
}

func TestAverageCost_CostoFraccionario(t *testing.T) {
	// 3 @ 1.00 + 1 @ 2.00 = 5.00 / 4 = 1.25
	avg := inventory.AverageCost(3, decimal.NewFromInt(1), 1, decimal.NewFromInt(2))
	assert.True(t, avg.Equal(decimal.RequireFromString("1.25")), "obtuvo %s", avg)
}

func TestAverageCost_DenominadorNoPositivoMantieneCosto(t *testing.T) {
	vigente := decimal.RequireFromString("12.50")

	cero := inventory.AverageCost(0, vigente, 0, decimal.NewFromInt(99))
	assert.True(t, cero.Equal(vigente), "suma cero no debe recalcular, obtuvo %s", cero)

	// Un libro reconstruido puede pasar por cantidades negativas transitorias
	// (ajustes a la baja replicados antes que sus entradas).
	negativo := inventory.AverageCost(-5, vigente, 3, decimal.NewFromInt(99))
	assert.True(t, negativo.Equal(vigente), "suma negativa no debe recalcular, obtuvo %s", negativo)
}
