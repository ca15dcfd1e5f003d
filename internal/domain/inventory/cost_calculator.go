package inventory

import "github.com/shopspring/decimal"

// AverageCost implementa el costo promedio ponderado por bodega (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si el denominador es cero o negativo, el costo vigente se mantiene sin cambios.
func AverageCost(currentQty int64, currentCost decimal.Decimal, receivedQty int64, receivedCost decimal.Decimal) decimal.Decimal {
	sum := currentQty + receivedQty
	if sum <= 0 {
		return currentCost
	}
	num := decimal.NewFromInt(currentQty).Mul(currentCost).
		Add(decimal.NewFromInt(receivedQty).Mul(receivedCost))
	return num.Div(decimal.NewFromInt(sum))
}
