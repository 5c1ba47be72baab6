package inventory

import "github.com/shopspring/decimal"

// costPlaces decimales con que se guarda el costo unitario.
const costPlaces = 2

// WeightedAverageCost costo promedio ponderado tras una entrada de mercancía.
// nuevo = (stock*costo + entrada*costoEntrada) / (stock + entrada)
//
// Un stock actual negativo o cero no aporta al promedio: el costo pasa a ser el de la entrada.
func WeightedAverageCost(stock, cost, qtyIn, unitCostIn decimal.Decimal) decimal.Decimal {
	if !qtyIn.IsPositive() {
		return cost
	}
	if !stock.IsPositive() {
		return unitCostIn.Round(costPlaces)
	}
	num := stock.Mul(cost).Add(qtyIn.Mul(unitCostIn))
	return num.Div(stock.Add(qtyIn)).Round(costPlaces)
}
