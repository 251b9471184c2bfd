package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Un stock actual negativo (tras un ajuste correctivo) se trata como cero.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.IsNegative() {
		stockActual = decimal.Zero
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// CostedWeight es un insumo con su costo por kg ya resuelto.
type CostedWeight struct {
	Weight    decimal.Decimal
	CostPerKg decimal.Decimal
}

// RoastCostPerKg = (Σ costo·peso + costoOperativo·Σ peso) / salida.
// El costo operativo se carga por kg de grano verde que entra al tostador.
func RoastCostPerKg(inputs []CostedWeight, operationalCostPerKg, output decimal.Decimal) decimal.Decimal {
	if !output.IsPositive() {
		return decimal.Zero
	}
	material := decimal.Zero
	weight := decimal.Zero
	for _, in := range inputs {
		material = material.Add(in.CostPerKg.Mul(in.Weight))
		weight = weight.Add(in.Weight)
	}
	return material.Add(operationalCostPerKg.Mul(weight)).Div(output)
}

// CostedShare es una componente de mezcla con su costo por kg ya resuelto.
type CostedShare struct {
	Percentage decimal.Decimal
	CostPerKg  decimal.Decimal
}

// BlendCostPerKg = Σ costo·porcentaje/100 (combinación convexa si los porcentajes suman 100).
func BlendCostPerKg(components []CostedShare) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.CostPerKg.Mul(c.Percentage))
	}
	return total.Div(hundred)
}

// PackageCost = grano·tamaño + empaque + otros·tamaño (HPP por presentación).
func PackageCost(beanCostPerKg, sizeKg, packagingCost, otherCostPerKg decimal.Decimal) decimal.Decimal {
	return beanCostPerKg.Mul(sizeKg).Add(packagingCost).Add(otherCostPerKg.Mul(sizeKg))
}
