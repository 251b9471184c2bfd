// Package money formatea montos en Rupiah y cantidades en kg con las convenciones de Indonesia
// (punto como separador de miles, coma decimal).
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formatea un monto redondeado a enteros. Ej: 2529411.76 → "Rp 2.529.412".
func Rupiah(d decimal.Decimal) string {
	return "Rp " + printer.Sprint(number.Decimal(d.Round(0).IntPart()))
}

// Kg formatea una cantidad con hasta tres decimales. Ej: 1234.5 → "1.234,5 kg".
func Kg(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(3).InexactFloat64(), number.MaxFractionDigits(3))) + " kg"
}
