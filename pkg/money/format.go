package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const brlSymbol = "R$ "

// FormatBRL renders an amount the way the storefront displays prices:
// "R$ 1.234,56". The value is rounded first, so storage precision never
// leaks into the display.
func FormatBRL(d decimal.Decimal) string {
	rounded := Round(d)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	p := message.NewPrinter(language.BrazilianPortuguese)
	return sign + brlSymbol + p.Sprintf("%v", number.Decimal(rounded.InexactFloat64(), number.Scale(Places)))
}
