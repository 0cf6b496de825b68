package scale

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders v as whole dollars with thousands separators, e.g.
// "$52,345".
func FormatMoney(v float64) string {
	if math.Abs(v) >= 1<<62 {
		return printer.Sprintf("$%.0f", v)
	}
	n := int64(math.Round(v))
	if n < 0 {
		return printer.Sprintf("-$%d", -n)
	}
	return printer.Sprintf("$%d", n)
}

// FormatMoneyCents renders v with two decimals and no grouping, e.g.
// "$52345.67", as shown in bar tooltips.
func FormatMoneyCents(v float64) string {
	if v < 0 {
		return "-$" + strconv.FormatFloat(-v, 'f', 2, 64)
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatNumber renders axis ticks: integers with thousands separators,
// fractions in their shortest form.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return printer.Sprintf("%d", int64(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
