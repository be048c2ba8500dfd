package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every rendered price.
const CurrencySymbol = "฿"

var priceCleaner = strings.NewReplacer(
	CurrencySymbol, "",
	"บาท", "",
	"THB", "",
	",", "",
	" ", "",
	"\u00a0", "",
)

var (
	pricePrinter = message.NewPrinter(language.English)
	priceNumber  = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?`)
)

// ParsePrice turns "฿165,900", "165,900 บาท" or "65,900.-" into a number.
// The first number in the text wins; text without one yields 0.
func ParsePrice(text string) float64 {
	s := priceNumber.FindString(priceCleaner.Replace(ReplaceThaiDigits(text)))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPrice renders v with thousands separators, e.g. "฿165,900".
// Satang are shown only when the amount is not a whole number of baht.
func FormatPrice(v float64) string {
	v = math.Round(v*100) / 100
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v == math.Trunc(v) {
		return sign + CurrencySymbol + pricePrinter.Sprintf("%.0f", v)
	}
	return sign + CurrencySymbol + pricePrinter.Sprintf("%.2f", v)
}
