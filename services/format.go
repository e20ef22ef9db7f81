package services

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is shown wherever a figure has no value.
const NotAvailable = "N/A"

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a whole-dollar amount with digit grouping, e.g. "$1,250".
func FormatCurrency(v *float64) string {
	f, ok := present(v)
	if !ok {
		return NotAvailable
	}
	n := int64(math.Round(f))
	if n < 0 {
		return usd.Sprintf("-$%d", -n)
	}
	return usd.Sprintf("$%d", n)
}

// FormatDistance renders miles with one decimal.
func FormatDistance(d *float64) string {
	f, ok := present(d)
	if !ok {
		return NotAvailable
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// FormatYear renders a year or N/A.
func FormatYear(y *int) string {
	if y == nil {
		return NotAvailable
	}
	return strconv.Itoa(*y)
}

// FormatPercent renders a share with one decimal and a percent sign.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
