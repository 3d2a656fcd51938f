// Package view holds presentation helpers shared by the API handlers and
// the CSV exports.
package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money renders an amount with thousand separators and two decimals, the
// format used in exported statements.
func Money(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}
