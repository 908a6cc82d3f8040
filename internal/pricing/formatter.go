// Package pricing turns amounts into display strings.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter converts an amount into a display string
type Formatter interface {
	Format(amount decimal.Decimal) string
}

// CurrencyFormatter formats amounts as money in one currency and locale
type CurrencyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewCurrencyFormatter creates a formatter for an ISO 4217 code and a BCP 47 locale
func NewCurrencyFormatter(code, locale string) (*CurrencyFormatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	return &CurrencyFormatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
	}, nil
}

// Format renders amount with the currency symbol, rounded to the currency's scale
func (f *CurrencyFormatter) Format(amount decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(f.unit)
	rounded := amount.Round(int32(scale))
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(rounded.InexactFloat64())))
}

// FormatFunc adapts a plain function to Formatter
type FormatFunc func(amount decimal.Decimal) string

// Format calls fn(amount)
func (fn FormatFunc) Format(amount decimal.Decimal) string {
	return fn(amount)
}

// Plain formats amounts with two decimals and no currency symbol
var Plain Formatter = FormatFunc(func(amount decimal.Decimal) string {
	return amount.StringFixed(2)
})
