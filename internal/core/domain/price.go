package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencySymbol = "$"

var (
	one  = decimal.NewFromInt(1)
	five = decimal.NewFromInt(5)
)

// CalculatePrice returns round((popularityScore + 1) * weight * goldPrice)
// in whole currency units.
//
// Popularity works as a markup from 1.0x to 2.0x. The product is computed
// in decimal and rounded half away from zero, which is half-up for the
// non-negative inputs a validated product yields.
func CalculatePrice(popularityScore, weight, goldPrice float64) int64 {
	markup := decimal.NewFromFloat(popularityScore).Add(one)
	price := markup.
		Mul(decimal.NewFromFloat(weight)).
		Mul(decimal.NewFromFloat(goldPrice))
	return price.Round(0).IntPart()
}

// FormatPrice renders price as US dollars without a fraction, e.g. "$1,500".
func FormatPrice(price int64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf(
		"%s%v", currencySymbol,
		number.Decimal(price, number.MaxFractionDigits(0)),
	)
}

// PopularityToStars maps a [0,1] score onto a 0-5 rating with one decimal.
func PopularityToStars(popularityScore float64) float64 {
	return decimal.NewFromFloat(popularityScore).
		Mul(five).
		Round(1).
		InexactFloat64()
}
