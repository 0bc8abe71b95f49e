package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentOf returns round2(base * percent / 100) computed in decimal arithmetic
func PercentOf(base, percent float64) float64 {
	f, _ := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(percent)).
		Div(hundred).
		Round(2).
		Float64()
	return f
}
