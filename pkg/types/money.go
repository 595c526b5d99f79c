package types

import "github.com/shopspring/decimal"

// KoboFromNaira converts an upstream naira amount to kobo without float drift.
func KoboFromNaira(amount float64) int {
	return int(decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// NairaFromKobo renders a kobo amount as naira.
func NairaFromKobo(kobo int) decimal.Decimal {
	return decimal.NewFromInt(int64(kobo)).Div(decimal.NewFromInt(100))
}
