package domain

import (
	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

// maxAmountExponent bounds the decimal exponent of client supplied amounts.
// Rounding or comparing values like 1e-20000000 allocates big integers
// proportional to the exponent.
const maxAmountExponent = 12

// CheckAmountScale rejects amounts whose exponent lies outside
// [-maxAmountExponent, maxAmountExponent]. Call it before any arithmetic.
func CheckAmountScale(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -maxAmountExponent || exp > maxAmountExponent {
		return errors.NewValidationError("Amount has too many digits")
	}
	return nil
}
