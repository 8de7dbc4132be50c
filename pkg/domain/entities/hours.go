package entities

import "github.com/shopspring/decimal"

// Hours represents a quantity of work hours. It wraps decimal.Decimal
// (the teacher's pattern for Quantity) so that daily-cap and same-part
// accumulation never drifts the way repeated float addition would over
// a long run.
type Hours decimal.Decimal

// ZeroHours is the additive identity.
var ZeroHours = Hours(decimal.Zero)

// NewHoursFromFloat builds an Hours value from a float64 literal.
func NewHoursFromFloat(f float64) Hours {
	return Hours(decimal.NewFromFloat(f))
}

// Decimal exposes the underlying decimal.Decimal for arithmetic callers
// that need it directly.
func (h Hours) Decimal() decimal.Decimal {
	return decimal.Decimal(h)
}

// Add returns h + other.
func (h Hours) Add(other Hours) Hours {
	return Hours(h.Decimal().Add(other.Decimal()))
}

// Sub returns h - other.
func (h Hours) Sub(other Hours) Hours {
	return Hours(h.Decimal().Sub(other.Decimal()))
}

// Mul returns h * factor.
func (h Hours) Mul(factor decimal.Decimal) Hours {
	return Hours(h.Decimal().Mul(factor))
}

// Div returns h / divisor. Callers must guard against a zero divisor.
func (h Hours) Div(divisor decimal.Decimal) Hours {
	return Hours(h.Decimal().Div(divisor))
}

// GreaterThan reports whether h > other.
func (h Hours) GreaterThan(other Hours) bool {
	return h.Decimal().GreaterThan(other.Decimal())
}

// GreaterThanOrEqual reports whether h >= other.
func (h Hours) GreaterThanOrEqual(other Hours) bool {
	return h.Decimal().GreaterThanOrEqual(other.Decimal())
}

// LessThan reports whether h < other.
func (h Hours) LessThan(other Hours) bool {
	return h.Decimal().LessThan(other.Decimal())
}

// LessThanOrEqual reports whether h <= other.
func (h Hours) LessThanOrEqual(other Hours) bool {
	return h.Decimal().LessThanOrEqual(other.Decimal())
}

// IsZero reports whether h == 0.
func (h Hours) IsZero() bool {
	return h.Decimal().IsZero()
}

// IsPositive reports whether h > 0.
func (h Hours) IsPositive() bool {
	return h.Decimal().IsPositive()
}

// String renders h with two fixed decimals.
func (h Hours) String() string {
	return h.Decimal().StringFixed(2)
}

// Float64 returns the best-effort float64 representation, used only at
// presentation boundaries (CLI output, JSON).
func (h Hours) Float64() float64 {
	f, _ := h.Decimal().Float64()
	return f
}
