package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parsed quantities must stay within these bounds so that a short input
// cannot expand into an arbitrarily long number.
const (
	MaxQuantityExponent = 64
	MaxQuantityDigits   = 64
)

// Quantity is an exact amount of stock.
// Integer and fractional amounts share the same representation.
type Quantity struct {
	value decimal.Decimal
}

// Q builds a Quantity from any Go number.
func Q[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64](value T) Quantity {
	switch v := any(value).(type) {
	case float32:
		return Quantity{value: decimal.NewFromFloat32(v)}
	case float64:
		return Quantity{value: decimal.NewFromFloat(v)}
	case int:
		return Quantity{value: decimal.NewFromInt(int64(v))}
	case int32:
		return Quantity{value: decimal.NewFromInt32(v)}
	case int64:
		return Quantity{value: decimal.NewFromInt(v)}
	case uint:
		return Quantity{value: decimal.NewFromUint64(uint64(v))}
	case uint32:
		return Quantity{value: decimal.NewFromUint64(uint64(v))}
	case uint64:
		return Quantity{value: decimal.NewFromUint64(v)}
	default:
		panic("unsupported type")
	}
}

// ParseQuantity reads a decimal number such as "10", "2.5" or "1e3".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: quantity must be a number, got %q", ErrTypeMismatch, s)
	}
	if exp := d.Exponent(); exp > MaxQuantityExponent || exp < -MaxQuantityExponent || d.NumDigits() > MaxQuantityDigits {
		return Quantity{}, fmt.Errorf("%w: quantity %q is out of range", ErrTypeMismatch, s)
	}
	return Quantity{value: d}, nil
}

func (q Quantity) Add(p Quantity) Quantity  { return Quantity{value: q.value.Add(p.value)} }
func (q Quantity) Sub(p Quantity) Quantity  { return Quantity{value: q.value.Sub(p.value)} }
func (q Quantity) Equal(p Quantity) bool    { return q.value.Equal(p.value) }
func (q Quantity) LessThan(p Quantity) bool { return q.value.LessThan(p.value) }
func (q Quantity) IsNegative() bool         { return q.value.IsNegative() }
func (q Quantity) IsPositive() bool         { return q.value.IsPositive() }
func (q Quantity) IsZero() bool             { return q.value.IsZero() }
func (q Quantity) String() string           { return q.value.String() }
