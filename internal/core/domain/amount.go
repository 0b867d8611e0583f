package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the display denomination attached to an Amount. It only affects
// formatting; all arithmetic is done on the raw wei value.
type Unit string

const (
	UnitWei   Unit = "wei"   // smallest indivisible unit
	UnitGwei  Unit = "gwei"  // 10^9 wei
	UnitEther Unit = "ether" // 10^18 wei
)

// Decimals returns the power of ten that converts the unit into wei.
func (u Unit) Decimals() int32 {
	switch u {
	case UnitGwei:
		return 9
	case UnitEther:
		return 18
	default:
		return 0
	}
}

// Valid reports whether u is one of the three known units.
func (u Unit) Valid() bool {
	return u == UnitWei || u == UnitGwei || u == UnitEther
}

// ParseUnit maps a unit name onto a Unit. Both the currency names and the
// generic smallest/intermediate/whole names are accepted.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wei", "smallest":
		return UnitWei, nil
	case "gwei", "intermediate":
		return UnitGwei, nil
	case "ether", "eth", "whole":
		return UnitEther, nil
	default:
		return "", fmt.Errorf("%w: %w: %q", ErrInvalidAmount, ErrInvalidUnit, s)
	}
}

// maxRaw is the largest value the ledger accounts for: 2^256-1 wei.
var maxRaw = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 0)

// Amount is a non-negative quantity of wei tagged with a display unit.
// The zero value is zero wei displayed in wei.
type Amount struct {
	raw  decimal.Decimal
	unit Unit
}

// ZeroAmount returns zero tagged with the given unit.
func ZeroAmount(unit Unit) Amount {
	return Amount{raw: decimal.Zero, unit: unit}
}

// FromWhole parses s as a number of whole units (ether).
func FromWhole(s string) (Amount, error) { return ParseAmount(s, UnitEther) }

// FromIntermediate parses s as a number of intermediate units (gwei).
func FromIntermediate(s string) (Amount, error) { return ParseAmount(s, UnitGwei) }

// FromSmallest parses s as a number of wei.
func FromSmallest(s string) (Amount, error) { return ParseAmount(s, UnitWei) }

// ParseAmount parses a decimal string expressed in unit. The value must be
// non-negative and must not carry a fraction of a wei once scaled.
func ParseAmount(s string, unit Unit) (Amount, error) {
	if !unit.Valid() {
		return Amount{}, fmt.Errorf("%w: %w: %q", ErrInvalidAmount, ErrInvalidUnit, unit)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	raw, err := scaleDecimal(s, unit.Decimals())
	if err != nil {
		return Amount{}, err
	}
	return newAmount(raw, unit)
}

// ParseRaw parses an integer wei string and tags it with unit. It is used by
// stores that persist the raw value.
func ParseRaw(s string, unit Unit) (Amount, error) {
	if !unit.Valid() {
		unit = UnitWei
	}
	d, err := scaleDecimal(strings.TrimSpace(s), 0)
	if err != nil {
		return Amount{}, err
	}
	return newAmount(d, unit)
}

// maxRawDigits is the number of decimal digits of 2^256-1.
const maxRawDigits = 78

// scaleDecimal parses s and multiplies it by 10^decimals. The magnitude is
// checked on the normalised coefficient and exponent before any big
// arithmetic runs, so inputs such as "1e100000000" fail immediately.
func scaleDecimal(s string, decimals int32) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: negative value", ErrInvalidAmount)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}

	digits := d.Coefficient().String()
	significant := strings.TrimRight(digits, "0")
	// the value is significant * 10^exp with no trailing zeros left
	exp := int64(d.Exponent()) + int64(len(digits)-len(significant)) + int64(decimals)
	if exp < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: fractional wei", ErrInvalidAmount)
	}
	if exp+int64(len(significant)) > maxRawDigits {
		return decimal.Decimal{}, ErrOverflow
	}
	coef, ok := new(big.Int).SetString(significant, 10)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return decimal.NewFromBigInt(coef, int32(exp)), nil
}

func newAmount(raw decimal.Decimal, unit Unit) (Amount, error) {
	if raw.IsNegative() {
		return Amount{}, fmt.Errorf("%w: negative value", ErrInvalidAmount)
	}
	if !raw.IsInteger() {
		return Amount{}, fmt.Errorf("%w: fractional wei", ErrInvalidAmount)
	}
	if raw.GreaterThan(maxRaw) {
		return Amount{}, ErrOverflow
	}
	return Amount{raw: raw.Truncate(0), unit: unit}, nil
}

// Unit returns the display unit.
func (a Amount) Unit() Unit {
	if a.unit == "" {
		return UnitWei
	}
	return a.unit
}

// WithUnit returns the same quantity tagged with another display unit.
func (a Amount) WithUnit(u Unit) Amount {
	a.unit = u
	return a
}

// IsZero reports whether the amount is zero wei.
func (a Amount) IsZero() bool { return a.raw.IsZero() }

// Cmp compares raw values: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int { return a.raw.Cmp(b.raw) }

// Add returns a+b tagged with a's unit. The sum is never wrapped: a result
// above the accounting range fails with ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a.raw.Add(b.raw)
	if sum.GreaterThan(maxRaw) {
		return Amount{}, ErrOverflow
	}
	return Amount{raw: sum, unit: a.Unit()}, nil
}

// RawString renders the integer wei value.
func (a Amount) RawString() string { return a.raw.String() }

// BigInt returns a copy of the raw wei value.
func (a Amount) BigInt() *big.Int { return a.raw.BigInt() }

// Display renders the amount in unit without losing precision.
func (a Amount) Display(unit Unit) string {
	return a.raw.Shift(-unit.Decimals()).String()
}

// String renders the amount in its own unit, e.g. "1.5 ether".
func (a Amount) String() string {
	return a.Display(a.Unit()) + " " + string(a.Unit())
}
