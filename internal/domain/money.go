package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not exact two-digit decimals.
var ErrInvalidAmount = errors.New("invalid amount")

// maxCents mirrors a NUMERIC(12,2) column.
var maxCents = decimal.New(999_999_999_999, 0)

const (
	// maxIntegerDigits is the widest integer part maxCents allows.
	maxIntegerDigits = 10
	maxQuotedInput   = 32
)

// Money is a signed fixed-point amount held as integer cents.
type Money struct {
	cents int64
}

func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// ParseMoney parses a decimal string such as "1500", "-200.5" or "12.34".
// More than two fraction digits is an error, never a rounding.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, clip(s))
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, fmt.Errorf("%w (%q)", err, clip(s))
	}
	return m, nil
}

// MoneyFromDecimal checks scale and range on the coefficient and exponent
// before any rescaling, so huge exponents cost no big-number arithmetic.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return Money{}, nil
	}
	digits := int64(len(new(big.Int).Abs(coef).String()))
	exp := int64(d.Exponent())

	// the value is at least 10^(digits-1+exp)
	if digits-1+exp >= maxIntegerDigits {
		return Money{}, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	// beyond this many fraction digits even trailing zeros in coef cannot help
	if exp < -2 && -(exp+2) > digits {
		return Money{}, fmt.Errorf("%w: more than two fraction digits", ErrInvalidAmount)
	}

	if !d.Equal(d.Truncate(2)) {
		return Money{}, fmt.Errorf("%w: more than two fraction digits", ErrInvalidAmount)
	}
	cents := d.Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	return Money{cents: cents.IntPart()}, nil
}

func clip(s string) string {
	if len(s) <= maxQuotedInput {
		return s
	}
	return s[:maxQuotedInput] + "..."
}

func (m Money) Cents() int64 { return m.cents }

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

func (m Money) Add(o Money) Money { return Money{cents: m.cents + o.cents} }

func (m Money) Sub(o Money) Money { return Money{cents: m.cents - o.cents} }

func (m Money) IsZero() bool { return m.cents == 0 }

// String renders the amount with exactly two fraction digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidAmount, clip(raw))
		}
		raw = unquoted
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
