package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrPriceFormat   = errors.New("price is not a number")
	ErrPriceNegative = errors.New("price must be >= 0")
)

// ParsePrice reads a decimal price typed by a person. Both "." and "," are
// accepted as the decimal separator; surrounding and inner spaces are ignored.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.Replace(s, ",", ".", 1)
	if s == "" {
		return decimal.Zero, ErrPriceFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrPriceFormat
	}
	if d.IsNegative() {
		return decimal.Zero, ErrPriceNegative
	}
	return d, nil
}
