// Package money parses displayed currency amounts and checks order totals.
package money

import (
	"fmt"
	"regexp"
	"strconv"
)

// FlatShipping is added to every cart by the storefront.
const FlatShipping = 2.00

var nonAmount = regexp.MustCompile(`[^0-9.]`)

// ParseAmount strips everything but digits and dots, "$1,234.50" is 1234.5.
func ParseAmount(text string) (float64, error) {
	cleaned := nonAmount.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no amount in %q", text)
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return amount, nil
}

func Sum(texts []string) (float64, error) {
	total := 0.0
	for _, t := range texts {
		amount, err := ParseAmount(t)
		if err != nil {
			return 0, err
		}
		total += amount
	}
	return total, nil
}

// MismatchError is returned when the displayed total differs from the sum of
// the line items plus shipping.
type MismatchError struct {
	Expected  float64
	Displayed float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected total %.2f, displayed %.2f", e.Expected, e.Displayed)
}

// ExpectTotal compares exactly, there is no rounding tolerance.
func ExpectTotal(lines []string, displayed string, shipping float64) (float64, error) {
	sum, err := Sum(lines)
	if err != nil {
		return 0, err
	}
	total, err := ParseAmount(displayed)
	if err != nil {
		return 0, err
	}
	expected := sum + shipping
	if expected != total {
		return expected, &MismatchError{Expected: expected, Displayed: total}
	}
	return expected, nil
}
