// Package currencyutils provides decimal parsing for the amount strings found
// in raw statement exports.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyRe strips currency symbols, currency codes and whitespace from a
// raw amount string.
var currencyRe = regexp.MustCompile(`(?i)[€$£¥₣₹₽₩฿₴₺\s]|CHF|EUR|USD|GBP|INR|Rs\.?`)

// ParseAmount parses a raw amount string into a decimal value. It handles the
// formats seen in real exports: "1,234.56", "1.234,56", "1'234.56", "CHF
// 1234.50", "Rs 200", "(150.00)" for negatives. Empty strings are an error so
// callers can decide whether missing means zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount string")
	}

	amount, err := decimal.NewFromString(standardized)
	if err == nil {
		return amount, nil
	}

	// Cells like "DR 200" carry a type marker alongside the number. Pull out
	// the numeric part and try once more before giving up.
	numeric := numericRe.FindString(standardized)
	if numeric != "" {
		if amount, err := decimal.NewFromString(StandardizeAmount(numeric)); err == nil {
			return amount, nil
		}
	}
	return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
}

var numericRe = regexp.MustCompile(`-?[0-9][0-9.,']*`)

// ParseAmountOrZero parses like ParseAmount but maps empty or unparseable
// strings to zero. This matches how dual debit/credit columns treat a blank
// cell: no entry on that side.
func ParseAmountOrZero(amountStr string) decimal.Decimal {
	amount, err := ParseAmount(amountStr)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// StandardizeAmount converts the various currency string formats found in
// statements into a form decimal.NewFromString accepts.
func StandardizeAmount(amountStr string) string {
	amountStr = strings.TrimSpace(amountStr)

	// Accounting negatives: (150.00) means -150.00
	negative := false
	if strings.HasPrefix(amountStr, "(") && strings.HasSuffix(amountStr, ")") {
		negative = true
		amountStr = amountStr[1 : len(amountStr)-1]
	}

	amountStr = currencyRe.ReplaceAllString(amountStr, "")

	// European format (1.234,56) -> (1234.56)
	if strings.Contains(amountStr, ",") && strings.Contains(amountStr, ".") {
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	} else if strings.Contains(amountStr, ",") {
		// Lone comma: decimal separator when followed by at most two digits,
		// thousands separator otherwise.
		parts := strings.Split(amountStr, ",")
		if len(parts) > 1 && len(parts[len(parts)-1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	// Apostrophes as thousands separators (1'234.56)
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	if negative && amountStr != "" && !strings.HasPrefix(amountStr, "-") {
		amountStr = "-" + amountStr
	}
	return amountStr
}
