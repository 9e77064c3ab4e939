// Package validation holds the pure input checks every engine runs
// before opening a transaction. Validators never touch the database;
// they take raw input and return a normalized value or an *Error.
package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Error describes a rejected input field
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fail(field, format string, args ...interface{}) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Price validates a monetary amount and normalizes it to 2 decimals
func Price(field string, x float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fail(field, "must be a number")
	}
	if x < 0 {
		return 0, fail(field, "must not be negative")
	}
	return math.Round(x*100) / 100, nil
}

// Quantity validates a count. Fractional or negative input is rejected.
func Quantity(field string, x float64) (int, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fail(field, "must be a number")
	}
	if x != math.Trunc(x) {
		return 0, fail(field, "must be a whole number")
	}
	if x < 0 {
		return 0, fail(field, "must not be negative")
	}
	return int(x), nil
}

// Required validates a non-empty string and trims surrounding space
func Required(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fail(field, "is required")
	}
	return trimmed, nil
}

// SKU validates and canonicalizes a stock keeping unit. The same
// logical SKU always maps to the same stored string (trim + uppercase).
func SKU(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", fail("sku", "is required")
	}
	return strings.ToUpper(trimmed), nil
}

// Phone validates a phone number and strips formatting. At least 10
// digits are required.
func Phone(s string) (string, error) {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() < 10 {
		return "", fail("phone", "must contain at least 10 digits")
	}
	return digits.String(), nil
}

// Password validates password strength: at least 8 characters with at
// least one letter and one digit.
func Password(s string) error {
	if len(s) < 8 {
		return fail("password", "must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fail("password", "must contain at least one letter and one digit")
	}
	return nil
}

// IMEI validates a device identity: exactly 15 digits passing the Luhn
// checksum.
func IMEI(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) != 15 || !allDigits(trimmed) {
		return "", fail("imei", "must be exactly 15 digits")
	}
	if !luhnValid(trimmed) {
		return "", fail("imei", "checksum is invalid")
	}
	return trimmed, nil
}

// BarcodeKind selects the length/checksum rules for Barcode
type BarcodeKind int

const (
	BarcodeGeneric BarcodeKind = iota
	BarcodeEAN13
	BarcodeUPCA
)

// Barcode validates a barcode string for the given kind. EAN-13 and
// UPC-A require all digits, the exact length and a valid check digit;
// generic codes only need 1-50 characters.
func Barcode(s string, kind BarcodeKind) (string, error) {
	trimmed := strings.TrimSpace(s)
	switch kind {
	case BarcodeEAN13:
		if len(trimmed) != 13 || !allDigits(trimmed) {
			return "", fail("barcode", "EAN-13 must be exactly 13 digits")
		}
		if !gtinCheckDigitValid(trimmed) {
			return "", fail("barcode", "EAN-13 check digit is invalid")
		}
	case BarcodeUPCA:
		if len(trimmed) != 12 || !allDigits(trimmed) {
			return "", fail("barcode", "UPC-A must be exactly 12 digits")
		}
		if !gtinCheckDigitValid(trimmed) {
			return "", fail("barcode", "UPC-A check digit is invalid")
		}
	default:
		if len(trimmed) < 1 || len(trimmed) > 50 {
			return "", fail("barcode", "must be between 1 and 50 characters")
		}
	}
	return trimmed, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// luhnValid checks the Luhn checksum over a digit string
func luhnValid(s string) bool {
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// gtinCheckDigitValid verifies the GS1 check digit used by EAN-13 and
// UPC-A: alternating 1/3 weights from the right, excluding the check
// digit itself.
func gtinCheckDigitValid(s string) bool {
	sum := 0
	weight := 3
	for i := len(s) - 2; i >= 0; i-- {
		sum += int(s[i]-'0') * weight
		if weight == 3 {
			weight = 1
		} else {
			weight = 3
		}
	}
	check := (10 - sum%10) % 10
	return check == int(s[len(s)-1]-'0')
}
