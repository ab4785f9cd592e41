// Package phone normalizes and validates Ugandan mobile numbers for
// mobile-money payments.
package phone

import (
	"errors"
	"strings"

	"pos/internal/domain"
)

const (
	// CountryCode is the canonical dialing prefix for Uganda.
	CountryCode = "+256"

	// significantDigits is the length of a Ugandan subscriber number
	// after the country code or leading zero is stripped.
	significantDigits = 9
)

var (
	// ErrInvalidFormat is returned when a number does not reduce to
	// exactly nine digits after normalization.
	ErrInvalidFormat = errors.New("invalid phone number format")

	// ErrOperatorMismatch is returned when a number's operator prefix
	// does not belong to the requested payment method's network.
	ErrOperatorMismatch = errors.New("phone number does not match payment method operator")
)

// Operator prefixes are the first two digits of the nine significant
// digits. Fixed allocation, per UCC numbering plan.
var operatorPrefixes = map[domain.PaymentMethod][]string{
	domain.PaymentMethodAirtelMoney: {"70", "74", "75"},
	domain.PaymentMethodMTNMomo:     {"76", "77", "78"},
}

// Normalize converts a raw phone number to canonical +256XXXXXXXXX
// form. It strips whitespace and punctuation, removes a leading
// country code or zero, and requires exactly nine remaining digits.
// Normalizing an already-canonical number is a no-op.
func Normalize(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, raw)

	switch {
	case strings.HasPrefix(cleaned, CountryCode):
		cleaned = cleaned[len(CountryCode):]
	case strings.HasPrefix(cleaned, "256"):
		cleaned = cleaned[3:]
	case strings.HasPrefix(cleaned, "0"):
		cleaned = cleaned[1:]
	}

	if len(cleaned) != significantDigits {
		return "", ErrInvalidFormat
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidFormat
		}
	}

	return CountryCode + cleaned, nil
}

// MatchesMethod checks that the canonical number's operator prefix
// belongs to the network behind the given mobile-money method.
func MatchesMethod(canonical string, method domain.PaymentMethod) error {
	prefixes, ok := operatorPrefixes[method]
	if !ok {
		return ErrOperatorMismatch
	}

	digits := strings.TrimPrefix(canonical, CountryCode)
	if len(digits) != significantDigits {
		return ErrInvalidFormat
	}

	for _, p := range prefixes {
		if strings.HasPrefix(digits, p) {
			return nil
		}
	}

	return ErrOperatorMismatch
}

// NormalizeForMethod normalizes a raw number and validates its
// operator prefix against the requested method in one step.
func NormalizeForMethod(raw string, method domain.PaymentMethod) (string, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		return "", err
	}

	if err := MatchesMethod(canonical, method); err != nil {
		return "", err
	}

	return canonical, nil
}
