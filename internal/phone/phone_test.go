package phone

import (
	"errors"
	"testing"

	"pos/internal/domain"
)

func TestNormalize_LeadingZero(t *testing.T) {
	t.Parallel()

	got, err := Normalize("0771234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+256771234567" {
		t.Errorf("expected +256771234567, got %s", got)
	}
}

func TestNormalize_CountryCodeVariants(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"+256771234567",
		"256771234567",
		"0771234567",
		"0771 234 567",
		"+256 (771) 234-567",
	}

	for _, in := range inputs {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): unexpected error: %v", in, err)
		}
		if got != "+256771234567" {
			t.Errorf("Normalize(%q) = %s, want +256771234567", in, got)
		}
	}
}

func TestNormalize_CanonicalIsFixedPoint(t *testing.T) {
	t.Parallel()

	once, err := Normalize("0751234567")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if once != twice {
		t.Errorf("normalization is not idempotent: %s != %s", once, twice)
	}
}

func TestNormalize_WrongDigitCount(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"077123456", "07712345678", "", "+256"} {
		if _, err := Normalize(in); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Normalize(%q): expected ErrInvalidFormat, got %v", in, err)
		}
	}
}

func TestNormalize_NonDigitCharacters(t *testing.T) {
	t.Parallel()

	if _, err := Normalize("07712345ab"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestMatchesMethod_MTNPrefixes(t *testing.T) {
	t.Parallel()

	for _, num := range []string{"+256761234567", "+256771234567", "+256781234567"} {
		if err := MatchesMethod(num, domain.PaymentMethodMTNMomo); err != nil {
			t.Errorf("MatchesMethod(%s, mtn_momo): unexpected error: %v", num, err)
		}
	}
}

func TestMatchesMethod_AirtelPrefixes(t *testing.T) {
	t.Parallel()

	for _, num := range []string{"+256701234567", "+256741234567", "+256751234567"} {
		if err := MatchesMethod(num, domain.PaymentMethodAirtelMoney); err != nil {
			t.Errorf("MatchesMethod(%s, airtel_money): unexpected error: %v", num, err)
		}
	}
}

func TestMatchesMethod_MismatchRejected(t *testing.T) {
	t.Parallel()

	// 77 is an MTN prefix, not Airtel.
	err := MatchesMethod("+256771234567", domain.PaymentMethodAirtelMoney)
	if !errors.Is(err, ErrOperatorMismatch) {
		t.Errorf("expected ErrOperatorMismatch, got %v", err)
	}

	// 75 is an Airtel prefix, not MTN.
	err = MatchesMethod("+256751234567", domain.PaymentMethodMTNMomo)
	if !errors.Is(err, ErrOperatorMismatch) {
		t.Errorf("expected ErrOperatorMismatch, got %v", err)
	}
}

func TestNormalizeForMethod(t *testing.T) {
	t.Parallel()

	got, err := NormalizeForMethod("0771234567", domain.PaymentMethodMTNMomo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "+256771234567" {
		t.Errorf("expected +256771234567, got %s", got)
	}

	if _, err := NormalizeForMethod("0771234567", domain.PaymentMethodAirtelMoney); !errors.Is(err, ErrOperatorMismatch) {
		t.Errorf("expected ErrOperatorMismatch, got %v", err)
	}

	if _, err := NormalizeForMethod("077123", domain.PaymentMethodMTNMomo); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}
