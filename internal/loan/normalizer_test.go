package loan

import (
	"strings"
	"testing"

	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/pkg/numfmt"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.LoanAmount
		display string
	}{
		{"empty", "", domain.LoanAmount{}, ""},
		{"only separators", "..,", domain.LoanAmount{}, ""},
		{"letters only", "abc", domain.LoanAmount{}, ""},
		{"plain digits", "50000000", domain.LoanAmount{Value: 50000000, Set: true}, "50.000.000"},
		{"grouped id", "90.000.000", domain.LoanAmount{Value: 90000000, Set: true}, "90.000.000"},
		{"grouped en", "1,234", domain.LoanAmount{Value: 1234, Set: true}, "1.234"},
		{"leading zeros", "000123", domain.LoanAmount{Value: 123, Set: true}, "123"},
		{"all zeros", "000", domain.LoanAmount{Value: 0, Set: true}, "0"},
		{"mixed noise", "Rp 1a2b3 ", domain.LoanAmount{Value: 123, Set: true}, "123"},
		{"keystroke after grouping", "50.0000", domain.LoanAmount{Value: 500000, Set: true}, "500.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %+v, expected %+v", tt.raw, got, tt.want)
			}
			if display := Display(got, numfmt.IDID); display != tt.display {
				t.Errorf("Display = %q, expected %q", display, tt.display)
			}
		})
	}
}

func TestNormalizeIgnoresInterspersedCharacters(t *testing.T) {
	digits := "4815162342"
	noise := []string{".", ",", " ", "x", "-", "Rp", "€"}
	for _, n := range noise {
		raw := strings.Join(strings.Split(digits, ""), n)
		if got, want := Normalize(raw), Normalize(digits); got != want {
			t.Errorf("Normalize(%q) = %+v, expected %+v", raw, got, want)
		}
	}
}

func TestNormalizeLongInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"sixteen digits kept exactly", "1234567890123456", 1234567890123456},
		{"eighteen digits kept exactly", "123.456.789.012.345.678", 123456789012345678},
		{"nineteen digits saturate", strings.Repeat("9", MaxAmountDigits+1), SaturatedAmount},
		{"very long input saturates", "1" + strings.Repeat("0", 40), SaturatedAmount},
	}

	terms := DefaultTerms()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !got.Set || got.Value != tt.want {
				t.Fatalf("Normalize(%q) = %+v, expected %d", tt.raw, got, tt.want)
			}
			if !terms.Exceeds(got.Value) {
				t.Error("long input must stay over the limit")
			}
		})
	}
}

func TestMaximumIgnoresPriorState(t *testing.T) {
	terms := DefaultTerms()
	got := Maximum(terms)
	if !got.Set || got.Value != 86666666 {
		t.Fatalf("Maximum = %+v, expected 86666666", got)
	}
	if terms.Exceeds(got.Value) {
		t.Error("maximum must not be over the limit")
	}
	if !terms.Exceeds(got.Value + 1) {
		t.Error("one above the maximum must be over the limit")
	}
}
