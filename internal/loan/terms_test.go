package loan

import (
	"math"
	"testing"
)

func TestDefaultTermsValid(t *testing.T) {
	terms := DefaultTerms()
	if err := terms.Validate(); err != nil {
		t.Fatalf("default terms invalid: %v", err)
	}
	if math.Abs(terms.Ceiling()-86_666_666.67) > 0.01 {
		t.Errorf("Ceiling = %.2f", terms.Ceiling())
	}
	for _, d := range []int{6, 12, 18, 24} {
		if !terms.AllowsDuration(d) {
			t.Errorf("expected duration %d to be allowed", d)
		}
	}
	if terms.AllowsDuration(7) {
		t.Error("expected duration 7 to be rejected")
	}
}

func TestValidateRejectsBrokenTerms(t *testing.T) {
	tests := []struct {
		name  string
		terms Terms
	}{
		{"zero collateral", Terms{LTVNumerator: 2, LTVDenominator: 3, ExchangeRate: 1, Durations: []int{6}}},
		{"ratio above one", Terms{CollateralValue: 1, LTVNumerator: 4, LTVDenominator: 3, ExchangeRate: 1, Durations: []int{6}}},
		{"zero exchange rate", Terms{CollateralValue: 1, LTVNumerator: 2, LTVDenominator: 3, Durations: []int{6}}},
		{"no durations", Terms{CollateralValue: 1, LTVNumerator: 2, LTVDenominator: 3, ExchangeRate: 1}},
		{"negative duration", Terms{CollateralValue: 1, LTVNumerator: 2, LTVDenominator: 3, ExchangeRate: 1, Durations: []int{-6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.terms.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
