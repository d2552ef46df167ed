// Package loan holds the apply-loan arithmetic: input normalization, the
// collateral ceiling and the repayment quote. Nothing here fails; partial
// input degrades to zero values.
package loan

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
)

// Terms are the fixed product constants behind the form.
type Terms struct {
	CollateralValue    int64   `mapstructure:"collateral_value"`
	LTVNumerator       int64   `mapstructure:"ltv_numerator"`
	LTVDenominator     int64   `mapstructure:"ltv_denominator"`
	ExchangeRate       float64 `mapstructure:"exchange_rate"`
	AnnualInterestRate float64 `mapstructure:"annual_interest_rate"`
	Durations          []int   `mapstructure:"durations"`
}

// DefaultTerms returns the compiled-in product constants.
func DefaultTerms() Terms {
	return Terms{
		CollateralValue:    130_000_000,
		LTVNumerator:       2,
		LTVDenominator:     3,
		ExchangeRate:       15_800,
		AnnualInterestRate: 1.5,
		Durations:          []int{6, 12, 18, 24},
	}
}

// Validate rejects terms the calculator cannot work with.
func (t Terms) Validate() error {
	var errs []error
	if t.CollateralValue <= 0 {
		errs = append(errs, errors.New("collateral value must be positive"))
	}
	if t.LTVNumerator <= 0 || t.LTVDenominator <= 0 {
		errs = append(errs, errors.New("ltv ratio must be positive"))
	} else if t.LTVNumerator > t.LTVDenominator {
		errs = append(errs, fmt.Errorf("ltv ratio %d/%d exceeds 1", t.LTVNumerator, t.LTVDenominator))
	}
	if t.ExchangeRate <= 0 {
		errs = append(errs, errors.New("exchange rate must be positive"))
	}
	if t.AnnualInterestRate < 0 {
		errs = append(errs, errors.New("interest rate must not be negative"))
	}
	if len(t.Durations) == 0 {
		errs = append(errs, errors.New("at least one duration is required"))
	}
	for _, d := range t.Durations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("duration %d must be positive", d))
		}
	}
	return errors.Join(errs...)
}

// AllowsDuration reports whether months is one of the selectable durations.
func (t Terms) AllowsDuration(months int) bool {
	return slices.Contains(t.Durations, months)
}

// Ceiling returns collateral × LTV, the maximum loanable amount.
func (t Terms) Ceiling() float64 {
	return float64(t.CollateralValue) * float64(t.LTVNumerator) / float64(t.LTVDenominator)
}

// MaxLoanable returns the largest canonical amount that does not exceed the ceiling.
func (t Terms) MaxLoanable() int64 {
	if t.LTVDenominator == 0 {
		return 0
	}
	q := new(big.Int).Mul(big.NewInt(t.CollateralValue), big.NewInt(t.LTVNumerator))
	q.Quo(q, big.NewInt(t.LTVDenominator))
	return q.Int64()
}

// Exceeds reports whether amount is strictly above the ceiling.
// The comparison is exact: amount × den > collateral × num.
func (t Terms) Exceeds(amount int64) bool {
	lhs := new(big.Int).Mul(big.NewInt(amount), big.NewInt(t.LTVDenominator))
	rhs := new(big.Int).Mul(big.NewInt(t.CollateralValue), big.NewInt(t.LTVNumerator))
	return lhs.Cmp(rhs) > 0
}
