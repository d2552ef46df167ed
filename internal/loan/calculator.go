package loan

import (
	"github.com/spec-kit/apply-loan/internal/domain"
)

// Quote is the derived summary for a form state.
type Quote struct {
	MonthlyPayment float64
	LTVAfterLoan   float64
	OverLimit      bool
}

// Calculate derives the repayment quote. An unset amount counts as zero and an
// unset duration yields a zero monthly payment. Figures are left unrounded;
// display formatting rounds them.
//
// LTVAfterLoan converts the amount by the exchange rate but divides by the
// collateral in its original unit.
func Calculate(terms Terms, amount domain.LoanAmount, duration domain.LoanDuration) Quote {
	value := float64(amount.Value)

	var monthly float64
	if duration.IsSet() {
		monthly = value * (1 + terms.AnnualInterestRate/100) / float64(duration)
	}

	var ltv float64
	if terms.ExchangeRate > 0 && terms.CollateralValue > 0 {
		ltv = (value / terms.ExchangeRate) / float64(terms.CollateralValue) * 100
	}

	return Quote{
		MonthlyPayment: monthly,
		LTVAfterLoan:   ltv,
		OverLimit:      amount.Set && terms.Exceeds(amount.Value),
	}
}

