package loan

import (
	"strconv"
	"strings"

	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/pkg/numfmt"
)

// MaxAmountDigits is the longest digit string read exactly; it is the widest
// decimal that always fits an int64.
const MaxAmountDigits = 18

// SaturatedAmount is the canonical value of input longer than MaxAmountDigits.
const SaturatedAmount int64 = 999_999_999_999_999_999

// Normalize discards every non-digit and reads the remainder as an integer.
// Input without digits yields the unset amount; input longer than
// MaxAmountDigits saturates at SaturatedAmount.
func Normalize(raw string) domain.LoanAmount {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return domain.LoanAmount{}
	}

	significant := strings.TrimLeft(digits.String(), "0")
	if significant == "" {
		return domain.LoanAmount{Value: 0, Set: true}
	}
	if len(significant) > MaxAmountDigits {
		return domain.LoanAmount{Value: SaturatedAmount, Set: true}
	}

	value, err := strconv.ParseInt(significant, 10, 64)
	if err != nil {
		return domain.LoanAmount{Value: SaturatedAmount, Set: true}
	}
	return domain.LoanAmount{Value: value, Set: true}
}

// Display renders the amount grouped for the locale, or "" when unset.
func Display(amount domain.LoanAmount, locale numfmt.Locale) string {
	if !amount.Set {
		return ""
	}
	return locale.FormatInt(amount.Value)
}

// Maximum returns the ceiling as a canonical amount, independent of prior input.
func Maximum(terms Terms) domain.LoanAmount {
	return domain.LoanAmount{Value: terms.MaxLoanable(), Set: true}
}
