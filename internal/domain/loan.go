package domain

import "time"

// LoanAmount is the canonical loan amount held by the form.
// Set is false for the unset sentinel (empty input), in which case Value is zero.
type LoanAmount struct {
	Value int64 `json:"value"`
	Set   bool  `json:"set"`
}

// LoanDuration is a repayment period in months. Zero means unset.
type LoanDuration int

// IsSet reports whether a duration has been selected.
func (d LoanDuration) IsSet() bool {
	return d > 0
}

// SubmissionState enumerates the lifecycle of a loan application submission.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "IDLE"
	SubmissionSubmitting SubmissionState = "SUBMITTING"
	SubmissionSubmitted  SubmissionState = "SUBMITTED"
	SubmissionFailed     SubmissionState = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s SubmissionState) Terminal() bool {
	return s == SubmissionSubmitted
}

// Application is the request handed to the origination gateway on submit.
type Application struct {
	ID             string       `json:"id"`
	SessionID      string       `json:"session_id"`
	Amount         int64        `json:"amount"`
	Duration       LoanDuration `json:"duration"`
	MonthlyPayment float64      `json:"monthly_payment"`
	RequestedAt    time.Time    `json:"requested_at"`
}
