package dto

import (
	"time"

	"github.com/spec-kit/apply-loan/internal/domain"
)

// QuoteRequest payload for a stateless quote.
type QuoteRequest struct {
	Amount string `json:"amount"`
	Months int    `json:"months"`
}

// SetAmountRequest carries the raw text typed into the amount field.
type SetAmountRequest struct {
	Raw string `json:"raw"`
}

// SetDurationRequest selects a duration; zero clears it.
type SetDurationRequest struct {
	Months int `json:"months"`
}

// LimitsResponse describes the collateral summary card.
type LimitsResponse struct {
	CollateralValue   int64   `json:"collateral_value"`
	CollateralDisplay string  `json:"collateral_display"`
	Ceiling           float64 `json:"ceiling"`
	MaxLoanable       int64   `json:"max_loanable"`
	MaxLoanDisplay    string  `json:"max_loan_display"`
	Durations         []int   `json:"durations"`
	InterestRateLabel string  `json:"interest_rate_label"`
}

// QuoteResponse is the outcome of a stateless quote.
type QuoteResponse struct {
	Amount        AmountView  `json:"amount"`
	Summary       SummaryView `json:"summary"`
	OverLimit     bool        `json:"over_limit"`
	SubmitEnabled bool        `json:"submit_enabled"`
}

// AmountView describes the amount input field.
type AmountView struct {
	Value       int64  `json:"value"`
	Set         bool   `json:"set"`
	Display     string `json:"display"`
	Placeholder string `json:"placeholder"`
}

// DurationView describes the duration select.
type DurationView struct {
	Months  int    `json:"months"`
	Display string `json:"display"`
	Options []int  `json:"options"`
}

// SummaryView holds the loan summary card figures.
type SummaryView struct {
	Amount         string  `json:"amount"`
	Duration       string  `json:"duration"`
	InterestRate   string  `json:"interest_rate"`
	MonthlyPayment string  `json:"monthly_payment"`
	MonthlyValue   float64 `json:"monthly_payment_value"`
	LTVAfterLoan   string  `json:"ltv_after_loan"`
}

// SubmissionView describes submission progress and the receipt once submitted.
type SubmissionView struct {
	State         domain.SubmissionState `json:"state"`
	ApplicationID string                 `json:"application_id,omitempty"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	Receipt       *ReceiptView           `json:"receipt,omitempty"`
}

// ReceiptView echoes the submitted application.
type ReceiptView struct {
	Amount         string `json:"amount"`
	Duration       string `json:"duration"`
	MonthlyPayment string `json:"monthly_payment"`
}

// TutorialView is the tutorial dialog.
type TutorialView struct {
	Title       string                    `json:"title"`
	Open        bool                      `json:"open"`
	Index       int                       `json:"index"`
	StepCount   int                       `json:"step_count"`
	Step        domain.TutorialStep       `json:"step"`
	Affordance  domain.TutorialAffordance `json:"affordance"`
	BackEnabled bool                      `json:"back_enabled"`
}

// FormView is the full apply-loan screen state.
type FormView struct {
	SessionID     string         `json:"session_id"`
	Limits        LimitsResponse `json:"limits"`
	Amount        AmountView     `json:"amount"`
	Duration      DurationView   `json:"duration"`
	Summary       SummaryView    `json:"summary"`
	OverLimit     bool           `json:"over_limit"`
	Warning       string         `json:"warning,omitempty"`
	SubmitEnabled bool           `json:"submit_enabled"`
	Loading       bool           `json:"loading"`
	Submission    SubmissionView `json:"submission"`
	Tutorial      TutorialView   `json:"tutorial"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// SessionCreatedResponse is returned when a form session opens.
type SessionCreatedResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	View      FormView  `json:"view"`
}

// SubmitResponse reports whether the submit action was taken.
type SubmitResponse struct {
	Accepted bool     `json:"accepted"`
	View     FormView `json:"view"`
}

// NavigationResponse asks the client to navigate.
type NavigationResponse struct {
	Redirect string `json:"redirect"`
}
