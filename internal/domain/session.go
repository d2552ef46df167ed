package domain

import "time"

// FormSession is the per-visitor view state of the apply-loan form.
// It is created empty on open and discarded when the visitor navigates away.
type FormSession struct {
	ID            string          `json:"id"`
	Amount        LoanAmount      `json:"amount"`
	Duration      LoanDuration    `json:"duration"`
	Submission    SubmissionState `json:"submission"`
	ApplicationID string          `json:"application_id,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	Tutorial      TutorialCursor  `json:"tutorial"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewFormSession returns an empty form in the idle state.
func NewFormSession(id string, now time.Time) *FormSession {
	return &FormSession{
		ID:         id,
		Submission: SubmissionIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Loading reports whether a submission is in flight.
func (s *FormSession) Loading() bool {
	return s.Submission == SubmissionSubmitting
}

// Editable reports whether amount and duration may still change.
func (s *FormSession) Editable() bool {
	return s.Submission == SubmissionIdle || s.Submission == SubmissionFailed
}

// CanSubmit applies the submit gate: a selected duration, a non-empty amount
// within the ceiling, and no submission in flight or completed.
func (s *FormSession) CanSubmit(overLimit bool) bool {
	if !s.Editable() {
		return false
	}
	return s.Duration.IsSet() && s.Amount.Set && !overLimit
}
