package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/events"
	"github.com/spec-kit/apply-loan/internal/loan"
	"github.com/spec-kit/apply-loan/internal/observability"
	"github.com/spec-kit/apply-loan/internal/repository"
	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

// FormService owns the apply-loan form state machine.
type FormService struct {
	sessions   repository.SessionRepository
	locks      *SessionLocks
	submitter  Submitter
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	terms      config.ProductTerms
	now        func() time.Time
}

// FormDependencies bundles collaborators for FormService.
type FormDependencies struct {
	Sessions   repository.SessionRepository
	Locks      *SessionLocks
	Submitter  Submitter
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Terms      config.ProductTerms
	Clock      func() time.Time
}

// FormSnapshot is a session together with everything derived from it.
type FormSnapshot struct {
	Session       domain.FormSession
	Quote         loan.Quote
	SubmitEnabled bool
}

// QuoteResult is the outcome of a stateless quote.
type QuoteResult struct {
	Amount        domain.LoanAmount
	Duration      domain.LoanDuration
	Quote         loan.Quote
	SubmitEnabled bool
}

// NewFormService constructs the service.
func NewFormService(deps FormDependencies) *FormService {
	locks := deps.Locks
	if locks == nil {
		locks = NewSessionLocks()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &FormService{
		sessions:   deps.Sessions,
		locks:      locks,
		submitter:  deps.Submitter,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		terms:      deps.Terms,
		now:        clock,
	}
}

// Terms returns the product terms the service computes with.
func (s *FormService) Terms() config.ProductTerms {
	return s.terms
}

// Open creates an empty form session.
func (s *FormService) Open(ctx context.Context) (*FormSnapshot, error) {
	session := domain.NewFormSession(uuid.NewString(), s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("form session opened", zap.String("session_id", session.ID))
	return s.snapshot(session), nil
}

// Get returns the current state of a session.
func (s *FormService) Get(ctx context.Context, sessionID string) (*FormSnapshot, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

// SetAmount normalizes raw keystroke input into the session's amount.
func (s *FormService) SetAmount(ctx context.Context, sessionID, raw string) (*FormSnapshot, error) {
	return s.mutate(ctx, sessionID, func(session *domain.FormSession) error {
		if !session.Editable() {
			return errFormLocked(session)
		}
		session.Amount = loan.Normalize(raw)
		return nil
	})
}

// SetMaxAmount sets the amount to the collateral ceiling regardless of prior input.
func (s *FormService) SetMaxAmount(ctx context.Context, sessionID string) (*FormSnapshot, error) {
	return s.mutate(ctx, sessionID, func(session *domain.FormSession) error {
		if !session.Editable() {
			return errFormLocked(session)
		}
		session.Amount = loan.Maximum(s.terms.Loan)
		return nil
	})
}

// SetDuration selects a repayment period. Zero clears the selection.
func (s *FormService) SetDuration(ctx context.Context, sessionID string, months int) (*FormSnapshot, error) {
	if err := s.validateDuration(months); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(session *domain.FormSession) error {
		if !session.Editable() {
			return errFormLocked(session)
		}
		session.Duration = domain.LoanDuration(months)
		return nil
	})
}

// Submit starts origination when the submit gate is open. When it is closed
// the call changes nothing and reports accepted=false.
func (s *FormService) Submit(ctx context.Context, sessionID string) (*FormSnapshot, bool, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	quote := loan.Calculate(s.terms.Loan, session.Amount, session.Duration)
	if !session.CanSubmit(quote.OverLimit) {
		return s.snapshot(session), false, nil
	}

	app := domain.Application{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		Amount:         session.Amount.Value,
		Duration:       session.Duration,
		MonthlyPayment: quote.MonthlyPayment,
		RequestedAt:    s.now(),
	}

	previous := *session
	session.Submission = domain.SubmissionSubmitting
	session.ApplicationID = app.ID
	session.FailureReason = ""
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, false, err
	}

	if err := s.submitter.Enqueue(app); err != nil {
		s.logger.Warn("submission not enqueued", zap.String("session_id", session.ID), zap.Error(err))
		if saveErr := s.sessions.Save(ctx, &previous); saveErr != nil {
			s.logger.Error("failed to restore session", zap.String("session_id", session.ID), zap.Error(saveErr))
		}
		return nil, false, apperrors.NewUnavailable("submission queue unavailable", err)
	}

	s.metrics.RecordSubmission("accepted")
	s.logger.Info("application submitted",
		zap.String("session_id", session.ID),
		zap.String("application_id", app.ID),
		zap.Int64("amount", app.Amount),
		zap.Int("duration", int(app.Duration)))
	s.publish(ctx, events.Event{
		Type:          events.EventApplicationSubmitted,
		SessionID:     session.ID,
		ApplicationID: app.ID,
		Payload:       applicationPayload(app),
	})
	return s.snapshot(session), true, nil
}

// CompleteSubmission applies an origination outcome. Outcomes for sessions that
// were closed, or for superseded applications, are dropped.
func (s *FormService) CompleteSubmission(ctx context.Context, app domain.Application, outcome error) {
	unlock := s.locks.Lock(app.SessionID)
	defer unlock()

	logger := s.logger.With(zap.String("session_id", app.SessionID), zap.String("application_id", app.ID))

	session, err := s.sessions.Get(ctx, app.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			logger.Info("dropping submission outcome for closed session")
			s.metrics.RecordSubmission("dropped")
			return
		}
		logger.Error("failed to load session for submission outcome", zap.Error(err))
		return
	}
	if session.Submission != domain.SubmissionSubmitting || session.ApplicationID != app.ID {
		logger.Info("ignoring stale submission outcome", zap.String("state", string(session.Submission)))
		return
	}

	event := events.Event{SessionID: session.ID, ApplicationID: app.ID, Payload: applicationPayload(app)}
	switch {
	case outcome == nil:
		session.Submission = domain.SubmissionSubmitted
		event.Type = events.EventApplicationCompleted
		s.metrics.RecordSubmission("completed")
		logger.Info("application completed")
	case errors.Is(outcome, context.Canceled):
		session.Submission = domain.SubmissionFailed
		session.FailureReason = "submission interrupted"
		event.Type = events.EventApplicationCancelled
		s.metrics.RecordSubmission("cancelled")
		logger.Warn("application interrupted", zap.Error(outcome))
	default:
		session.Submission = domain.SubmissionFailed
		session.FailureReason = outcome.Error()
		event.Type = events.EventApplicationFailed
		event.Payload = events.ApplicationFailedPayload{ApplicationPayload: applicationPayload(app), Reason: outcome.Error()}
		s.metrics.RecordSubmission("failed")
		logger.Warn("application failed", zap.Error(outcome))
	}
	session.UpdatedAt = s.now()

	if err := s.sessions.Save(ctx, session); err != nil {
		logger.Error("failed to save submission outcome", zap.Error(err))
		return
	}
	s.publish(ctx, event)
}

// Acknowledge closes a submitted form and returns the dashboard destination.
func (s *FormService) Acknowledge(ctx context.Context, sessionID string) (string, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Submission != domain.SubmissionSubmitted {
		return "", apperrors.NewConflict("application not submitted yet", map[string]any{
			"submission": session.Submission,
		})
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return "", err
	}

	destination := s.terms.Display.DashboardPath
	s.publish(ctx, events.Event{
		Type:          events.EventDashboardRequested,
		SessionID:     sessionID,
		ApplicationID: session.ApplicationID,
		Payload:       events.DashboardRequestedPayload{Destination: destination},
	})
	return destination, nil
}

// Close discards the session as when the visitor navigates away. A pending
// submission is cancelled.
func (s *FormService) Close(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Submission == domain.SubmissionSubmitting {
		if s.submitter.Cancel(sessionID) {
			s.metrics.RecordSubmission("cancelled")
			s.publish(ctx, events.Event{
				Type:          events.EventApplicationCancelled,
				SessionID:     sessionID,
				ApplicationID: session.ApplicationID,
				Payload: events.ApplicationPayload{
					Amount:   session.Amount.Value,
					Duration: session.Duration,
				},
			})
		}
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("form session closed", zap.String("session_id", sessionID))
	return nil
}

// Quote evaluates raw input without a session.
func (s *FormService) Quote(raw string, months int) (*QuoteResult, error) {
	if err := s.validateDuration(months); err != nil {
		return nil, err
	}
	amount := loan.Normalize(raw)
	duration := domain.LoanDuration(months)
	quote := loan.Calculate(s.terms.Loan, amount, duration)
	return &QuoteResult{
		Amount:        amount,
		Duration:      duration,
		Quote:         quote,
		SubmitEnabled: amount.Set && duration.IsSet() && !quote.OverLimit,
	}, nil
}

func (s *FormService) mutate(ctx context.Context, sessionID string, apply func(*domain.FormSession) error) (*FormSnapshot, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := apply(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.snapshot(session), nil
}

func (s *FormService) snapshot(session *domain.FormSession) *FormSnapshot {
	quote := loan.Calculate(s.terms.Loan, session.Amount, session.Duration)
	return &FormSnapshot{
		Session:       *session,
		Quote:         quote,
		SubmitEnabled: session.CanSubmit(quote.OverLimit),
	}
}

func (s *FormService) validateDuration(months int) error {
	if months == 0 || s.terms.Loan.AllowsDuration(months) {
		return nil
	}
	return apperrors.NewValidationError("duration not offered", map[string]any{
		"duration": months,
		"allowed":  s.terms.Loan.Durations,
	})
}

func (s *FormService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func applicationPayload(app domain.Application) events.ApplicationPayload {
	return events.ApplicationPayload{
		Amount:         app.Amount,
		Duration:       app.Duration,
		MonthlyPayment: app.MonthlyPayment,
	}
}

func errFormLocked(session *domain.FormSession) error {
	return apperrors.NewConflict("form is locked while the application is processed", map[string]any{
		"submission": session.Submission,
	})
}
