package service

import (
	"context"

	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/repository"
)

// TutorialService walks a session through the static tutorial steps.
// It only ever touches the session's tutorial cursor.
type TutorialService struct {
	sessions repository.SessionRepository
	locks    *SessionLocks
	tutorial config.TutorialConfig
}

// TutorialState is the cursor together with the step it points at.
type TutorialState struct {
	Title      string
	Cursor     domain.TutorialCursor
	Step       domain.TutorialStep
	StepCount  int
	Affordance domain.TutorialAffordance
	CanGoBack  bool
}

// NewTutorialService constructs the service. Locks should be shared with FormService.
func NewTutorialService(sessions repository.SessionRepository, locks *SessionLocks, tutorial config.TutorialConfig) *TutorialService {
	if locks == nil {
		locks = NewSessionLocks()
	}
	return &TutorialService{sessions: sessions, locks: locks, tutorial: tutorial}
}

// Steps returns the ordered tutorial content.
func (s *TutorialService) Steps() []domain.TutorialStep {
	return append([]domain.TutorialStep(nil), s.tutorial.Steps...)
}

// Title returns the tutorial dialog title.
func (s *TutorialService) Title() string {
	return s.tutorial.Title
}

// Get returns the session's tutorial state.
func (s *TutorialService) Get(ctx context.Context, sessionID string) (*TutorialState, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.State(session.Tutorial), nil
}

// Open shows the tutorial from the first step.
func (s *TutorialService) Open(ctx context.Context, sessionID string) (*TutorialState, error) {
	return s.move(ctx, sessionID, func(c *domain.TutorialCursor) { c.Reopen() })
}

// Next advances one step, stopping at the last.
func (s *TutorialService) Next(ctx context.Context, sessionID string) (*TutorialState, error) {
	return s.move(ctx, sessionID, func(c *domain.TutorialCursor) { c.Next(len(s.tutorial.Steps)) })
}

// Back retreats one step, stopping at the first.
func (s *TutorialService) Back(ctx context.Context, sessionID string) (*TutorialState, error) {
	return s.move(ctx, sessionID, func(c *domain.TutorialCursor) { c.Back() })
}

// Finish closes the tutorial when the last step is shown; elsewhere it changes nothing.
func (s *TutorialService) Finish(ctx context.Context, sessionID string) (*TutorialState, error) {
	return s.move(ctx, sessionID, func(c *domain.TutorialCursor) { c.Finish(len(s.tutorial.Steps)) })
}

// Dismiss closes the tutorial from any step.
func (s *TutorialService) Dismiss(ctx context.Context, sessionID string) (*TutorialState, error) {
	return s.move(ctx, sessionID, func(c *domain.TutorialCursor) { c.Open = false })
}

// State projects a cursor onto the configured steps.
func (s *TutorialService) State(cursor domain.TutorialCursor) *TutorialState {
	count := len(s.tutorial.Steps)
	state := &TutorialState{
		Title:      s.tutorial.Title,
		Cursor:     cursor,
		StepCount:  count,
		Affordance: cursor.Affordance(count),
		CanGoBack:  cursor.CanGoBack(),
	}
	if cursor.Index >= 0 && cursor.Index < count {
		state.Step = s.tutorial.Steps[cursor.Index]
	}
	return state
}

func (s *TutorialService) move(ctx context.Context, sessionID string, apply func(*domain.TutorialCursor)) (*TutorialState, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	apply(&session.Tutorial)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.State(session.Tutorial), nil
}
