package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/apply-loan/internal/domain"
)

// ErrOriginationRejected is returned by originators that decline an application.
var ErrOriginationRejected = errors.New("application rejected by origination")

// Originator hands an application to loan origination. Implementations must
// return promptly once ctx is cancelled.
type Originator interface {
	Originate(ctx context.Context, app domain.Application) error
}

// Submitter runs originations asynchronously on behalf of FormService.
type Submitter interface {
	Enqueue(app domain.Application) error
	Cancel(sessionID string) bool
}

// CompletionFunc receives the outcome of an asynchronous origination.
type CompletionFunc func(ctx context.Context, app domain.Application, err error)

// SimulatedOriginator stands in for a real origination backend: it waits a
// fixed delay and then succeeds, or fails when FailAll is set.
type SimulatedOriginator struct {
	Delay   time.Duration
	FailAll bool
}

// NewSimulatedOriginator builds the stand-in originator.
func NewSimulatedOriginator(delay time.Duration, failAll bool) *SimulatedOriginator {
	return &SimulatedOriginator{Delay: delay, FailAll: failAll}
}

// Originate waits for the delay or for ctx to end, whichever comes first.
func (o *SimulatedOriginator) Originate(ctx context.Context, _ domain.Application) error {
	timer := time.NewTimer(o.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	if o.FailAll {
		return ErrOriginationRejected
	}
	return nil
}
