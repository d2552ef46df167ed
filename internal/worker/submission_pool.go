package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/service"
)

var (
	// ErrPoolStopped is returned by Enqueue after Stop or before Start.
	ErrPoolStopped = errors.New("submission pool not running")
	// ErrQueueFull is returned when the job queue has no room.
	ErrQueueFull = errors.New("submission queue full")
)

type job struct {
	ctx context.Context
	app domain.Application
}

type inflight struct {
	applicationID string
	cancel        context.CancelFunc
}

// SubmissionPool runs originations on a fixed set of workers. Every job has its
// own cancellable context so a session can abandon its submission.
type SubmissionPool struct {
	originator service.Originator
	logger     *zap.Logger
	workers    int
	jobs       chan job

	mu      sync.Mutex
	pending map[string]inflight
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	onDone  service.CompletionFunc
	wg      sync.WaitGroup
}

// NewSubmissionPool builds a pool; call Start before enqueueing.
func NewSubmissionPool(originator service.Originator, workers, queueSize int, logger *zap.Logger) *SubmissionPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionPool{
		originator: originator,
		logger:     logger,
		workers:    workers,
		jobs:       make(chan job, queueSize),
		pending:    make(map[string]inflight),
	}
}

// Start launches the workers. Outcomes are reported to onDone.
func (p *SubmissionPool) Start(ctx context.Context, onDone service.CompletionFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.onDone = onDone
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(p.ctx)
	}
	p.logger.Info("submission pool started", zap.Int("workers", p.workers))
}

// Enqueue schedules an origination for the application.
func (p *SubmissionPool) Enqueue(app domain.Application) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return ErrPoolStopped
	}

	ctx, cancel := context.WithCancel(p.ctx)
	select {
	case p.jobs <- job{ctx: ctx, app: app}:
	default:
		cancel()
		return ErrQueueFull
	}
	if prev, ok := p.pending[app.SessionID]; ok {
		prev.cancel()
	}
	p.pending[app.SessionID] = inflight{applicationID: app.ID, cancel: cancel}
	return nil
}

// Cancel aborts the pending or running origination for a session.
func (p *SubmissionPool) Cancel(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.pending[sessionID]
	if !ok {
		return false
	}
	entry.cancel()
	delete(p.pending, sessionID)
	return true
}

// Pending returns how many submissions have not finished.
func (p *SubmissionPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Stop cancels outstanding work and waits for the workers to exit. Jobs still
// queued are reported to onDone with context.Canceled.
func (p *SubmissionPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	drained := p.drain()
	p.logger.Info("submission pool stopped", zap.Int("drained", drained))
}

// drain reports every queued job as cancelled. Enqueue is closed by then.
func (p *SubmissionPool) drain() int {
	drained := 0
	for {
		select {
		case j := <-p.jobs:
			p.process(j)
			drained++
		default:
			return drained
		}
	}
}

func (p *SubmissionPool) work(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			p.process(j)
		}
	}
}

func (p *SubmissionPool) process(j job) {
	err := j.ctx.Err()
	if err == nil {
		err = p.originator.Originate(j.ctx, j.app)
	}

	p.mu.Lock()
	if entry, ok := p.pending[j.app.SessionID]; ok && entry.applicationID == j.app.ID {
		entry.cancel()
		delete(p.pending, j.app.SessionID)
	}
	onDone := p.onDone
	p.mu.Unlock()

	if onDone != nil {
		onDone(context.Background(), j.app, err)
	}
}
