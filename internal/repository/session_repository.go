package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/apply-loan/internal/domain"
	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

// ErrSessionNotFound is returned for unknown or expired form sessions.
var ErrSessionNotFound = fmt.Errorf("form session %w", apperrors.ErrNotFound)

// SessionRepository stores form view state between requests.
// Save refreshes the session's time-to-live.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.FormSession, error)
	Save(ctx context.Context, session *domain.FormSession) error
	Delete(ctx context.Context, id string) error
}
