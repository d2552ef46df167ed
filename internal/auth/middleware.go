package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

const sessionKey = "form_session_id"

// SessionMiddleware validates bearer session handles.
type SessionMiddleware struct {
	tokens *TokenManager
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

// Handle requires a valid session handle on the request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	c.Locals(sessionKey, claims.SessionID)
	return c.Next()
}

// SessionIDFromContext retrieves the form session bound to the request.
func SessionIDFromContext(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(sessionKey).(string)
	return id, ok && id != ""
}
