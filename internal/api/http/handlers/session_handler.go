package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/apply-loan/internal/api/dto"
	"github.com/spec-kit/apply-loan/internal/auth"
	"github.com/spec-kit/apply-loan/internal/service"
	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

// SessionHandler serves the stateful apply-loan form.
type SessionHandler struct {
	forms     *service.FormService
	tutorial  *service.TutorialService
	tokens    *auth.TokenManager
	presenter *Presenter
}

// NewSessionHandler constructs handler.
func NewSessionHandler(forms *service.FormService, tutorial *service.TutorialService, tokens *auth.TokenManager, presenter *Presenter) *SessionHandler {
	return &SessionHandler{forms: forms, tutorial: tutorial, tokens: tokens, presenter: presenter}
}

// Create POST /api/v1/loan/sessions.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	snap, err := h.forms.Open(c.UserContext())
	if err != nil {
		return err
	}
	token, expiresAt, err := h.tokens.GenerateToken(snap.Session.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SessionCreatedResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		View:      h.presenter.Form(snap),
	}})
}

// Get GET /api/v1/loan/session.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	snap, err := h.forms.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.respond(c, snap)
}

// SetAmount PUT /api/v1/loan/session/amount.
func (h *SessionHandler) SetAmount(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var req dto.SetAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	snap, err := h.forms.SetAmount(c.UserContext(), id, req.Raw)
	if err != nil {
		return err
	}
	return h.respond(c, snap)
}

// SetMaxAmount POST /api/v1/loan/session/amount/max.
func (h *SessionHandler) SetMaxAmount(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	snap, err := h.forms.SetMaxAmount(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.respond(c, snap)
}

// SetDuration PUT /api/v1/loan/session/duration.
func (h *SessionHandler) SetDuration(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var req dto.SetDurationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	snap, err := h.forms.SetDuration(c.UserContext(), id, req.Months)
	if err != nil {
		return err
	}
	return h.respond(c, snap)
}

// Submit POST /api/v1/loan/session/submit.
func (h *SessionHandler) Submit(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	snap, accepted, err := h.forms.Submit(c.UserContext(), id)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if accepted {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.SubmitResponse{
		Accepted: accepted,
		View:     h.presenter.Form(snap),
	}})
}

// Acknowledge POST /api/v1/loan/session/acknowledge.
func (h *SessionHandler) Acknowledge(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	destination, err := h.forms.Acknowledge(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NavigationResponse{Redirect: destination}})
}

// Close DELETE /api/v1/loan/session.
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.forms.Close(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Tutorial GET /api/v1/loan/session/tutorial.
func (h *SessionHandler) Tutorial(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Get)
}

// TutorialOpen POST /api/v1/loan/session/tutorial/open.
func (h *SessionHandler) TutorialOpen(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Open)
}

// TutorialNext POST /api/v1/loan/session/tutorial/next.
func (h *SessionHandler) TutorialNext(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Next)
}

// TutorialBack POST /api/v1/loan/session/tutorial/back.
func (h *SessionHandler) TutorialBack(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Back)
}

// TutorialFinish POST /api/v1/loan/session/tutorial/finish.
func (h *SessionHandler) TutorialFinish(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Finish)
}

// TutorialDismiss POST /api/v1/loan/session/tutorial/dismiss.
func (h *SessionHandler) TutorialDismiss(c *fiber.Ctx) error {
	return h.tutorialAction(c, h.tutorial.Dismiss)
}

type tutorialFunc func(ctx context.Context, sessionID string) (*service.TutorialState, error)

func (h *SessionHandler) tutorialAction(c *fiber.Ctx, action tutorialFunc) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	state, err := action(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.presenter.Tutorial(state)})
}

func (h *SessionHandler) respond(c *fiber.Ctx, snap *service.FormSnapshot) error {
	return c.JSON(fiber.Map{"data": h.presenter.Form(snap)})
}

func sessionID(c *fiber.Ctx) (string, error) {
	id, ok := auth.SessionIDFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("session required")
	}
	return id, nil
}
