package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/apply-loan/internal/api/dto"
	"github.com/spec-kit/apply-loan/internal/service"
	apperrors "github.com/spec-kit/apply-loan/pkg/util/errorutil"
)

// LoanHandler serves session-less loan endpoints.
type LoanHandler struct {
	forms     *service.FormService
	tutorial  *service.TutorialService
	presenter *Presenter
}

// NewLoanHandler constructs handler.
func NewLoanHandler(forms *service.FormService, tutorial *service.TutorialService, presenter *Presenter) *LoanHandler {
	return &LoanHandler{forms: forms, tutorial: tutorial, presenter: presenter}
}

// Limits GET /api/v1/loan/limits.
func (h *LoanHandler) Limits(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.presenter.Limits()})
}

// Quote POST /api/v1/loan/quote.
func (h *LoanHandler) Quote(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.forms.Quote(req.Amount, req.Months)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.presenter.Quote(res)})
}

// Tutorial GET /api/v1/loan/tutorial.
func (h *LoanHandler) Tutorial(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"title": h.tutorial.Title(),
		"steps": h.tutorial.Steps(),
	}})
}
