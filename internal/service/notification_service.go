package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/events"
)

const webhookTimeout = 3 * time.Second

// NotificationService logs application lifecycle events and forwards final
// outcomes to an optional webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleApplicationSubmitted)
	n.dispatcher.Subscribe(events.EventApplicationCompleted, n.handleApplicationCompleted)
	n.dispatcher.Subscribe(events.EventApplicationFailed, n.handleApplicationFailed)
	n.dispatcher.Subscribe(events.EventApplicationCancelled, n.handleApplicationCancelled)
	n.dispatcher.Subscribe(events.EventDashboardRequested, n.handleDashboardRequested)
}

// WebhookBody is the JSON document posted for completed and failed applications.
type WebhookBody struct {
	Event          events.EventType `json:"event"`
	ApplicationID  string           `json:"application_id"`
	SessionID      string           `json:"session_id"`
	Amount         int64            `json:"amount"`
	Duration       int              `json:"duration_months"`
	MonthlyPayment float64          `json:"monthly_payment"`
	Reason         string           `json:"reason,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func (n *NotificationService) handleApplicationSubmitted(_ context.Context, event events.Event) error {
	n.logger.Info("application submitted", n.applicationFields(event)...)
	return nil
}

func (n *NotificationService) handleApplicationCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("application completed", n.applicationFields(event)...)
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleApplicationFailed(ctx context.Context, event events.Event) error {
	n.logger.Warn("application failed", n.applicationFields(event)...)
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleApplicationCancelled(_ context.Context, event events.Event) error {
	n.logger.Info("application cancelled", n.applicationFields(event)...)
	return nil
}

func (n *NotificationService) handleDashboardRequested(_ context.Context, event events.Event) error {
	destination := ""
	if payload, ok := event.Payload.(events.DashboardRequestedPayload); ok {
		destination = payload.Destination
	}
	n.logger.Info("applicant sent to dashboard",
		zap.String("session_id", event.SessionID),
		zap.String("application_id", event.ApplicationID),
		zap.String("destination", destination))
	return nil
}

func (n *NotificationService) applicationFields(event events.Event) []zap.Field {
	body := webhookBody(event)
	fields := []zap.Field{
		zap.String("session_id", body.SessionID),
		zap.String("application_id", body.ApplicationID),
		zap.Int64("amount", body.Amount),
		zap.Int("duration_months", body.Duration),
	}
	if body.MonthlyPayment > 0 {
		fields = append(fields, zap.Float64("monthly_payment", body.MonthlyPayment))
	}
	if body.Reason != "" {
		fields = append(fields, zap.String("reason", body.Reason))
	}
	return fields
}

// sendWebhook posts the outcome to NOTIFY_WEBHOOK_URL when one is configured.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	timeout := webhookTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if timeout <= 0 {
		return fmt.Errorf("webhook %s: %w", event.Type, context.DeadlineExceeded)
	}

	agent := fiber.Post(url)
	agent.JSON(webhookBody(event))
	agent.Timeout(timeout)
	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("webhook %s: %w", event.Type, errors.Join(errs...))
	}
	if status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("webhook %s: unexpected status %d", event.Type, status)
	}
	n.logger.Debug("webhook delivered",
		zap.String("application_id", event.ApplicationID),
		zap.String("event_type", string(event.Type)),
		zap.Int("status", status))
	return nil
}

func webhookBody(event events.Event) WebhookBody {
	body := WebhookBody{
		Event:         event.Type,
		ApplicationID: event.ApplicationID,
		SessionID:     event.SessionID,
		OccurredAt:    event.Timestamp,
	}
	var terms events.ApplicationPayload
	switch payload := event.Payload.(type) {
	case events.ApplicationPayload:
		terms = payload
	case events.ApplicationFailedPayload:
		terms = payload.ApplicationPayload
		body.Reason = payload.Reason
	}
	body.Amount = terms.Amount
	body.Duration = int(terms.Duration)
	body.MonthlyPayment = terms.MonthlyPayment
	return body
}
