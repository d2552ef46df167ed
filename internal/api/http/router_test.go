package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/apply-loan/internal/api/dto"
	"github.com/spec-kit/apply-loan/internal/api/http/handlers"
	"github.com/spec-kit/apply-loan/internal/auth"
	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/events"
	"github.com/spec-kit/apply-loan/internal/observability"
	"github.com/spec-kit/apply-loan/internal/repository"
	"github.com/spec-kit/apply-loan/internal/service"
	"github.com/spec-kit/apply-loan/internal/worker"
)

type testServer struct {
	app *fiber.App
}

func newTestServer(t *testing.T, delay time.Duration, failAll bool, capacity int) *testServer {
	t.Helper()
	logger := zap.NewNop()
	terms := config.DefaultProductTerms()

	repo := repository.NewMemorySessionRepository(time.Hour)
	t.Cleanup(repo.Stop)

	metrics := observability.NewMetrics()
	pool := worker.NewSubmissionPool(service.NewSimulatedOriginator(delay, failAll), 2, 8, logger)
	locks := service.NewSessionLocks()
	forms := service.NewFormService(service.FormDependencies{
		Sessions:   repo,
		Locks:      locks,
		Submitter:  pool,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    metrics,
		Logger:     logger,
		Terms:      terms,
	})
	tutorial := service.NewTutorialService(repo, locks, terms.Tutorial)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx, forms.CompleteSubmission)
	t.Cleanup(pool.Stop)
	t.Cleanup(cancel)

	tokens := auth.NewTokenManager("test-secret", time.Hour)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	presenter := handlers.NewPresenter(terms, tutorial)
	RegisterRoutes(app, RouteConfig{
		Health:            handlers.NewHealthHandler("apply-loan-service", "test", nil, metrics),
		Loan:              handlers.NewLoanHandler(forms, tutorial, presenter),
		Sessions:          handlers.NewSessionHandler(forms, tutorial, tokens, presenter),
		SessionMiddleware: auth.NewSessionMiddleware(tokens),
		RateLimiter:       NewRateLimiter(config.RateLimitConfig{Capacity: capacity, RefillSeconds: 60}),
	})
	return &testServer{app: app}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, payload
}

func decodeData[T any](t *testing.T, payload []byte) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	return envelope.Data
}

func errorCode(t *testing.T, payload []byte) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	return envelope.Error.Code
}

func (s *testServer) openSession(t *testing.T) dto.SessionCreatedResponse {
	t.Helper()
	status, payload := s.do(t, fiber.MethodPost, "/api/v1/loan/sessions", "", nil)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, payload)
	}
	return decodeData[dto.SessionCreatedResponse](t, payload)
}

func TestLimits(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/loan/limits", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	limits := decodeData[dto.LimitsResponse](t, payload)
	if limits.CollateralDisplay != "Rp 130,000,000" {
		t.Errorf("collateral display = %q", limits.CollateralDisplay)
	}
	if limits.MaxLoanDisplay != "Rp 86.666.666,667" {
		t.Errorf("max loan display = %q", limits.MaxLoanDisplay)
	}
	if limits.MaxLoanable != 86666666 {
		t.Errorf("max loanable = %d", limits.MaxLoanable)
	}
	if limits.InterestRateLabel != "1.5% per tahun" {
		t.Errorf("interest label = %q", limits.InterestRateLabel)
	}
}

func TestQuote(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)

	status, payload := s.do(t, fiber.MethodPost, "/api/v1/loan/quote", "", dto.QuoteRequest{Amount: "50.000.000", Months: 12})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, payload)
	}
	quote := decodeData[dto.QuoteResponse](t, payload)
	if quote.Summary.MonthlyPayment != "Rp 4.229.166,667" {
		t.Errorf("monthly payment = %q", quote.Summary.MonthlyPayment)
	}
	if quote.Summary.Amount != "Rp 50.000.000" {
		t.Errorf("amount = %q", quote.Summary.Amount)
	}
	if !quote.SubmitEnabled || quote.OverLimit {
		t.Errorf("unexpected gate: %+v", quote)
	}

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/quote", "", dto.QuoteRequest{Amount: "1", Months: 7})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported duration, got %d", status)
	}
	if code := errorCode(t, payload); code != "VALIDATION_FAILED" {
		t.Errorf("error code = %q", code)
	}
}

func TestSessionFlowToDashboard(t *testing.T) {
	s := newTestServer(t, 50*time.Millisecond, false, 100)
	created := s.openSession(t)
	if created.View.Submission.State != domain.SubmissionIdle {
		t.Fatalf("new session state = %s", created.View.Submission.State)
	}
	if created.View.SubmitEnabled {
		t.Fatal("submit must be disabled on an empty form")
	}
	if created.View.Summary.LTVAfterLoan != "0.00%" || created.View.Summary.Amount != "-" {
		t.Errorf("unexpected empty summary: %+v", created.View.Summary)
	}

	token := created.Token
	status, payload := s.do(t, fiber.MethodPut, "/api/v1/loan/session/amount", token, dto.SetAmountRequest{Raw: "Rp 50.000.000"})
	if status != fiber.StatusOK {
		t.Fatalf("set amount: %d %s", status, payload)
	}
	view := decodeData[dto.FormView](t, payload)
	if view.Amount.Display != "50.000.000" {
		t.Errorf("amount display = %q", view.Amount.Display)
	}

	status, payload = s.do(t, fiber.MethodPut, "/api/v1/loan/session/duration", token, dto.SetDurationRequest{Months: 12})
	if status != fiber.StatusOK {
		t.Fatalf("set duration: %d %s", status, payload)
	}
	view = decodeData[dto.FormView](t, payload)
	if !view.SubmitEnabled {
		t.Fatalf("submit should be enabled: %+v", view)
	}
	if view.Summary.Duration != "12 Bulan" {
		t.Errorf("duration label = %q", view.Summary.Duration)
	}

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/submit", token, nil)
	if status != fiber.StatusAccepted {
		t.Fatalf("submit: %d %s", status, payload)
	}
	submitted := decodeData[dto.SubmitResponse](t, payload)
	if !submitted.Accepted || !submitted.View.Loading {
		t.Fatalf("expected accepted loading submission: %+v", submitted)
	}

	status, payload = s.do(t, fiber.MethodPut, "/api/v1/loan/session/amount", token, dto.SetAmountRequest{Raw: "1"})
	if status != fiber.StatusConflict {
		t.Errorf("edit while submitting: expected 409, got %d", status)
	}

	view = waitForState(t, s, token, domain.SubmissionSubmitted)
	if view.Submission.Receipt == nil || view.Submission.Receipt.MonthlyPayment != "Rp 4.229.166,667" {
		t.Errorf("unexpected receipt: %+v", view.Submission.Receipt)
	}

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/acknowledge", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("acknowledge: %d %s", status, payload)
	}
	if nav := decodeData[dto.NavigationResponse](t, payload); nav.Redirect != "/dashboard" {
		t.Errorf("redirect = %q", nav.Redirect)
	}

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/loan/session", token, nil)
	if status != fiber.StatusNotFound {
		t.Errorf("session after acknowledge: expected 404, got %d", status)
	}
}

func TestSubmissionFailureAllowsRetry(t *testing.T) {
	s := newTestServer(t, time.Millisecond, true, 100)
	token := s.openSession(t).Token

	s.do(t, fiber.MethodPut, "/api/v1/loan/session/amount", token, dto.SetAmountRequest{Raw: "1000000"})
	s.do(t, fiber.MethodPut, "/api/v1/loan/session/duration", token, dto.SetDurationRequest{Months: 6})
	status, _ := s.do(t, fiber.MethodPost, "/api/v1/loan/session/submit", token, nil)
	if status != fiber.StatusAccepted {
		t.Fatalf("submit: %d", status)
	}

	view := waitForState(t, s, token, domain.SubmissionFailed)
	if view.Submission.FailureReason == "" {
		t.Error("expected failure reason")
	}
	if !view.SubmitEnabled {
		t.Error("failed submission should allow retry")
	}
}

func TestOverLimitSubmitIsNoop(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)
	token := s.openSession(t).Token

	s.do(t, fiber.MethodPut, "/api/v1/loan/session/duration", token, dto.SetDurationRequest{Months: 24})
	status, payload := s.do(t, fiber.MethodPut, "/api/v1/loan/session/amount", token, dto.SetAmountRequest{Raw: "90000000"})
	if status != fiber.StatusOK {
		t.Fatalf("set amount: %d", status)
	}
	view := decodeData[dto.FormView](t, payload)
	if !view.OverLimit || view.Warning == "" || view.SubmitEnabled {
		t.Fatalf("expected over-limit view: %+v", view)
	}

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/submit", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("submit: %d", status)
	}
	res := decodeData[dto.SubmitResponse](t, payload)
	if res.Accepted || res.View.Submission.State != domain.SubmissionIdle {
		t.Errorf("over-limit submit must be ignored: %+v", res)
	}

	status, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/amount/max", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("set max: %d", status)
	}
	view = decodeData[dto.FormView](t, payload)
	if view.Amount.Value != 86666666 || view.OverLimit {
		t.Errorf("max amount view: %+v", view.Amount)
	}
}

func TestTutorialWalk(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)
	token := s.openSession(t).Token

	status, payload := s.do(t, fiber.MethodPost, "/api/v1/loan/session/tutorial/open", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("open: %d", status)
	}
	view := decodeData[dto.TutorialView](t, payload)
	if !view.Open || view.Index != 0 || view.BackEnabled {
		t.Fatalf("unexpected first step: %+v", view)
	}

	for i := 0; i < 10; i++ {
		_, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/tutorial/next", token, nil)
	}
	view = decodeData[dto.TutorialView](t, payload)
	if view.Index != view.StepCount-1 || view.Affordance != domain.TutorialAffordanceFinish {
		t.Fatalf("expected last step with finish: %+v", view)
	}

	_, payload = s.do(t, fiber.MethodPost, "/api/v1/loan/session/tutorial/finish", token, nil)
	if view = decodeData[dto.TutorialView](t, payload); view.Open {
		t.Error("finish should close the tutorial")
	}
}

func TestSessionRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/loan/session", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if code := errorCode(t, payload); code != "UNAUTHORIZED" {
		t.Errorf("error code = %q", code)
	}

	status, _ = s.do(t, fiber.MethodGet, "/api/v1/loan/session", "not-a-token", nil)
	if status != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", status)
	}
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 100)

	status, payload := s.do(t, fiber.MethodGet, "/api/v1/nope", "", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if code := errorCode(t, payload); code != "NOT_FOUND" {
		t.Errorf("error code = %q", code)
	}
}

func TestRateLimitedLoanRoutes(t *testing.T) {
	s := newTestServer(t, time.Millisecond, false, 2)

	for i := 0; i < 2; i++ {
		if status, _ := s.do(t, fiber.MethodGet, "/api/v1/loan/limits", "", nil); status != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, status)
		}
	}
	status, payload := s.do(t, fiber.MethodGet, "/api/v1/loan/limits", "", nil)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if code := errorCode(t, payload); code != "RATE_LIMITED" {
		t.Errorf("error code = %q", code)
	}

	if status, _ := s.do(t, fiber.MethodGet, "/health/live", "", nil); status != fiber.StatusOK {
		t.Errorf("health must not be rate limited, got %d", status)
	}
}

func waitForState(t *testing.T, s *testServer, token string, want domain.SubmissionState) dto.FormView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		status, payload := s.do(t, fiber.MethodGet, "/api/v1/loan/session", token, nil)
		if status != fiber.StatusOK {
			t.Fatalf("get session: %d %s", status, payload)
		}
		view := decodeData[dto.FormView](t, payload)
		if view.Submission.State == want {
			return view
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s, last state %s", want, view.Submission.State)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
