package handlers

import (
	"strconv"

	"github.com/spec-kit/apply-loan/internal/api/dto"
	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/loan"
	"github.com/spec-kit/apply-loan/internal/service"
	"github.com/spec-kit/apply-loan/pkg/numfmt"
)

const (
	emptyFigure      = "-"
	emptyLTV         = "0.00%"
	currencyPrefix   = "Rp "
	overLimitWarning = "Jumlah pinjaman melebihi batas maksimal."
)

// Presenter renders service state into display strings.
// Collateral uses its own locale; every other figure uses the amount locale.
type Presenter struct {
	terms            config.ProductTerms
	amountLocale     numfmt.Locale
	collateralLocale numfmt.Locale
	tutorial         *service.TutorialService
}

// NewPresenter builds a presenter. Unknown locale tags fall back to id-ID.
func NewPresenter(terms config.ProductTerms, tutorial *service.TutorialService) *Presenter {
	amountLocale, ok := numfmt.ByTag(terms.Display.AmountLocale)
	if !ok {
		amountLocale = numfmt.IDID
	}
	collateralLocale, ok := numfmt.ByTag(terms.Display.CollateralLocale)
	if !ok {
		collateralLocale = numfmt.IDID
	}
	return &Presenter{
		terms:            terms,
		amountLocale:     amountLocale,
		collateralLocale: collateralLocale,
		tutorial:         tutorial,
	}
}

// Limits renders the collateral summary.
func (p *Presenter) Limits() dto.LimitsResponse {
	t := p.terms.Loan
	return dto.LimitsResponse{
		CollateralValue:   t.CollateralValue,
		CollateralDisplay: currencyPrefix + p.collateralLocale.FormatInt(t.CollateralValue),
		Ceiling:           t.Ceiling(),
		MaxLoanable:       t.MaxLoanable(),
		MaxLoanDisplay:    currencyPrefix + p.amountLocale.FormatFloat(t.Ceiling()),
		Durations:         append([]int(nil), t.Durations...),
		InterestRateLabel: p.interestLabel(),
	}
}

// Form renders the whole screen for a snapshot.
func (p *Presenter) Form(snap *service.FormSnapshot) dto.FormView {
	session := snap.Session
	view := dto.FormView{
		SessionID:     session.ID,
		Limits:        p.Limits(),
		Amount:        p.amount(session.Amount),
		Duration:      p.duration(session.Duration),
		Summary:       p.summary(session.Amount, session.Duration, snap.Quote),
		OverLimit:     snap.Quote.OverLimit,
		SubmitEnabled: snap.SubmitEnabled,
		Loading:       session.Loading(),
		Submission: dto.SubmissionView{
			State:         session.Submission,
			ApplicationID: session.ApplicationID,
			FailureReason: session.FailureReason,
		},
		Tutorial:  p.Tutorial(p.tutorial.State(session.Tutorial)),
		UpdatedAt: session.UpdatedAt,
	}
	if snap.Quote.OverLimit {
		view.Warning = overLimitWarning
	}
	if session.Submission == domain.SubmissionSubmitted {
		view.Submission.Receipt = &dto.ReceiptView{
			Amount:         currencyPrefix + p.amountLocale.FormatInt(session.Amount.Value),
			Duration:       durationLabel(session.Duration),
			MonthlyPayment: currencyPrefix + p.amountLocale.FormatFloat(snap.Quote.MonthlyPayment),
		}
	}
	return view
}

// Quote renders a stateless quote.
func (p *Presenter) Quote(res *service.QuoteResult) dto.QuoteResponse {
	return dto.QuoteResponse{
		Amount:        p.amount(res.Amount),
		Summary:       p.summary(res.Amount, res.Duration, res.Quote),
		OverLimit:     res.Quote.OverLimit,
		SubmitEnabled: res.SubmitEnabled,
	}
}

// Tutorial renders the tutorial dialog.
func (p *Presenter) Tutorial(state *service.TutorialState) dto.TutorialView {
	return dto.TutorialView{
		Title:       state.Title,
		Open:        state.Cursor.Open,
		Index:       state.Cursor.Index,
		StepCount:   state.StepCount,
		Step:        state.Step,
		Affordance:  state.Affordance,
		BackEnabled: state.CanGoBack,
	}
}

func (p *Presenter) amount(amount domain.LoanAmount) dto.AmountView {
	return dto.AmountView{
		Value:       amount.Value,
		Set:         amount.Set,
		Display:     loan.Display(amount, p.amountLocale),
		Placeholder: p.terms.Display.AmountPlaceholder,
	}
}

func (p *Presenter) duration(d domain.LoanDuration) dto.DurationView {
	view := dto.DurationView{
		Months:  int(d),
		Display: emptyFigure,
		Options: append([]int(nil), p.terms.Loan.Durations...),
	}
	if d.IsSet() {
		view.Display = durationLabel(d)
	}
	return view
}

func (p *Presenter) summary(amount domain.LoanAmount, d domain.LoanDuration, q loan.Quote) dto.SummaryView {
	view := dto.SummaryView{
		Amount:         emptyFigure,
		Duration:       emptyFigure,
		InterestRate:   p.interestLabel(),
		MonthlyPayment: emptyFigure,
		MonthlyValue:   q.MonthlyPayment,
		LTVAfterLoan:   emptyLTV,
	}
	if amount.Set {
		view.Amount = currencyPrefix + loan.Display(amount, p.amountLocale)
		view.LTVAfterLoan = numfmt.Percent2(q.LTVAfterLoan)
	}
	if d.IsSet() {
		view.Duration = durationLabel(d)
	}
	if q.MonthlyPayment > 0 {
		view.MonthlyPayment = currencyPrefix + p.amountLocale.FormatFloat(q.MonthlyPayment)
	}
	return view
}

func (p *Presenter) interestLabel() string {
	return strconv.FormatFloat(p.terms.Loan.AnnualInterestRate, 'f', -1, 64) + "% per tahun"
}

func durationLabel(d domain.LoanDuration) string {
	return strconv.Itoa(int(d)) + " Bulan"
}
