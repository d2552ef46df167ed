package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/spec-kit/apply-loan/internal/domain"
	"github.com/spec-kit/apply-loan/internal/loan"
	"github.com/spec-kit/apply-loan/pkg/numfmt"
)

// ProductTerms bundles the loan constants with the static copy shown by the form.
type ProductTerms struct {
	Loan     loan.Terms     `mapstructure:"loan"`
	Tutorial TutorialConfig `mapstructure:"tutorial"`
	Display  DisplayConfig  `mapstructure:"display"`
}

// TutorialConfig holds the guided tutorial content.
type TutorialConfig struct {
	Title string                `mapstructure:"title"`
	Steps []domain.TutorialStep `mapstructure:"steps"`
}

// DisplayConfig holds locale and copy settings for the form view.
type DisplayConfig struct {
	AmountPlaceholder string `mapstructure:"amount_placeholder"`
	CollateralLocale  string `mapstructure:"collateral_locale"`
	AmountLocale      string `mapstructure:"amount_locale"`
	DashboardPath     string `mapstructure:"dashboard_path"`
}

// DefaultTutorialSteps is the five-step walkthrough of the form.
var DefaultTutorialSteps = []domain.TutorialStep{
	{
		Key:         "step1-collateral-summary",
		Title:       "Langkah 1: Periksa Ringkasan Limit",
		Description: "Pertama, perhatikan bagian kartu di atas formulir. Di sini Anda akan melihat 'Total Jaminan Anda' dan 'Maksimal Pinjaman' yang bisa Anda ajukan dalam IDRX. Nilai ini dihitung otomatis berdasarkan aset kripto yang Anda miliki.",
	},
	{
		Key:         "step2-loan-amount",
		Title:       "Langkah 2: Isi Jumlah Pinjaman",
		Description: "Fokus pada kolom input 'Jumlah Pinjaman (IDRX)'. Masukkan jumlah IDRX yang ingin Anda pinjam. Pastikan angka yang Anda masukkan tidak melebihi 'Maksimal Pinjaman' yang tertera di ringkasan limit Anda.",
	},
	{
		Key:         "step3-duration",
		Title:       "Langkah 3: Pilih Jangka Waktu",
		Description: "Selanjutnya, gunakan dropdown 'Jangka Waktu (Bulan)' untuk memilih durasi pinjaman Anda. Pilihan ini akan mempengaruhi perhitungan cicilan bulanan Anda.",
	},
	{
		Key:         "step4-loan-summary",
		Title:       "Langkah 4: Tinjau Ringkasan Pinjaman",
		Description: "Lihatlah kartu 'Ringkasan Pinjaman' di sisi kanan. Ini adalah tempat di mana Anda dapat melihat detail pinjaman yang telah Anda masukkan, termasuk estimasi 'Pembayaran Bulanan' dan 'Suku Bunga'. Pastikan semua sudah sesuai.",
	},
	{
		Key:         "step5-submit-button",
		Title:       "Langkah 5: Ajukan Pinjaman",
		Description: "Setelah meninjau semua detail dan memastikan semuanya benar, klik tombol 'Ajukan Pinjaman'. Jika aplikasi Anda memenuhi syarat, dana akan langsung cair ke wallet Anda dalam beberapa menit.",
	},
}

// DefaultProductTerms returns the compiled-in terms.
func DefaultProductTerms() ProductTerms {
	return ProductTerms{
		Loan: loan.DefaultTerms(),
		Tutorial: TutorialConfig{
			Title: "Cara Mengajukan Pinjaman",
			Steps: append([]domain.TutorialStep(nil), DefaultTutorialSteps...),
		},
		Display: DisplayConfig{
			AmountPlaceholder: "ex. 50.000.000",
			CollateralLocale:  "en-US",
			AmountLocale:      "id-ID",
			DashboardPath:     "/dashboard",
		},
	}
}

// LoadTerms reads product terms from a YAML file, falling back to defaults for
// absent keys. An empty path yields the defaults.
func LoadTerms(path string) (*ProductTerms, error) {
	v := viper.New()
	setTermDefaults(v, DefaultProductTerms())

	v.SetEnvPrefix("LOAN_TERMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading terms file, %w", err)
		}
	}

	var terms ProductTerms
	if err := v.Unmarshal(&terms); err != nil {
		return nil, fmt.Errorf("unable to decode terms, %w", err)
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	return &terms, nil
}

// Validate checks terms before the service starts.
func (p ProductTerms) Validate() error {
	errs := []error{p.Loan.Validate()}
	if len(p.Tutorial.Steps) == 0 {
		errs = append(errs, errors.New("tutorial needs at least one step"))
	}
	for i, step := range p.Tutorial.Steps {
		if strings.TrimSpace(step.Title) == "" {
			errs = append(errs, fmt.Errorf("tutorial step %d has no title", i))
		}
	}
	if _, ok := numfmt.ByTag(p.Display.CollateralLocale); !ok {
		errs = append(errs, fmt.Errorf("unknown collateral locale %q", p.Display.CollateralLocale))
	}
	if _, ok := numfmt.ByTag(p.Display.AmountLocale); !ok {
		errs = append(errs, fmt.Errorf("unknown amount locale %q", p.Display.AmountLocale))
	}
	return errors.Join(errs...)
}

func setTermDefaults(v *viper.Viper, d ProductTerms) {
	v.SetDefault("loan.collateral_value", d.Loan.CollateralValue)
	v.SetDefault("loan.ltv_numerator", d.Loan.LTVNumerator)
	v.SetDefault("loan.ltv_denominator", d.Loan.LTVDenominator)
	v.SetDefault("loan.exchange_rate", d.Loan.ExchangeRate)
	v.SetDefault("loan.annual_interest_rate", d.Loan.AnnualInterestRate)
	v.SetDefault("loan.durations", d.Loan.Durations)

	steps := make([]map[string]any, 0, len(d.Tutorial.Steps))
	for _, s := range d.Tutorial.Steps {
		steps = append(steps, map[string]any{"key": s.Key, "title": s.Title, "description": s.Description})
	}
	v.SetDefault("tutorial.title", d.Tutorial.Title)
	v.SetDefault("tutorial.steps", steps)

	v.SetDefault("display.amount_placeholder", d.Display.AmountPlaceholder)
	v.SetDefault("display.collateral_locale", d.Display.CollateralLocale)
	v.SetDefault("display.amount_locale", d.Display.AmountLocale)
	v.SetDefault("display.dashboard_path", d.Display.DashboardPath)
}
