// Package numfmt renders numbers with locale-style digit grouping.
package numfmt

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxFractionDigits is the fraction precision used for decimal figures.
const MaxFractionDigits = 3

// Locale binds a display tag to its CLDR number conventions.
type Locale struct {
	Tag  string
	lang language.Tag
}

var (
	// IDID groups thousands with '.' and uses ',' for decimals (e.g. "86.666.666,667").
	IDID = Locale{Tag: "id-ID", lang: language.Indonesian}
	// ENUS groups thousands with ',' and uses '.' for decimals (e.g. "130,000,000").
	ENUS = Locale{Tag: "en-US", lang: language.AmericanEnglish}
)

// ByTag returns the locale registered under tag.
func ByTag(tag string) (Locale, bool) {
	switch strings.ToLower(tag) {
	case "id-id", "id":
		return IDID, true
	case "en-us", "en":
		return ENUS, true
	}
	return Locale{}, false
}

// FormatInt formats n with the locale's group separator.
func (l Locale) FormatInt(n int64) string {
	return l.printer().Sprint(number.Decimal(n))
}

// FormatFloat formats v rounded to MaxFractionDigits with trailing zeros trimmed.
func (l Locale) FormatFloat(v float64) string {
	return l.printer().Sprint(number.Decimal(v, number.MaxFractionDigits(MaxFractionDigits)))
}

// Percent2 renders v with exactly two decimals and a percent sign ("12.34%").
// It always uses '.' and never groups digits.
func Percent2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func (l Locale) printer() *message.Printer {
	return message.NewPrinter(l.lang)
}
