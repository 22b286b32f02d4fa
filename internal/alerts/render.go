package alerts

import (
	"strconv"

	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
)

// FormatRate renders a rate the way users see it: up to two decimals,
// trailing zeros trimmed.
func FormatRate(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// RenderTriggered builds the localized notification text for a fired
// alert.
func RenderTriggered(lang string, a domain.Alert, rate float64) string {
	lang = i18n.Normalize(lang)
	pair := a.CurrencyFrom + "/" + a.CurrencyTo
	return i18n.Tf(lang, "alert.triggered",
		pair, FormatRate(rate), a.Condition.Symbol(), FormatRate(a.TargetRate))
}

// RenderCreated builds the localized confirmation text for a new alert.
func RenderCreated(lang string, a domain.Alert) string {
	lang = i18n.Normalize(lang)
	pair := a.CurrencyFrom + "/" + a.CurrencyTo
	dir := i18n.T(lang, "direction."+string(a.Condition))
	return i18n.Tf(lang, "alert.created", pair, dir, FormatRate(a.TargetRate))
}
