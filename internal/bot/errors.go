package bot

import (
	"errors"

	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
)

// isUserError reports whether err is caused by user input and deserves a
// localized reply instead of the generic failure path.
func isUserError(err error) bool {
	return errors.Is(err, domain.ErrBadCurrency) ||
		errors.Is(err, domain.ErrBadCondition) ||
		errors.Is(err, domain.ErrBadTarget) ||
		errors.Is(err, alerts.ErrTooManyAlerts)
}

// userErrorText maps a user error to its localized message.
func userErrorText(lang string, err error) string {
	switch {
	case errors.Is(err, domain.ErrBadCurrency):
		return i18n.T(lang, "convert.bad_currency")
	case errors.Is(err, domain.ErrBadTarget):
		return i18n.T(lang, "alert.bad_target")
	case errors.Is(err, alerts.ErrTooManyAlerts):
		return i18n.T(lang, "alert.limit")
	}
	return i18n.T(lang, "error.generic")
}
