package bot

import (
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/kursbot/core/telegram/helpers"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
)

// Callback keys registered by this bot.
const (
	cbLanguage       = "lang"
	cbAlertCondition = "alert_cond"
	cbAlertDelete    = "alert_del"
)

// callbackPayload extracts the payload part of telebot's
// \f<unique>|<payload> callback encoding.
func callbackPayload(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	if _, payload, ok := strings.Cut(raw, "|"); ok {
		return payload
	}
	return ""
}

func (b *Bot) handleLanguageCallback(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb.language")
	lang := i18n.Normalize(callbackPayload(c.Callback()))

	if err := b.users.SetLanguage(ctx, c.Sender().ID, lang); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := b.users.Upsert(ctx, c.Sender().ID, c.Chat().ID, lang); err != nil {
			return err
		}
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "language.changed"))
}

// handleAlertConditionCallback advances the alert flow after the user
// picked a direction; the payload carries "<from>|<condition>".
func (b *Bot) handleAlertConditionCallback(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb.alert_condition")
	u, err := b.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return err
	}

	fromRaw, condRaw, _ := strings.Cut(callbackPayload(c.Callback()), "|")
	from, err := domain.NormalizeCurrency(fromRaw)
	if err != nil {
		return tghelpers.EditOrSendMD(c, i18n.T(u.Language, "convert.bad_currency"))
	}
	cond, err := domain.ParseCondition(condRaw)
	if err != nil {
		return tghelpers.EditOrSendMD(c, i18n.T(u.Language, "error.generic"))
	}

	current := "—"
	if rate, rerr := b.provider.Rate(ctx, from, domain.BaseCurrency); rerr == nil {
		current = alerts.FormatRate(rate)
	}

	if err := b.fsm.Enter(ctx, u.TelegramID, StateAlertAwaitingAmount, map[string]string{
		dataFrom:      from,
		dataTo:        domain.BaseCurrency,
		dataCondition: string(cond),
	}); err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, i18n.Tf(u.Language, "alert.ask_amount", from, current))
}

func (b *Bot) handleAlertDeleteCallback(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb.alert_delete")
	lang := b.userLang(ctx, c)

	id, err := strconv.ParseInt(callbackPayload(c.Callback()), 10, 64)
	if err != nil {
		return tghelpers.EditOrSendMD(c, i18n.T(lang, "alerts.not_found"))
	}

	u, err := b.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return err
	}
	if err := b.alerts.Delete(ctx, u.ID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, i18n.T(lang, "alerts.not_found"))
		}
		return err
	}
	return tghelpers.EditOrSendMD(c, i18n.T(lang, "alerts.deleted"))
}
