package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/kursbot/core/telegram/helpers"
	"github.com/m3rciful/kursbot/core/telegram/keyboard"
	"github.com/m3rciful/kursbot/core/telegram/state"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
	"github.com/m3rciful/kursbot/internal/parse"
)

// Invalid input inside a flow keeps the state and reprompts. Commands are
// routed on their own endpoints and so stay reachable mid-flow; /start
// additionally clears a stuck conversation.

func (b *Bot) flowConvertAwaitingTo(c tele.Context, sess state.Session) error {
	ctx := tghelpers.WithHandler(c, "fsm.convert_to")
	lang := b.userLang(ctx, c)

	to, err := domain.NormalizeCurrency(c.Text())
	if err != nil {
		return tghelpers.SendText(c, i18n.T(lang, "convert.bad_currency"))
	}

	from := sess.Value(dataFrom)
	if err := b.fsm.Enter(ctx, c.Sender().ID, StateConvertAwaitingAmount, map[string]string{
		dataFrom: from,
		dataTo:   to,
	}); err != nil {
		return err
	}
	return tghelpers.SendText(c, i18n.Tf(lang, "convert.ask_amount", from),
		&tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

func (b *Bot) flowConvertAwaitingAmount(c tele.Context, sess state.Session) error {
	ctx := tghelpers.WithHandler(c, "fsm.convert_amount")
	lang := b.userLang(ctx, c)

	amount, err := parse.Amount(c.Text())
	if err != nil {
		return tghelpers.SendText(c, i18n.T(lang, "amount.invalid"))
	}

	from, to := sess.Value(dataFrom), sess.Value(dataTo)
	rate, err := b.provider.Rate(ctx, from, to)
	if err != nil {
		_ = b.fsm.Clear(ctx, c.Sender().ID)
		return tghelpers.SendText(c, i18n.T(lang, "rates.unavailable"))
	}

	if err := b.fsm.Clear(ctx, c.Sender().ID); err != nil {
		return err
	}
	return tghelpers.SendText(c, i18n.Tf(lang, "convert.result",
		alerts.FormatRate(amount), from, alerts.FormatRate(amount*rate), to))
}

func (b *Bot) flowAlertAwaitingAmount(c tele.Context, sess state.Session) error {
	ctx := tghelpers.WithHandler(c, "fsm.alert_amount")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}

	target, err := parse.Amount(c.Text())
	if err != nil {
		return tghelpers.SendText(c, i18n.T(u.Language, "amount.invalid"))
	}

	cond, err := domain.ParseCondition(sess.Value(dataCondition))
	if err != nil {
		// Stale payload from an older build; restart the flow.
		_ = b.fsm.Clear(ctx, u.TelegramID)
		return tghelpers.SendText(c, i18n.T(u.Language, "alert.parse_hint"))
	}

	if err := b.fsm.Clear(ctx, u.TelegramID); err != nil {
		return err
	}
	return b.createAlert(ctx, c, u, parse.AlertRequest{
		From:      sess.Value(dataFrom),
		To:        sess.Value(dataTo),
		Condition: cond,
		Target:    target,
	})
}
