package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kursbot/core/logger"
	tghelpers "github.com/m3rciful/kursbot/core/telegram/helpers"
	"github.com/m3rciful/kursbot/core/telegram/keyboard"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
	"github.com/m3rciful/kursbot/internal/parse"
)

// ensureUser registers or refreshes the sender and returns the stored row.
func (b *Bot) ensureUser(ctx context.Context, c tele.Context) (domain.User, error) {
	sender := c.Sender()
	lang := i18n.Normalize(sender.LanguageCode)
	return b.users.Upsert(ctx, sender.ID, c.Chat().ID, lang)
}

// userLang resolves the sender's stored language without creating a row.
func (b *Bot) userLang(ctx context.Context, c tele.Context) string {
	u, err := b.users.GetByTelegramID(ctx, c.Sender().ID)
	if err != nil {
		return i18n.Normalize(c.Sender().LanguageCode)
	}
	return i18n.Normalize(u.Language)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "start")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}
	// A stale conversation from before a restart should not swallow the
	// first message.
	_ = b.fsm.Clear(ctx, u.TelegramID)
	return tghelpers.SendText(c, i18n.T(u.Language, "start.welcome"))
}

func (b *Bot) handleRates(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "rates")
	lang := b.userLang(ctx, c)

	var lines []string
	for _, code := range displayCurrencies {
		rate, err := b.provider.Rate(ctx, code, domain.BaseCurrency)
		if err != nil {
			logger.Warn(ctx, "tg", "rates.lookup_failed",
				slog.String("pair", code+"/"+domain.BaseCurrency),
				slog.String("err", err.Error()))
			continue
		}
		lines = append(lines, i18n.Tf(lang, "rates.line", code, alerts.FormatRate(rate)))
	}
	if len(lines) == 0 {
		return tghelpers.SendText(c, i18n.T(lang, "rates.unavailable"))
	}
	text := i18n.T(lang, "rates.header") + "\n" + strings.Join(lines, "\n")
	return tghelpers.SendText(c, text)
}

func (b *Bot) handleConvert(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "convert")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}

	from := "USD"
	if payload := strings.TrimSpace(c.Message().Payload); payload != "" {
		code, err := domain.NormalizeCurrency(payload)
		if err != nil {
			return tghelpers.SendText(c, i18n.T(u.Language, "convert.bad_currency"))
		}
		from = code
	}

	if err := b.fsm.Enter(ctx, u.TelegramID, StateConvertAwaitingTo, map[string]string{
		dataFrom: from,
	}); err != nil {
		return err
	}
	kb := keyboard.ReplyButtons(append([]string{domain.BaseCurrency}, displayCurrencies...))
	return tghelpers.SendText(c, i18n.Tf(u.Language, "convert.ask_to", from),
		&tele.SendOptions{ReplyMarkup: kb})
}

func (b *Bot) handleAlert(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "alert")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}

	payload := strings.TrimSpace(c.Message().Payload)

	// "/alert USD > 13000" carries the full request inline.
	if req, ok := parse.Alert(payload); ok {
		return b.createAlert(ctx, c, u, req)
	}

	from := "USD"
	if payload != "" {
		code, err := domain.NormalizeCurrency(payload)
		if err != nil {
			return tghelpers.SendText(c, i18n.T(u.Language, "convert.bad_currency"))
		}
		from = code
	}

	kb := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{
			Text:   "⬆ " + i18n.T(u.Language, "direction.above"),
			Unique: cbAlertCondition,
			Data:   from + "|" + string(domain.ConditionAbove),
		},
		{
			Text:   "⬇ " + i18n.T(u.Language, "direction.below"),
			Unique: cbAlertCondition,
			Data:   from + "|" + string(domain.ConditionBelow),
		},
	})
	return tghelpers.SendText(c, i18n.Tf(u.Language, "alert.ask_condition", from),
		&tele.SendOptions{ReplyMarkup: kb})
}

func (b *Bot) handleAlerts(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "alerts")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}

	list, err := b.alerts.List(ctx, u.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, i18n.T(u.Language, "alerts.empty"))
	}

	var sb strings.Builder
	sb.WriteString(i18n.T(u.Language, "alerts.header"))
	var btns []keyboard.InlineBtn
	for i, a := range list {
		sb.WriteString("\n")
		sb.WriteString(i18n.Tf(u.Language, "alerts.line",
			i+1, a.CurrencyFrom+"/"+a.CurrencyTo, a.Condition.Symbol(), alerts.FormatRate(a.TargetRate)))
		btns = append(btns, keyboard.InlineBtn{
			Text:   fmt.Sprintf("❌ %d", i+1),
			Unique: cbAlertDelete,
			Data:   fmt.Sprintf("%d", a.ID),
		})
	}
	return tghelpers.SendText(c, sb.String(),
		&tele.SendOptions{ReplyMarkup: keyboard.InlineButtonsNPerRow(btns, 4)})
}

func (b *Bot) handleLanguage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "language")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}
	kb := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "English", Unique: cbLanguage, Data: i18n.LangEN},
		{Text: "Русский", Unique: cbLanguage, Data: i18n.LangRU},
		{Text: "O'zbekcha", Unique: cbLanguage, Data: i18n.LangUZ},
	})
	return tghelpers.SendText(c, i18n.T(u.Language, "language.choose"),
		&tele.SendOptions{ReplyMarkup: kb})
}

// handleFreeText recognizes alert requests typed without a command, e.g.
// "USD > 13000" or "usd 13000 dan yuqori".
func (b *Bot) handleFreeText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "free_text")
	u, err := b.ensureUser(ctx, c)
	if err != nil {
		return err
	}
	req, ok := parse.Alert(c.Text())
	if !ok {
		return tghelpers.SendText(c, i18n.T(u.Language, "alert.parse_hint"))
	}
	return b.createAlert(ctx, c, u, req)
}

// createAlert runs the service call and renders the outcome.
func (b *Bot) createAlert(ctx context.Context, c tele.Context, u domain.User, req parse.AlertRequest) error {
	a, err := b.alerts.Create(ctx, u.ID, req.From, req.To, req.Condition, req.Target)
	switch {
	case err == nil:
		return tghelpers.SendText(c, alerts.RenderCreated(u.Language, a))
	case isUserError(err):
		return tghelpers.SendText(c, userErrorText(u.Language, err))
	default:
		return err
	}
}
