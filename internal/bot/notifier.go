package bot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
)

// messageSender is the slice of tele.Bot the notifier needs.
type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers alert trigger messages outside of any inbound update.
// When Telegram reports the recipient blocked the bot, the user is marked
// blocked so future cycles stop messaging them.
type Notifier struct {
	sender messageSender
	users  UserStore
}

// NewNotifier wires a notifier around the bot transport.
func NewNotifier(sender messageSender, users UserStore) *Notifier {
	return &Notifier{sender: sender, users: users}
}

var _ alerts.Notifier = (*Notifier)(nil)

// NotifyTriggered implements alerts.Notifier.
func (n *Notifier) NotifyTriggered(ctx context.Context, a domain.EligibleAlert, rate float64) error {
	text := alerts.RenderTriggered(a.OwnerLanguage, a.Alert, rate)
	_, err := n.sender.Send(tele.ChatID(a.OwnerChatID), text)
	if err == nil {
		logger.Debug(ctx, "tg", "notify.sent",
			slog.Int64("alert_id", a.ID), slog.Int64("chat_id", a.OwnerChatID))
		return nil
	}

	var teleErr *tele.Error
	if errors.As(err, &teleErr) && teleErr.Code == http.StatusForbidden {
		if berr := n.users.SetBlocked(ctx, a.OwnerTelegramID, true); berr != nil {
			logger.Warn(ctx, "tg", "notify.block_update_failed",
				slog.Int64("user_id", a.OwnerTelegramID),
				slog.String("err", berr.Error()))
		}
	}
	return err
}
