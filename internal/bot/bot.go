// Package bot wires the Telegram-facing surface: commands, conversation
// flows, callbacks and the trigger notifier.
package bot

import (
	"context"

	tg "github.com/m3rciful/kursbot/core/telegram"
	"github.com/m3rciful/kursbot/core/telegram/commands"
	"github.com/m3rciful/kursbot/core/telegram/state"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/rates"
)

// Conversation states of the bot's multi-turn flows.
const (
	// StateConvertAwaitingTo waits for the target currency of a conversion.
	StateConvertAwaitingTo state.State = "convert_awaiting_to"
	// StateConvertAwaitingAmount waits for the amount to convert.
	StateConvertAwaitingAmount state.State = "convert_awaiting_amount"
	// StateAlertAwaitingAmount waits for the target rate of a new alert.
	StateAlertAwaitingAmount state.State = "alert_awaiting_amount"
)

// Session payload keys shared between flow steps.
const (
	dataFrom      = "from"
	dataTo        = "to"
	dataCondition = "condition"
)

// displayCurrencies are the codes shown by /rates and offered as quick
// replies during conversion.
var displayCurrencies = []string{"USD", "EUR", "RUB", "GBP"}

// UserStore is the user persistence contract of the handlers.
type UserStore interface {
	Upsert(ctx context.Context, telegramID, chatID int64, language string) (domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error)
	SetLanguage(ctx context.Context, telegramID int64, language string) error
	SetBlocked(ctx context.Context, telegramID int64, blocked bool) error
}

// Bot bundles the dependencies of every Telegram handler.
type Bot struct {
	users    UserStore
	alerts   *alerts.Service
	provider rates.Provider
	fsm      *state.Manager
}

// New wires a Bot.
func New(users UserStore, alertSvc *alerts.Service, provider rates.Provider, fsm *state.Manager) *Bot {
	return &Bot{users: users, alerts: alertSvc, provider: provider, fsm: fsm}
}

// FSM exposes the conversation manager for routing.
func (b *Bot) FSM() *state.Manager {
	return b.fsm
}

// Register wires commands, callbacks, flows and the free-text fallback
// into the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Start the bot",
	})
	reg.RegisterCommand("/rates", commands.Command{
		Handler:     b.handleRates,
		Description: "Show current exchange rates",
	})
	reg.RegisterCommand("/convert", commands.Command{
		Handler:     b.handleConvert,
		Description: "Convert an amount between currencies",
	})
	reg.RegisterCommand("/alert", commands.Command{
		Handler:     b.handleAlert,
		Description: "Create a price alert",
	})
	reg.RegisterCommand("/alerts", commands.Command{
		Handler:     b.handleAlerts,
		Description: "List your active alerts",
	})
	reg.RegisterCommand("/language", commands.Command{
		Handler:     b.handleLanguage,
		Description: "Change language",
		Aliases:     []string{"lang"},
	})

	_ = reg.RegisterCallback(cbLanguage, b.handleLanguageCallback)
	_ = reg.RegisterCallback(cbAlertCondition, b.handleAlertConditionCallback)
	_ = reg.RegisterCallback(cbAlertDelete, b.handleAlertDeleteCallback)

	reg.SetTextFallback(b.handleFreeText)

	b.fsm.Register(StateConvertAwaitingTo, b.flowConvertAwaitingTo)
	b.fsm.Register(StateConvertAwaitingAmount, b.flowConvertAwaitingAmount)
	b.fsm.Register(StateAlertAwaitingAmount, b.flowAlertAwaitingAmount)
}
