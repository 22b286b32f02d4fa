// Package domain holds the core entities of the bot: users, alerts and the
// enumerations shared between the store, the engine and the handlers.
package domain

import (
	"errors"
	"strings"
	"time"
)

// BaseCurrency is the reporting currency every rate is quoted against.
const BaseCurrency = "UZS"

var (
	// ErrNotFound signals that a requested record does not exist.
	ErrNotFound = errors.New("domain: not found")
	// ErrBadTarget signals a non-positive or unparseable target rate.
	ErrBadTarget = errors.New("domain: target rate must be positive")
	// ErrBadCondition signals a condition outside the supported set.
	ErrBadCondition = errors.New("domain: unknown alert condition")
	// ErrBadCurrency signals an empty or malformed currency code.
	ErrBadCurrency = errors.New("domain: invalid currency code")
)

// Condition is the direction of the threshold crossing that fires an alert.
type Condition string

const (
	// ConditionAbove fires when the observed rate is at or above the target.
	ConditionAbove Condition = "above"
	// ConditionBelow fires when the observed rate is at or below the target.
	ConditionBelow Condition = "below"
)

// Valid reports whether the condition is one of the supported values.
func (c Condition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// Symbol returns the comparator glyph used in user-facing messages.
func (c Condition) Symbol() string {
	switch c {
	case ConditionAbove:
		return "≥"
	case ConditionBelow:
		return "≤"
	}
	return "?"
}

// ParseCondition normalizes free-form condition input.
func ParseCondition(raw string) (Condition, error) {
	switch Condition(strings.ToLower(strings.TrimSpace(raw))) {
	case ConditionAbove:
		return ConditionAbove, nil
	case ConditionBelow:
		return ConditionBelow, nil
	}
	return "", ErrBadCondition
}

// User is a known Telegram user of the bot.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	ChatID     int64     `db:"chat_id"`
	Language   string    `db:"language"`
	IsBlocked  bool      `db:"is_blocked"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Alert is a persisted request to be notified when a currency pair crosses
// a threshold in a given direction.
//
// An alert is eligible for evaluation iff IsActive && !IsTriggered. Once
// triggered it keeps TriggeredAt and TriggeredRate forever; triggering is
// terminal regardless of whether the notification was delivered.
type Alert struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	CurrencyFrom  string     `db:"currency_from"`
	CurrencyTo    string     `db:"currency_to"`
	Condition     Condition  `db:"condition"`
	TargetRate    float64    `db:"target_rate"`
	IsActive      bool       `db:"is_active"`
	IsTriggered   bool       `db:"is_triggered"`
	TriggeredAt   *time.Time `db:"triggered_at"`
	TriggeredRate *float64   `db:"triggered_rate"`
	CreatedAt     time.Time  `db:"created_at"`
}

// Eligible reports whether the alert should be evaluated this cycle.
func (a Alert) Eligible() bool {
	return a.IsActive && !a.IsTriggered
}

// EligibleAlert couples an eligible alert with its owner so the engine does
// not need a per-alert user lookup.
type EligibleAlert struct {
	Alert
	OwnerTelegramID int64  `db:"owner_telegram_id"`
	OwnerChatID     int64  `db:"owner_chat_id"`
	OwnerLanguage   string `db:"owner_language"`
	OwnerBlocked    bool   `db:"owner_blocked"`
}

// NormalizeCurrency upper-cases a currency code and verifies its shape.
// Whether the code is actually quoted by the rate source is decided
// downstream: an unknown code simply never resolves to a rate.
func NormalizeCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return "", ErrBadCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrBadCurrency
		}
	}
	return code, nil
}
