// Package store implements Postgres persistence for users, alerts and
// conversation state on top of sqlx.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/internal/domain"
)

// UserRepository persists bot users keyed by their Telegram id.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository builds a repository over db.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user on first contact or refreshes chat id and clears
// the blocked flag on repeat contact. It returns the stored row.
func (r *UserRepository) Upsert(ctx context.Context, telegramID, chatID int64, language string) (domain.User, error) {
	const q = `
		INSERT INTO users (telegram_id, chat_id, language)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
		    is_blocked = FALSE,
		    updated_at = NOW()
		RETURNING id, telegram_id, chat_id, language, is_blocked, created_at, updated_at`

	var u domain.User
	if err := r.db.GetContext(ctx, &u, q, telegramID, chatID, language); err != nil {
		return domain.User{}, fmt.Errorf("store: upsert user: %w", err)
	}
	logger.Debug(ctx, "db", "user.upsert", slog.Int64("user_id", u.TelegramID))
	return u, nil
}

// GetByTelegramID loads a user or domain.ErrNotFound.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	const q = `
		SELECT id, telegram_id, chat_id, language, is_blocked, created_at, updated_at
		FROM users WHERE telegram_id = $1`

	var u domain.User
	if err := r.db.GetContext(ctx, &u, q, telegramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("store: get user: %w", err)
	}
	return u, nil
}

// SetLanguage updates the preferred language of a user.
func (r *UserRepository) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	const q = `UPDATE users SET language = $2, updated_at = NOW() WHERE telegram_id = $1`

	res, err := r.db.ExecContext(ctx, q, telegramID, language)
	if err != nil {
		return fmt.Errorf("store: set language: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetBlocked flips the blocked flag, typically after Telegram reports the
// user stopped the bot.
func (r *UserRepository) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	const q = `UPDATE users SET is_blocked = $2, updated_at = NOW() WHERE telegram_id = $1`

	res, err := r.db.ExecContext(ctx, q, telegramID, blocked)
	if err != nil {
		return fmt.Errorf("store: set blocked: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	logger.Info(ctx, "db", "user.blocked",
		slog.Int64("user_id", telegramID), slog.Bool("blocked", blocked))
	return nil
}
