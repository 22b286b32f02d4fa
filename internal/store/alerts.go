package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/internal/domain"
)

// AlertRepository persists price alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository builds a repository over db.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new active, untriggered alert and returns it.
func (r *AlertRepository) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	const q = `
		INSERT INTO alerts (user_id, currency_from, currency_to, condition, target_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, currency_from, currency_to, condition, target_rate,
		          is_active, is_triggered, triggered_at, triggered_rate, created_at`

	var out domain.Alert
	err := r.db.GetContext(ctx, &out, q,
		a.UserID, a.CurrencyFrom, a.CurrencyTo, a.Condition, a.TargetRate)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("store: create alert: %w", err)
	}
	logger.Debug(ctx, "db", "alert.created",
		slog.Int64("alert_id", out.ID),
		slog.String("pair", out.CurrencyFrom+"/"+out.CurrencyTo))
	return out, nil
}

// ListEligible returns every active, untriggered alert joined with its
// owner. Evaluation order is stable (oldest alerts first).
func (r *AlertRepository) ListEligible(ctx context.Context) ([]domain.EligibleAlert, error) {
	const q = `
		SELECT a.id, a.user_id, a.currency_from, a.currency_to, a.condition,
		       a.target_rate, a.is_active, a.is_triggered, a.triggered_at,
		       a.triggered_rate, a.created_at,
		       u.telegram_id AS owner_telegram_id,
		       u.chat_id     AS owner_chat_id,
		       u.language    AS owner_language,
		       u.is_blocked  AS owner_blocked
		FROM alerts a
		JOIN users u ON u.id = a.user_id
		WHERE a.is_active AND NOT a.is_triggered
		ORDER BY a.id`

	var out []domain.EligibleAlert
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("store: list eligible alerts: %w", err)
	}
	return out, nil
}

// ListByOwner returns the active, untriggered alerts of one user, oldest
// first.
func (r *AlertRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Alert, error) {
	const q = `
		SELECT id, user_id, currency_from, currency_to, condition, target_rate,
		       is_active, is_triggered, triggered_at, triggered_rate, created_at
		FROM alerts
		WHERE user_id = $1 AND is_active AND NOT is_triggered
		ORDER BY id`

	var out []domain.Alert
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("store: list alerts: %w", err)
	}
	return out, nil
}

// CountByOwner returns how many eligible alerts a user currently has.
func (r *AlertRepository) CountByOwner(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM alerts WHERE user_id = $1 AND is_active AND NOT is_triggered`

	var n int
	if err := r.db.GetContext(ctx, &n, q, userID); err != nil {
		return 0, fmt.Errorf("store: count alerts: %w", err)
	}
	return n, nil
}

// MarkTriggered records the terminal triggered state for an alert. The
// guard clause makes the transition atomic: only one caller ever observes
// true for a given alert, every later attempt returns false.
func (r *AlertRepository) MarkTriggered(ctx context.Context, alertID int64, at time.Time, rate float64) (bool, error) {
	const q = `
		UPDATE alerts
		SET is_triggered = TRUE, triggered_at = $2, triggered_rate = $3
		WHERE id = $1 AND is_active AND NOT is_triggered`

	res, err := r.db.ExecContext(ctx, q, alertID, at, rate)
	if err != nil {
		return false, fmt.Errorf("store: mark triggered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: mark triggered: %w", err)
	}
	return n == 1, nil
}

// Delete deactivates an alert owned by userID. It reports whether a row
// was actually removed so handlers can distinguish a stale id.
func (r *AlertRepository) Delete(ctx context.Context, alertID, userID int64) (bool, error) {
	const q = `DELETE FROM alerts WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, q, alertID, userID)
	if err != nil {
		return false, fmt.Errorf("store: delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: delete alert: %w", err)
	}
	if n == 1 {
		logger.Debug(ctx, "db", "alert.deleted", slog.Int64("alert_id", alertID))
	}
	return n == 1, nil
}

// Get loads an alert by id or domain.ErrNotFound.
func (r *AlertRepository) Get(ctx context.Context, alertID int64) (domain.Alert, error) {
	const q = `
		SELECT id, user_id, currency_from, currency_to, condition, target_rate,
		       is_active, is_triggered, triggered_at, triggered_rate, created_at
		FROM alerts WHERE id = $1`

	var out domain.Alert
	if err := r.db.GetContext(ctx, &out, q, alertID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Alert{}, domain.ErrNotFound
		}
		return domain.Alert{}, fmt.Errorf("store: get alert: %w", err)
	}
	return out, nil
}
