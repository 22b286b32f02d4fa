package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/core/telegram/state"
)

// StateRepository is a durable state.Store backed by Postgres, so an
// in-flight conversation survives a restart. Writes are last-write-wins
// per user.
type StateRepository struct {
	db *sqlx.DB
}

// NewStateRepository builds a repository over db.
func NewStateRepository(db *sqlx.DB) *StateRepository {
	return &StateRepository{db: db}
}

var _ state.Store = (*StateRepository)(nil)

// Get implements state.Store. A missing row means no conversation. A row
// whose payload cannot be decoded is treated the same way; the broken row
// is cleaned up rather than wedging the user.
func (r *StateRepository) Get(ctx context.Context, userID int64) (state.Session, error) {
	const q = `SELECT state, data FROM user_states WHERE user_id = $1`

	var row struct {
		State string `db:"state"`
		Data  []byte `db:"data"`
	}
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state.Session{State: state.StateNone}, nil
		}
		return state.Session{}, fmt.Errorf("store: get state: %w", err)
	}

	sess := state.Session{State: state.State(row.State)}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &sess.Data); err != nil {
			logger.Warn(ctx, "db", "state.corrupt",
				slog.Int64("user_id", userID), slog.String("err", err.Error()))
			_ = r.Clear(ctx, userID)
			return state.Session{State: state.StateNone}, nil
		}
	}
	return sess, nil
}

// Set implements state.Store.
func (r *StateRepository) Set(ctx context.Context, userID int64, sess state.Session) error {
	const q = `
		INSERT INTO user_states (user_id, state, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state, data = EXCLUDED.data, updated_at = NOW()`

	data, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("store: encode state: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, q, userID, string(sess.State), data); err != nil {
		return fmt.Errorf("store: set state: %w", err)
	}
	return nil
}

// Clear implements state.Store. Clearing an absent row is not an error.
func (r *StateRepository) Clear(ctx context.Context, userID int64) error {
	const q = `DELETE FROM user_states WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("store: clear state: %w", err)
	}
	return nil
}
