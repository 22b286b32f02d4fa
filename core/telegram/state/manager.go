package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/m3rciful/kursbot/core/logger"
	tghelpers "github.com/m3rciful/kursbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Manager orchestrates per-user conversation sessions and dispatches inbound
// updates to the handler registered for the user's current state.
type Manager struct {
	store Store

	mu       sync.RWMutex
	handlers map[State]Handler
}

// NewManager builds a Manager on top of the provided store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		handlers: make(map[State]Handler),
	}
}

// Register associates a state with its handler.
func (m *Manager) Register(st State, h Handler) {
	if st == StateNone || h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

func (m *Manager) handler(st State) (Handler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handlers[st]
	return h, ok
}

// Session returns the user's current conversation session.
func (m *Manager) Session(ctx context.Context, userID int64) (Session, error) {
	sess, err := m.store.Get(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("state: get session: %w", err)
	}
	return sess, nil
}

// Enter moves the user into a state with the given payload.
func (m *Manager) Enter(ctx context.Context, userID int64, st State, data map[string]string) error {
	if st == StateNone {
		return m.Clear(ctx, userID)
	}
	if err := m.store.Set(ctx, userID, Session{State: st, Data: data}); err != nil {
		return fmt.Errorf("state: enter %s: %w", st, err)
	}
	return nil
}

// Clear removes any pending conversation state for the user.
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	if err := m.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("state: clear: %w", err)
	}
	return nil
}

// InProgress reports whether the user currently has an active conversation.
// Store failures are treated as "no conversation" so a broken state record
// can never wedge regular message handling.
func (m *Manager) InProgress(ctx context.Context, userID int64) bool {
	sess, err := m.store.Get(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "fsm", "session.get_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return false
	}
	return sess.State != StateNone
}

// Dispatch routes the update to the handler for the user's current state.
// An unknown state value is cleared and ignored rather than crashing the
// conversation: the next message falls through to regular routing.
func (m *Manager) Dispatch(c tele.Context) error {
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	sess, err := m.store.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("state: dispatch: %w", err)
	}
	if sess.State == StateNone {
		return nil
	}

	logger.Debug(ctx, "fsm", "dispatch",
		slog.Int64("user_id", userID),
		slog.String("state", string(sess.State)),
	)

	h, ok := m.handler(sess.State)
	if !ok {
		logger.Warn(ctx, "fsm", "state.unknown",
			slog.Int64("user_id", userID),
			slog.String("state", string(sess.State)),
		)
		return m.Clear(ctx, userID)
	}
	return h(c, sess)
}
