// Package state implements the conversational finite-state machine used for
// multi-turn Telegram flows. State is kept per user in a pluggable Store so
// bots can choose between in-memory sessions and durable persistence; the
// Manager only knows how to enter, clear and dispatch states.
package state

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

// StateNone indicates there is no active conversation with the user.
const StateNone State = ""

// Session is the per-user conversation record: the pending step and the
// payload accumulated across turns. Data is only meaningful when State is
// not StateNone.
type Session struct {
	State State
	Data  map[string]string
}

// Value returns a payload entry or the empty string.
func (s Session) Value(key string) string {
	if s.Data == nil {
		return ""
	}
	return s.Data[key]
}

// Store persists per-user conversation state. Implementations must scope
// records strictly by user id; concurrent writes for the same user may be
// resolved last-write-wins.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, error)
	Set(ctx context.Context, userID int64, sess Session) error
	Clear(ctx context.Context, userID int64) error
}

// Handler processes an inbound update for a user whose conversation is in
// the handler's state. The session passed in is a snapshot; handlers advance
// or clear the state explicitly through the Manager.
type Handler func(c tele.Context, sess Session) error
