package state

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements the slice of tele.Context the manager touches.
type fakeCtx struct {
	tele.Context
	sender *tele.User
	chat   *tele.Chat
	text   string
	vals   map[string]any
}

func newFakeCtx(userID int64, text string) *fakeCtx {
	return &fakeCtx{
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: userID},
		text:   text,
		vals:   make(map[string]any),
	}
}

func (f *fakeCtx) Sender() *tele.User  { return f.sender }
func (f *fakeCtx) Chat() *tele.Chat    { return f.chat }
func (f *fakeCtx) Text() string        { return f.text }
func (f *fakeCtx) Update() tele.Update { return tele.Update{ID: 1} }
func (f *fakeCtx) Get(key string) any  { return f.vals[key] }
func (f *fakeCtx) Set(key string, v any) {
	f.vals[key] = v
}

type failingStore struct {
	err error
}

func (s failingStore) Get(ctx context.Context, userID int64) (Session, error) {
	return Session{}, s.err
}
func (s failingStore) Set(ctx context.Context, userID int64, sess Session) error { return s.err }
func (s failingStore) Clear(ctx context.Context, userID int64) error             { return s.err }

func TestManagerSessionRoundTrip(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	if err := m.Enter(ctx, 1, State("step_one"), map[string]string{"from": "USD"}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	sess, err := m.Session(ctx, 1)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.State != State("step_one") || sess.Value("from") != "USD" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if err := m.Clear(ctx, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	sess, err = m.Session(ctx, 1)
	if err != nil {
		t.Fatalf("session after clear: %v", err)
	}
	if sess.State != StateNone {
		t.Fatalf("state = %q, want none", sess.State)
	}
}

func TestManagerPerUserIsolation(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	if err := m.Enter(ctx, 1, State("step_one"), nil); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if m.InProgress(ctx, 2) {
		t.Fatal("user 2 must not observe user 1's conversation")
	}
	if !m.InProgress(ctx, 1) {
		t.Fatal("user 1's conversation lost")
	}
}

func TestManagerDispatchRoutesByState(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	var got Session
	m.Register(State("step_one"), func(c tele.Context, sess Session) error {
		got = sess
		return nil
	})

	if err := m.Enter(ctx, 7, State("step_one"), map[string]string{"k": "v"}); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if err := m.Dispatch(newFakeCtx(7, "hello")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got.State != State("step_one") || got.Value("k") != "v" {
		t.Fatalf("handler saw %+v", got)
	}
}

func TestManagerDispatchNoConversationIsNoop(t *testing.T) {
	m := NewManager(NewMemoryStore())
	m.Register(State("step_one"), func(c tele.Context, sess Session) error {
		t.Fatal("handler must not run without a conversation")
		return nil
	})
	if err := m.Dispatch(newFakeCtx(7, "hello")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func TestManagerUnknownStateIsCleared(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store)
	ctx := context.Background()

	// A state written by a newer build that this binary no longer knows.
	if err := store.Set(ctx, 7, Session{State: State("retired_step")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := m.Dispatch(newFakeCtx(7, "hello")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if m.InProgress(ctx, 7) {
		t.Fatal("unknown state must be cleared, not retried forever")
	}
}

func TestManagerInProgressSwallowsStoreErrors(t *testing.T) {
	m := NewManager(failingStore{err: errors.New("db down")})
	if m.InProgress(context.Background(), 1) {
		t.Fatal("store failure must read as no conversation")
	}
}

func TestMemoryStoreClonesSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, 1, Session{State: State("s"), Data: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	sess, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sess.Data["k"] = "mutated"

	again, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Value("k") != "v" {
		t.Fatal("stored session must not alias the returned map")
	}
}
