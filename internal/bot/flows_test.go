package bot

import (
	"context"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/kursbot/core/telegram/state"
	"github.com/m3rciful/kursbot/internal/alerts"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/i18n"
)

// fakeTeleCtx implements the slice of tele.Context the flow handlers use.
type fakeTeleCtx struct {
	tele.Context
	sender *tele.User
	chat   *tele.Chat
	text   string
	vals   map[string]any
	sent   []string
}

func newFlowCtx(userID int64, text string) *fakeTeleCtx {
	return &fakeTeleCtx{
		sender: &tele.User{ID: userID, LanguageCode: "en"},
		chat:   &tele.Chat{ID: userID},
		text:   text,
		vals:   make(map[string]any),
	}
}

func (f *fakeTeleCtx) Sender() *tele.User    { return f.sender }
func (f *fakeTeleCtx) Chat() *tele.Chat      { return f.chat }
func (f *fakeTeleCtx) Text() string          { return f.text }
func (f *fakeTeleCtx) Update() tele.Update   { return tele.Update{ID: 1} }
func (f *fakeTeleCtx) Get(key string) any    { return f.vals[key] }
func (f *fakeTeleCtx) Set(key string, v any) { f.vals[key] = v }
func (f *fakeTeleCtx) Send(what interface{}, opts ...interface{}) error {
	if text, ok := what.(string); ok {
		f.sent = append(f.sent, text)
	}
	return nil
}

type stubUserStore struct{}

func (stubUserStore) Upsert(ctx context.Context, telegramID, chatID int64, language string) (domain.User, error) {
	return domain.User{ID: telegramID, TelegramID: telegramID, ChatID: chatID, Language: language}, nil
}

func (stubUserStore) GetByTelegramID(ctx context.Context, telegramID int64) (domain.User, error) {
	return domain.User{ID: telegramID, TelegramID: telegramID, ChatID: telegramID, Language: "en"}, nil
}

func (stubUserStore) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	return nil
}

func (stubUserStore) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	return nil
}

type recordingAlertStore struct {
	created []domain.Alert
}

func (s *recordingAlertStore) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	a.ID = int64(len(s.created) + 1)
	a.IsActive = true
	s.created = append(s.created, a)
	return a, nil
}

func (s *recordingAlertStore) Delete(ctx context.Context, alertID, userID int64) (bool, error) {
	return false, nil
}

func (s *recordingAlertStore) ListByOwner(ctx context.Context, userID int64) ([]domain.Alert, error) {
	return nil, nil
}

func (s *recordingAlertStore) CountByOwner(ctx context.Context, userID int64) (int, error) {
	return len(s.created), nil
}

type stubRates struct{ rate float64 }

func (s stubRates) Rate(ctx context.Context, from, to string) (float64, error) {
	return s.rate, nil
}

func newFlowFixture(rate float64) (*Bot, *recordingAlertStore, *state.Manager) {
	store := &recordingAlertStore{}
	fsm := state.NewManager(state.NewMemoryStore())
	b := New(stubUserStore{}, alerts.NewService(store), stubRates{rate: rate}, fsm)
	return b, store, fsm
}

func TestAlertFlowInvalidAmountPreservesState(t *testing.T) {
	b, store, fsm := newFlowFixture(16000)
	ctx := context.Background()

	sess := state.Session{
		State: StateAlertAwaitingAmount,
		Data:  map[string]string{dataFrom: "GBP", dataTo: "UZS", dataCondition: string(domain.ConditionBelow)},
	}
	if err := fsm.Enter(ctx, 7, sess.State, sess.Data); err != nil {
		t.Fatalf("enter: %v", err)
	}

	c := newFlowCtx(7, "not a number")
	if err := b.flowAlertAwaitingAmount(c, sess); err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("no alert may be created from invalid input")
	}
	if !fsm.InProgress(ctx, 7) {
		t.Fatal("invalid input must preserve the conversation")
	}
	if len(c.sent) != 1 || c.sent[0] != i18n.T("en", "amount.invalid") {
		t.Fatalf("unexpected reply %v", c.sent)
	}
}

func TestAlertFlowValidAmountCreatesAndClears(t *testing.T) {
	b, store, fsm := newFlowFixture(16000)
	ctx := context.Background()

	sess := state.Session{
		State: StateAlertAwaitingAmount,
		Data:  map[string]string{dataFrom: "GBP", dataTo: "UZS", dataCondition: string(domain.ConditionBelow)},
	}
	if err := fsm.Enter(ctx, 7, sess.State, sess.Data); err != nil {
		t.Fatalf("enter: %v", err)
	}

	c := newFlowCtx(7, "15 000")
	if err := b.flowAlertAwaitingAmount(c, sess); err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d alerts, want 1", len(store.created))
	}
	a := store.created[0]
	if a.CurrencyFrom != "GBP" || a.CurrencyTo != "UZS" {
		t.Fatalf("pair %s/%s", a.CurrencyFrom, a.CurrencyTo)
	}
	if a.Condition != domain.ConditionBelow || a.TargetRate != 15000 {
		t.Fatalf("condition %s target %v", a.Condition, a.TargetRate)
	}
	if fsm.InProgress(ctx, 7) {
		t.Fatal("completed flow must clear the conversation")
	}
}

func TestConvertFlowRoundTrip(t *testing.T) {
	b, _, fsm := newFlowFixture(12500)
	ctx := context.Background()

	sess := state.Session{
		State: StateConvertAwaitingAmount,
		Data:  map[string]string{dataFrom: "USD", dataTo: "UZS"},
	}
	if err := fsm.Enter(ctx, 9, sess.State, sess.Data); err != nil {
		t.Fatalf("enter: %v", err)
	}

	c := newFlowCtx(9, "100")
	if err := b.flowConvertAwaitingAmount(c, sess); err != nil {
		t.Fatalf("flow: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "1250000") {
		t.Fatalf("unexpected conversion reply %v", c.sent)
	}
	if fsm.InProgress(ctx, 9) {
		t.Fatal("completed conversion must clear the conversation")
	}
}

func TestFreeTextCreatesAlert(t *testing.T) {
	b, store, _ := newFlowFixture(12500)

	c := newFlowCtx(3, "EUR < 14000")
	if err := b.handleFreeText(c); err != nil {
		t.Fatalf("free text: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d alerts, want 1", len(store.created))
	}
	a := store.created[0]
	if a.CurrencyFrom != "EUR" || a.CurrencyTo != "UZS" ||
		a.Condition != domain.ConditionBelow || a.TargetRate != 14000 {
		t.Fatalf("unexpected alert %+v", a)
	}
}

func TestFreeTextNoMatchGivesHint(t *testing.T) {
	b, store, _ := newFlowFixture(12500)

	c := newFlowCtx(3, "how are you")
	if err := b.handleFreeText(c); err != nil {
		t.Fatalf("free text: %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("plain chatter must not create alerts")
	}
	if len(c.sent) != 1 || c.sent[0] != i18n.T("en", "alert.parse_hint") {
		t.Fatalf("unexpected reply %v", c.sent)
	}
}
