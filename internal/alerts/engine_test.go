package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/kursbot/internal/domain"
)

type memStore struct {
	mu      sync.Mutex
	alerts  map[int64]*domain.EligibleAlert
	listErr error
	markErr map[int64]error
}

func newMemStore(alerts ...domain.EligibleAlert) *memStore {
	s := &memStore{
		alerts:  make(map[int64]*domain.EligibleAlert),
		markErr: make(map[int64]error),
	}
	for i := range alerts {
		a := alerts[i]
		s.alerts[a.ID] = &a
	}
	return s
}

func (s *memStore) ListEligible(ctx context.Context) ([]domain.EligibleAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.EligibleAlert
	for _, a := range s.alerts {
		if a.Eligible() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memStore) MarkTriggered(ctx context.Context, alertID int64, at time.Time, rate float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.markErr[alertID]; err != nil {
		return false, err
	}
	a, ok := s.alerts[alertID]
	if !ok || !a.Eligible() {
		return false, nil
	}
	a.IsTriggered = true
	a.TriggeredAt = &at
	a.TriggeredRate = &rate
	return true, nil
}

func (s *memStore) get(id int64) domain.EligibleAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.alerts[id]
}

type memProvider struct {
	mu    sync.Mutex
	rates map[string]float64
	errs  map[string]error
	calls int
}

func (p *memProvider) Rate(ctx context.Context, from, to string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	key := from + "/" + to
	if err := p.errs[key]; err != nil {
		return 0, err
	}
	r, ok := p.rates[key]
	if !ok {
		return 0, errors.New("no rate")
	}
	return r, nil
}

type memNotifier struct {
	mu    sync.Mutex
	err   error
	sent  []int64
	rates []float64
}

func (n *memNotifier) NotifyTriggered(ctx context.Context, a domain.EligibleAlert, rate float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, a.ID)
	n.rates = append(n.rates, rate)
	return nil
}

func (n *memNotifier) sentIDs() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.sent...)
}

func eligible(id int64, cond domain.Condition, target float64) domain.EligibleAlert {
	return domain.EligibleAlert{
		Alert: domain.Alert{
			ID:           id,
			UserID:       id,
			CurrencyFrom: "USD",
			CurrencyTo:   "UZS",
			Condition:    cond,
			TargetRate:   target,
			IsActive:     true,
		},
		OwnerTelegramID: 1000 + id,
		OwnerChatID:     1000 + id,
		OwnerLanguage:   "en",
	}
}

func TestEngineTriggersOnceAcrossCycles(t *testing.T) {
	store := newMemStore(eligible(1, domain.ConditionAbove, 13000))
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	n, err := eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle 1: %v", err)
	}
	if n != 1 {
		t.Fatalf("cycle 1 triggered %d, want 1", n)
	}

	// The rate stays over the threshold; the alert must not fire again.
	n, err = eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle 2: %v", err)
	}
	if n != 0 {
		t.Fatalf("cycle 2 triggered %d, want 0", n)
	}
	if got := notifier.sentIDs(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("notified %v, want [1]", got)
	}

	a := store.get(1)
	if !a.IsTriggered || a.TriggeredAt == nil || a.TriggeredRate == nil {
		t.Fatalf("alert not finalized: %+v", a.Alert)
	}
	if *a.TriggeredRate != 13100 {
		t.Fatalf("triggered rate = %v, want 13100", *a.TriggeredRate)
	}
}

func TestEngineBelowDirection(t *testing.T) {
	store := newMemStore(eligible(1, domain.ConditionBelow, 12500))
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 12600}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	if n, _ := eng.RunEvaluationCycle(context.Background()); n != 0 {
		t.Fatalf("triggered %d above the threshold, want 0", n)
	}

	provider.mu.Lock()
	provider.rates["USD/UZS"] = 12500 // inclusive boundary
	provider.mu.Unlock()

	if n, _ := eng.RunEvaluationCycle(context.Background()); n != 1 {
		t.Fatal("exact target hit must trigger")
	}
}

func TestEngineConcurrentCyclesNotifyOnce(t *testing.T) {
	var alerts []domain.EligibleAlert
	for id := int64(1); id <= 20; id++ {
		alerts = append(alerts, eligible(id, domain.ConditionAbove, 13000))
	}
	store := newMemStore(alerts...)
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	var wg sync.WaitGroup
	total := make([]int, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := eng.RunEvaluationCycle(context.Background())
			if err != nil {
				t.Errorf("cycle %d: %v", i, err)
			}
			total[i] = n
		}(i)
	}
	wg.Wait()

	sum := 0
	for _, n := range total {
		sum += n
	}
	if sum != 20 {
		t.Fatalf("total triggered %d, want 20", sum)
	}
	seen := make(map[int64]int)
	for _, id := range notifier.sentIDs() {
		seen[id]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("alert %d notified %d times", id, n)
		}
	}
	if len(seen) != 20 {
		t.Fatalf("notified %d distinct alerts, want 20", len(seen))
	}
}

func TestEngineSkipsFailedAlertAndContinues(t *testing.T) {
	store := newMemStore(
		eligible(1, domain.ConditionAbove, 13000),
		eligible(2, domain.ConditionAbove, 13000),
	)
	store.alerts[1].CurrencyFrom = "EUR" // no rate published for EUR
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	n, err := eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	if store.get(1).IsTriggered {
		t.Fatal("alert with failed rate lookup must stay eligible")
	}
	if !store.get(2).IsTriggered {
		t.Fatal("healthy alert must trigger despite the neighbour failing")
	}
}

func TestEngineStoreFailureSuppressesNotification(t *testing.T) {
	store := newMemStore(eligible(1, domain.ConditionAbove, 13000))
	store.markErr[1] = errors.New("db down")
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	n, err := eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("triggered %d, want 0", n)
	}
	if len(notifier.sentIDs()) != 0 {
		t.Fatal("must not notify when the triggered state was not persisted")
	}
	if store.get(1).IsTriggered {
		t.Fatal("alert must stay eligible for the next cycle")
	}
}

func TestEngineBlockedOwnerTriggersWithoutNotification(t *testing.T) {
	a := eligible(1, domain.ConditionAbove, 13000)
	a.OwnerBlocked = true
	store := newMemStore(a)
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{}
	eng := NewEngine(store, provider, notifier)

	n, err := eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	if !store.get(1).IsTriggered {
		t.Fatal("blocked owner's alert must still finalize")
	}
	if len(notifier.sentIDs()) != 0 {
		t.Fatal("blocked owner must not be notified")
	}
}

func TestEngineNotifyFailureDoesNotRevertTrigger(t *testing.T) {
	store := newMemStore(eligible(1, domain.ConditionAbove, 13000))
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	notifier := &memNotifier{err: errors.New("telegram down")}
	eng := NewEngine(store, provider, notifier)

	n, err := eng.RunEvaluationCycle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("triggered %d, want 1", n)
	}
	if !store.get(1).IsTriggered {
		t.Fatal("delivery failure must not undo the triggered state")
	}
}

func TestEngineListFailureAbortsCycle(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("db down")
	eng := NewEngine(store, &memProvider{}, &memNotifier{})

	if _, err := eng.RunEvaluationCycle(context.Background()); err == nil {
		t.Fatal("expected error when listing fails")
	}
}

func TestEngineStopsOnCanceledContext(t *testing.T) {
	var alerts []domain.EligibleAlert
	for id := int64(1); id <= 5; id++ {
		alerts = append(alerts, eligible(id, domain.ConditionAbove, 13000))
	}
	store := newMemStore(alerts...)
	provider := &memProvider{rates: map[string]float64{"USD/UZS": 13100}}
	eng := NewEngine(store, provider, &memNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.RunEvaluationCycle(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times after cancellation", provider.calls)
	}
}
