package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/kursbot/internal/domain"
)

type memServiceStore struct {
	nextID int64
	alerts map[int64]domain.Alert
}

func newMemServiceStore() *memServiceStore {
	return &memServiceStore{nextID: 1, alerts: make(map[int64]domain.Alert)}
}

func (s *memServiceStore) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	a.ID = s.nextID
	s.nextID++
	a.IsActive = true
	s.alerts[a.ID] = a
	return a, nil
}

func (s *memServiceStore) Delete(ctx context.Context, alertID, userID int64) (bool, error) {
	a, ok := s.alerts[alertID]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(s.alerts, alertID)
	return true, nil
}

func (s *memServiceStore) ListByOwner(ctx context.Context, userID int64) ([]domain.Alert, error) {
	var out []domain.Alert
	for id := int64(1); id < s.nextID; id++ {
		if a, ok := s.alerts[id]; ok && a.UserID == userID && a.Eligible() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memServiceStore) CountByOwner(ctx context.Context, userID int64) (int, error) {
	list, _ := s.ListByOwner(ctx, userID)
	return len(list), nil
}

func TestServiceCreateNormalizes(t *testing.T) {
	svc := NewService(newMemServiceStore())

	a, err := svc.Create(context.Background(), 7, " usd ", "uzs", domain.ConditionAbove, 13000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CurrencyFrom != "USD" || a.CurrencyTo != "UZS" {
		t.Fatalf("pair not normalized: %s/%s", a.CurrencyFrom, a.CurrencyTo)
	}
	if !a.IsActive || a.IsTriggered {
		t.Fatalf("new alert must be active and untriggered: %+v", a)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := NewService(newMemServiceStore())
	ctx := context.Background()

	cases := []struct {
		name    string
		from    string
		to      string
		cond    domain.Condition
		target  float64
		wantErr error
	}{
		{"bad from", "US", "UZS", domain.ConditionAbove, 1, domain.ErrBadCurrency},
		{"bad to", "USD", "so'm", domain.ConditionAbove, 1, domain.ErrBadCurrency},
		{"same pair", "USD", "usd", domain.ConditionAbove, 1, domain.ErrBadCurrency},
		{"bad condition", "USD", "UZS", domain.Condition("near"), 1, domain.ErrBadCondition},
		{"zero target", "USD", "UZS", domain.ConditionBelow, 0, domain.ErrBadTarget},
		{"negative target", "USD", "UZS", domain.ConditionBelow, -3, domain.ErrBadTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tc.from, tc.to, tc.cond, tc.target)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestServiceCreateLimit(t *testing.T) {
	svc := NewService(newMemServiceStore())
	ctx := context.Background()

	for i := 0; i < MaxActiveAlerts; i++ {
		if _, err := svc.Create(ctx, 1, "USD", "UZS", domain.ConditionAbove, float64(1000+i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := svc.Create(ctx, 1, "USD", "UZS", domain.ConditionAbove, 99999); !errors.Is(err, ErrTooManyAlerts) {
		t.Fatalf("err = %v, want ErrTooManyAlerts", err)
	}
	// The limit is per user.
	if _, err := svc.Create(ctx, 2, "USD", "UZS", domain.ConditionAbove, 13000); err != nil {
		t.Fatalf("other user blocked by someone else's limit: %v", err)
	}
}

func TestServiceDeleteIsOwnerScoped(t *testing.T) {
	store := newMemServiceStore()
	svc := NewService(store)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, "USD", "UZS", domain.ConditionAbove, 13000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, 2, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, 1, a.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, 1, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("repeat delete err = %v, want ErrNotFound", err)
	}
}

func TestRenderTriggered(t *testing.T) {
	a := domain.Alert{CurrencyFrom: "USD", CurrencyTo: "UZS", Condition: domain.ConditionAbove, TargetRate: 13000}
	msg := RenderTriggered("en", a, 13100.5)
	want := "🔔 Alert: USD/UZS is now 13100.5 (target ≥ 13000)."
	if msg != want {
		t.Fatalf("msg = %q, want %q", msg, want)
	}
}

func TestFormatRate(t *testing.T) {
	cases := map[float64]string{
		13000:    "13000",
		13100.5:  "13100.5",
		12650.25: "12650.25",
		0.1:      "0.1",
	}
	for in, want := range cases {
		if got := FormatRate(in); got != want {
			t.Errorf("FormatRate(%v) = %q, want %q", in, got, want)
		}
	}
}
