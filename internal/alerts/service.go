package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/kursbot/internal/domain"
)

// MaxActiveAlerts limits how many eligible alerts one user may hold.
const MaxActiveAlerts = 10

// ErrTooManyAlerts signals the per-user alert limit was reached.
var ErrTooManyAlerts = errors.New("alerts: active alert limit reached")

// ServiceStore is the persistence contract of the user-facing service.
type ServiceStore interface {
	Create(ctx context.Context, a domain.Alert) (domain.Alert, error)
	Delete(ctx context.Context, alertID, userID int64) (bool, error)
	ListByOwner(ctx context.Context, userID int64) ([]domain.Alert, error)
	CountByOwner(ctx context.Context, userID int64) (int, error)
}

// Service validates and executes user alert operations.
type Service struct {
	store ServiceStore
}

// NewService wires a service.
func NewService(store ServiceStore) *Service {
	return &Service{store: store}
}

// Create validates the request and persists a new alert for userID.
func (s *Service) Create(ctx context.Context, userID int64, from, to string, cond domain.Condition, target float64) (domain.Alert, error) {
	fromCode, err := domain.NormalizeCurrency(from)
	if err != nil {
		return domain.Alert{}, err
	}
	toCode, err := domain.NormalizeCurrency(to)
	if err != nil {
		return domain.Alert{}, err
	}
	if fromCode == toCode {
		return domain.Alert{}, domain.ErrBadCurrency
	}
	if !cond.Valid() {
		return domain.Alert{}, domain.ErrBadCondition
	}
	if target <= 0 {
		return domain.Alert{}, domain.ErrBadTarget
	}

	n, err := s.store.CountByOwner(ctx, userID)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("alerts: count: %w", err)
	}
	if n >= MaxActiveAlerts {
		return domain.Alert{}, ErrTooManyAlerts
	}

	return s.store.Create(ctx, domain.Alert{
		UserID:       userID,
		CurrencyFrom: fromCode,
		CurrencyTo:   toCode,
		Condition:    cond,
		TargetRate:   target,
	})
}

// Delete removes an alert owned by userID. Deleting someone else's alert
// or an already-removed one returns domain.ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, alertID int64) error {
	ok, err := s.store.Delete(ctx, alertID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the user's eligible alerts, oldest first.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Alert, error) {
	return s.store.ListByOwner(ctx, userID)
}
