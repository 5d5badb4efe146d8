// Package cases implements the analyst case workflow: escalating flagged
// transactions into review cases, advancing their status, and persisting
// the case list across sessions.
package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/savegress/fraudsight/internal/kv"
	"github.com/savegress/fraudsight/pkg/models"
)

var (
	// ErrDuplicateCase is returned when a case already exists for the transaction.
	ErrDuplicateCase = errors.New("case already exists for transaction")

	// ErrCaseNotFound is returned when no case exists for the given ID.
	ErrCaseNotFound = errors.New("case not found")

	// ErrInvalidStatus is returned for a status outside the workflow set.
	ErrInvalidStatus = errors.New("invalid case status")
)

// Manager owns the case list. All mutations persist the full list before
// returning, so a restart never loses analyst work.
type Manager struct {
	mu    sync.RWMutex
	cases map[string]*models.Case
	store kv.Store
	now   func() time.Time
}

// NewManager creates a manager backed by the given store, loading any
// previously persisted cases.
func NewManager(ctx context.Context, store kv.Store) (*Manager, error) {
	m := &Manager{
		cases: make(map[string]*models.Case),
		store: store,
		now:   time.Now,
	}

	data, ok, err := store.Get(ctx, kv.KeyCases)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	if ok {
		var loaded []models.Case
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to decode cases: %w", err)
		}
		for i := range loaded {
			c := loaded[i]
			m.cases[c.ID] = &c
		}
	}
	return m, nil
}

// Open escalates a transaction into a new open case. The case ID equals
// the transaction ID; opening a second case for the same transaction
// returns ErrDuplicateCase and leaves the existing case untouched.
func (m *Manager) Open(ctx context.Context, txn models.Transaction) (models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cases[txn.ID]; exists {
		return models.Case{}, ErrDuplicateCase
	}

	now := m.now()
	c := &models.Case{
		ID:         txn.ID,
		UserID:     txn.UserID,
		Amount:     txn.Amount,
		Country:    txn.Country,
		FraudScore: txn.FraudScore,
		Status:     models.CaseStatusOpen,
		CreatedAt:  now,
		History: []models.CaseEvent{{
			ID:        uuid.New().String(),
			Timestamp: now,
			Label:     "Case opened",
		}},
	}
	m.cases[c.ID] = c

	if err := m.persist(ctx); err != nil {
		delete(m.cases, c.ID)
		return models.Case{}, err
	}
	return *c, nil
}

// UpdateStatus advances a case to the given status and appends a history
// event. Unknown IDs return ErrCaseNotFound without side effects.
func (m *Manager) UpdateStatus(ctx context.Context, id string, status models.CaseStatus) (models.Case, error) {
	if !status.Valid() {
		return models.Case{}, ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.cases[id]
	if !exists {
		return models.Case{}, ErrCaseNotFound
	}

	prev := c.Status
	prevHistory := c.History
	c.Status = status
	c.History = append(append([]models.CaseEvent(nil), prevHistory...), models.CaseEvent{
		ID:        uuid.New().String(),
		Timestamp: m.now(),
		Label:     fmt.Sprintf("Status changed to %s", status),
	})

	if err := m.persist(ctx); err != nil {
		c.Status = prev
		c.History = prevHistory
		return models.Case{}, err
	}
	return *c, nil
}

// Get returns the case with the given ID.
func (m *Manager) Get(id string) (models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.cases[id]
	if !exists {
		return models.Case{}, ErrCaseNotFound
	}
	return *c, nil
}

// List returns all cases ordered by creation time, oldest first, with
// the ID as tiebreaker.
func (m *Manager) List() []models.Case {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked()
}

func (m *Manager) listLocked() []models.Case {
	out := make([]models.Case, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Count returns the number of tracked cases.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cases)
}

// CountByStatus returns the number of cases per workflow status.
func (m *Manager) CountByStatus() map[models.CaseStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[models.CaseStatus]int)
	for _, c := range m.cases {
		counts[c.Status]++
	}
	return counts
}

// ClearAll removes every case and persists the empty list.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.cases
	m.cases = make(map[string]*models.Case)
	if err := m.persist(ctx); err != nil {
		m.cases = prev
		return err
	}
	return nil
}

func (m *Manager) persist(ctx context.Context) error {
	data, err := json.Marshal(m.listLocked())
	if err != nil {
		return fmt.Errorf("failed to encode cases: %w", err)
	}
	if err := m.store.Set(ctx, kv.KeyCases, data); err != nil {
		return fmt.Errorf("failed to persist cases: %w", err)
	}
	return nil
}
