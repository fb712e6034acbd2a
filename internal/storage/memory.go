package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"product_feedback/internal/model"
)

// Memory implements Storage on an in-process slice.
type Memory struct {
	mu    sync.RWMutex
	items []model.Feedback
	ids   map[string]struct{}
	now   func() time.Time
	newID func() string

	obs observers
}

// NewMemory creates a repository holding a copy of seed in the given order.
func NewMemory(seed []model.Feedback) *Memory {
	m := &Memory{
		items: slices.Clone(seed),
		ids:   make(map[string]struct{}, len(seed)),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, it := range seed {
		m.ids[it.ID] = struct{}{}
	}
	return m
}

// Close is a no-op; the collection lives as long as the process.
func (m *Memory) Close() error {
	return nil
}

// AddFeedback appends a new record with a fresh ID and creation time.
func (m *Memory) AddFeedback(_ context.Context, d model.Draft) (model.Feedback, error) {
	m.mu.Lock()
	id := m.newID()
	for {
		if _, dup := m.ids[id]; !dup {
			break
		}
		id = m.newID()
	}

	createdAt := m.now().UTC()
	if n := len(m.items); n > 0 && createdAt.Before(m.items[n-1].CreatedAt) {
		createdAt = m.items[n-1].CreatedAt
	}

	item := model.NewFeedback(id, d, createdAt)
	m.items = append(m.items, item)
	m.ids[id] = struct{}{}
	m.mu.Unlock()

	m.obs.notify(item)
	return item, nil
}

// ListFeedback returns a snapshot of every record in insertion order.
func (m *Memory) ListFeedback(_ context.Context) ([]model.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items), nil
}

// ListFeedbackByBrand returns records whose brand equals brand ignoring case.
func (m *Memory) ListFeedbackByBrand(_ context.Context, brand string) ([]model.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Feedback
	for _, it := range m.items {
		if strings.EqualFold(it.Brand, brand) {
			out = append(out, it)
		}
	}
	return out, nil
}

// Subscribe registers fn to run after each append.
func (m *Memory) Subscribe(fn func(model.Feedback)) func() {
	return m.obs.subscribe(fn)
}

