// Package holidays provides Calendar implementations backed by a holiday
// date set.
package holidays

import (
	"context"
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// InMemory is a fixed holiday set, suitable for tests and single-process
// deployments where the set is loaded at startup.
type InMemory struct {
	mu   sync.RWMutex
	days map[string]struct{}
}

// NewInMemory builds a calendar from the given holiday dates. Times of day
// are ignored; membership is by civil date.
func NewInMemory(days ...time.Time) *InMemory {
	m := &InMemory{days: make(map[string]struct{}, len(days))}
	for _, d := range days {
		m.days[d.Format(dayFormat)] = struct{}{}
	}
	return m
}

// Add inserts a holiday date.
func (m *InMemory) Add(day time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[day.Format(dayFormat)] = struct{}{}
}

func (m *InMemory) IsHoliday(_ context.Context, day time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.days[day.Format(dayFormat)]
	return ok, nil
}
