// Package store provides in-memory store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a generic.ProfileStore backed by a map.
type Memory struct {
	mu       sync.RWMutex
	profiles map[generic.EmployeeID]generic.EmployeeRecord
}

var _ generic.ProfileStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{profiles: make(map[generic.EmployeeID]generic.EmployeeRecord)}
}

// SaveProfile inserts or replaces an employee record.
func (m *Memory) SaveProfile(_ context.Context, rec generic.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *Memory) GetProfile(_ context.Context, id generic.EmployeeID) (generic.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.profiles[id]
	if !ok {
		return generic.EmployeeRecord{}, generic.ErrEmployeeNotFound
	}
	return cloneRecord(rec), nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]generic.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.EmployeeRecord, 0, len(m.profiles))
	for _, rec := range m.profiles {
		result = append(result, cloneRecord(rec))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func cloneRecord(rec generic.EmployeeRecord) generic.EmployeeRecord {
	if rec.Allowances == nil {
		return rec
	}
	allowances := make(map[string]decimal.Decimal, len(rec.Allowances))
	for k, v := range rec.Allowances {
		allowances[k] = v
	}
	rec.Allowances = allowances
	return rec
}
