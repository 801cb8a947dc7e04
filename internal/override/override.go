// Package override persists per-user priority overrides: the last accepted
// AI score, level, and narrative for a task. Writes are last-write-wins and
// entries never expire.
package override

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Override replaces the locally computed priority fields of one task.
// A nil PriorityScore leaves the local score in place.
type Override struct {
	PriorityScore  *int      `json:"priorityScore,omitempty"`
	PriorityLevel  string    `json:"priorityLevel,omitempty"`
	PriorityReason []string  `json:"priorityReason,omitempty"`
	NextActions    []string  `json:"nextActions,omitempty"`
	Assumptions    []string  `json:"assumptions,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Repository stores overrides keyed by (user, task).
type Repository interface {
	Get(ctx context.Context, userID, taskID string) (Override, bool, error)
	Set(ctx context.Context, userID, taskID string, ov Override) error
	// SetAll writes a batch of overrides for one user. Either every entry
	// is stored or none is.
	SetAll(ctx context.Context, userID string, batch map[string]Override) error
	All(ctx context.Context, userID string) (map[string]Override, error)
}

// IntPtr returns a pointer to an int value.
func IntPtr(v int) *int {
	return &v
}

func validateBatch(userID string, batch map[string]Override) error {
	for taskID := range batch {
		if err := validateKey(userID, taskID); err != nil {
			return err
		}
	}
	return nil
}

func validateKey(userID, taskID string) error {
	if userID == "" {
		return fmt.Errorf("override: empty user id")
	}
	if taskID == "" {
		return fmt.Errorf("override: empty task id")
	}
	return nil
}

// MemoryRepository keeps overrides in process memory.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]map[string]Override
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]map[string]Override)}
}

func (m *MemoryRepository) Get(_ context.Context, userID, taskID string) (Override, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ov, ok := m.data[userID][taskID]
	return clone(ov), ok, nil
}

func (m *MemoryRepository) Set(_ context.Context, userID, taskID string, ov Override) error {
	if err := validateKey(userID, taskID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[userID] == nil {
		m.data[userID] = make(map[string]Override)
	}
	m.data[userID][taskID] = clone(ov)
	return nil
}

func (m *MemoryRepository) SetAll(_ context.Context, userID string, batch map[string]Override) error {
	if err := validateBatch(userID, batch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[userID] == nil {
		m.data[userID] = make(map[string]Override)
	}
	for taskID, ov := range batch {
		m.data[userID][taskID] = clone(ov)
	}
	return nil
}

func (m *MemoryRepository) All(_ context.Context, userID string) (map[string]Override, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Override, len(m.data[userID]))
	for id, ov := range m.data[userID] {
		out[id] = clone(ov)
	}
	return out, nil
}

func clone(ov Override) Override {
	if ov.PriorityScore != nil {
		ov.PriorityScore = IntPtr(*ov.PriorityScore)
	}
	ov.PriorityReason = slices.Clone(ov.PriorityReason)
	ov.NextActions = slices.Clone(ov.NextActions)
	ov.Assumptions = slices.Clone(ov.Assumptions)
	return ov
}
