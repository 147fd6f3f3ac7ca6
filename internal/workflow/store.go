package workflow

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrExecutionNotFound = errors.New("workflow: execution not found")
	ErrExecutionExists   = errors.New("workflow: execution id already used")
)

// Store persists executions so an interrupted run can be compensated later.
type Store interface {
	Create(ctx context.Context, exec *Execution) error
	Save(ctx context.Context, exec *Execution) error
	Get(ctx context.Context, id string) (*Execution, error)
	// Restart overwrites a compensated execution with a fresh run. It returns
	// ErrExecutionExists when the stored execution is no longer in a rolled back state.
	Restart(ctx context.Context, exec *Execution) error
	// ListStale returns non-terminal executions last updated before the cutoff, oldest first.
	ListStale(ctx context.Context, before time.Time, limit int) ([]*Execution, error)
}

// MemoryStore keeps executions in process. Used in tests and when no database is configured.
type MemoryStore struct {
	mu    sync.Mutex
	execs map[string]*Execution
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{execs: map[string]*Execution{}}
}

func (m *MemoryStore) Create(_ context.Context, exec *Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.execs[exec.ID]; ok {
		return ErrExecutionExists
	}
	m.execs[exec.ID] = exec.clone()
	return nil
}

func (m *MemoryStore) Save(_ context.Context, exec *Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.execs[exec.ID]; !ok {
		return ErrExecutionNotFound
	}
	m.execs[exec.ID] = exec.clone()
	return nil
}

func (m *MemoryStore) Restart(_ context.Context, exec *Execution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.execs[exec.ID]
	if !ok {
		return ErrExecutionNotFound
	}
	if !prev.Status.RolledBack() {
		return ErrExecutionExists
	}
	m.execs[exec.ID] = exec.clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exec, ok := m.execs[id]
	if !ok {
		return nil, ErrExecutionNotFound
	}
	return exec.clone(), nil
}

func (m *MemoryStore) ListStale(_ context.Context, before time.Time, limit int) ([]*Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Execution
	for _, exec := range m.execs {
		if !exec.Status.Terminal() && exec.UpdatedAt.Before(before) {
			out = append(out, exec.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
