package workflow

import (
	"encoding/json"
	"sync"
	"time"
)

type Status string

const (
	StatusRunning            Status = "running"
	StatusCompensating       Status = "compensating"
	StatusDone               Status = "done"
	StatusCompensated        Status = "compensated"
	StatusCompensationFailed Status = "compensation_failed"
)

// Terminal reports whether no further work will happen on an execution in this status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCompensated || s == StatusCompensationFailed
}

// RolledBack reports whether the execution failed and its compensations have run.
func (s Status) RolledBack() bool {
	return s == StatusCompensated || s == StatusCompensationFailed
}

type StepStatus string

const (
	StepPending            StepStatus = "pending"
	StepDone               StepStatus = "done"
	StepFailed             StepStatus = "failed"
	StepCompensated        StepStatus = "compensated"
	StepCompensationFailed StepStatus = "compensation_failed"
)

// Token is what a step hands to its own compensation. It is persisted, so keep it to ids.
type Token map[string]string

// StepRecord is the persisted state of one step within an execution.
type StepRecord struct {
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
	Token  Token      `json:"token,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// Execution is one run of a workflow.
type Execution struct {
	ID        string
	Workflow  string
	Status    Status
	Input     json.RawMessage
	Steps     []StepRecord
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time

	mu      sync.Mutex
	input   any
	results map[string]any
}

// InputValue returns the in-memory input the run was started with.
// Executions loaded from a store only carry the persisted (redacted) form in Input.
func (e *Execution) InputValue() any {
	return e.input
}

// Put stores a value for later steps or for the caller. Values are not persisted.
func (e *Execution) Put(key string, v any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.results == nil {
		e.results = map[string]any{}
	}
	e.results[key] = v
}

// Value returns a value stored by an earlier step.
func (e *Execution) Value(key string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.results[key]
}

// Token returns the compensation token recorded by the named step, or nil.
func (e *Execution) Token(step string) Token {
	for _, s := range e.Steps {
		if s.Name == step {
			return s.Token
		}
	}
	return nil
}

func (e *Execution) clone() *Execution {
	c := &Execution{
		ID:        e.ID,
		Workflow:  e.Workflow,
		Status:    e.Status,
		Input:     append(json.RawMessage(nil), e.Input...),
		Error:     e.Error,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	c.Steps = make([]StepRecord, len(e.Steps))
	for i, s := range e.Steps {
		c.Steps[i] = s
		if s.Token != nil {
			c.Steps[i].Token = make(Token, len(s.Token))
			for k, v := range s.Token {
				c.Steps[i].Token[k] = v
			}
		}
	}
	return c
}

// Redactor lets an input choose what gets persisted (e.g. drop passwords).
type Redactor interface {
	Redacted() any
}
