// Package workflow runs named sequences of steps with per-step compensation.
//
// A failing step triggers the compensations of every completed step in reverse
// order. Compensations are best-effort: their errors are logged and recorded on
// the execution but never replace the error of the step that failed.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownWorkflow = errors.New("workflow: unknown workflow")
	// ErrDuplicateExecution is returned with the stored execution when the id already ran to completion.
	ErrDuplicateExecution  = errors.New("workflow: execution already completed")
	ErrExecutionInProgress = errors.New("workflow: execution already in progress")
)

// Step is one unit of a workflow. Compensate may be nil when there is nothing to undo.
type Step struct {
	Name       string
	Invoke     func(ctx context.Context, exec *Execution) (Token, error)
	Compensate func(ctx context.Context, tok Token) error
}

type Workflow struct {
	Name  string
	Steps []Step
}

// StepError reports which step failed. It unwraps to the step's own error.
type StepError struct {
	Workflow string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow %s: step %s: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Observer receives run outcomes; the metrics package implements it.
type Observer interface {
	WorkflowFinished(workflow string, status Status, took time.Duration)
	StepFailed(workflow, step string)
	Compensated(workflow, step string, ok bool)
}

type Engine struct {
	store     Store
	logger    *logrus.Logger
	observer  Observer
	mu        sync.RWMutex
	workflows map[string]*Workflow
	now       func() time.Time
}

func NewEngine(store Store, logger *logrus.Logger, observer Observer) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		store:     store,
		logger:    logger,
		observer:  observer,
		workflows: map[string]*Workflow{},
		now:       time.Now,
	}
}

// Register makes a workflow runnable by name. Registering the same name twice replaces it.
func (e *Engine) Register(wf *Workflow) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[wf.Name] = wf
}

func (e *Engine) lookup(name string) (*Workflow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	wf, ok := e.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkflow, name)
	}
	return wf, nil
}

// Run executes the named workflow. An empty id gets a generated one; a caller-supplied
// id doubles as an idempotency key. A completed id returns ErrDuplicateExecution, a
// running one ErrExecutionInProgress, and a compensated one runs again from the start.
func (e *Engine) Run(ctx context.Context, name, id string, input any) (*Execution, error) {
	wf, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	restart := false
	if id == "" {
		id = uuid.NewString()
	} else if prev, gErr := e.store.Get(ctx, id); gErr == nil {
		switch {
		case prev.Status == StatusDone:
			return prev, ErrDuplicateExecution
		case !prev.Status.Terminal():
			return prev, ErrExecutionInProgress
		}
		// A rolled back run may be retried under the same id.
		restart = true
	} else if !errors.Is(gErr, ErrExecutionNotFound) {
		return nil, gErr
	}

	persisted := input
	if r, ok := input.(Redactor); ok {
		persisted = r.Redacted()
	}
	raw, err := json.Marshal(persisted)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: encode input: %w", name, err)
	}

	now := e.now()
	exec := &Execution{
		ID:        id,
		Workflow:  wf.Name,
		Status:    StatusRunning,
		Input:     raw,
		CreatedAt: now,
		UpdatedAt: now,
		input:     input,
	}
	for _, s := range wf.Steps {
		exec.Steps = append(exec.Steps, StepRecord{Name: s.Name, Status: StepPending})
	}
	persist := e.store.Create
	if restart {
		persist = e.store.Restart
	}
	if err := persist(ctx, exec); err != nil {
		if errors.Is(err, ErrExecutionExists) {
			return nil, ErrExecutionInProgress
		}
		return nil, fmt.Errorf("workflow %s: persist execution: %w", name, err)
	}

	log := e.logger.WithFields(logrus.Fields{"workflow": wf.Name, "execution_id": id})
	started := now

	for i, step := range wf.Steps {
		tok, sErr := step.Invoke(ctx, exec)
		if sErr != nil {
			exec.Steps[i].Status = StepFailed
			exec.Steps[i].Error = sErr.Error()
			exec.Status = StatusCompensating
			exec.Error = sErr.Error()
			e.save(ctx, exec, log)
			log.WithError(sErr).WithField("step", step.Name).Warn("workflow step failed, compensating")
			if e.observer != nil {
				e.observer.StepFailed(wf.Name, step.Name)
			}

			e.compensate(ctx, wf, exec, i, log)
			if e.observer != nil {
				e.observer.WorkflowFinished(wf.Name, exec.Status, e.now().Sub(started))
			}
			return exec, &StepError{Workflow: wf.Name, Step: step.Name, Err: sErr}
		}
		exec.Steps[i].Status = StepDone
		exec.Steps[i].Token = tok
		e.save(ctx, exec, log)
	}

	exec.Status = StatusDone
	e.save(ctx, exec, log)
	if e.observer != nil {
		e.observer.WorkflowFinished(wf.Name, exec.Status, e.now().Sub(started))
	}
	log.Debug("workflow completed")
	return exec, nil
}

// compensate undoes steps [0, upTo) in reverse. Steps at or after upTo never completed.
// The execution is detached from ctx cancellation so a cancelled request still cleans up.
func (e *Engine) compensate(ctx context.Context, wf *Workflow, exec *Execution, upTo int, log *logrus.Entry) {
	cctx := context.WithoutCancel(ctx)
	failed := false
	for j := upTo - 1; j >= 0; j-- {
		rec := &exec.Steps[j]
		if rec.Status != StepDone {
			continue
		}
		step := findStep(wf, rec.Name)
		if step == nil || step.Compensate == nil {
			rec.Status = StepCompensated
			continue
		}
		if err := step.Compensate(cctx, rec.Token); err != nil {
			failed = true
			rec.Status = StepCompensationFailed
			rec.Error = err.Error()
			log.WithError(err).WithField("step", rec.Name).Error("compensation failed")
			if e.observer != nil {
				e.observer.Compensated(wf.Name, rec.Name, false)
			}
			continue
		}
		rec.Status = StepCompensated
		if e.observer != nil {
			e.observer.Compensated(wf.Name, rec.Name, true)
		}
	}
	if failed {
		exec.Status = StatusCompensationFailed
	} else {
		exec.Status = StatusCompensated
	}
	e.save(cctx, exec, log)
}

func (e *Engine) save(ctx context.Context, exec *Execution, log *logrus.Entry) {
	exec.UpdatedAt = e.now()
	if err := e.store.Save(ctx, exec); err != nil {
		log.WithError(err).Warn("persist workflow execution failed")
	}
}

func findStep(wf *Workflow, name string) *Step {
	for i := range wf.Steps {
		if wf.Steps[i].Name == name {
			return &wf.Steps[i]
		}
	}
	return nil
}
