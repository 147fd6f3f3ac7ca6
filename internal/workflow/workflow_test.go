package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) step(name string, fail error, compFail error) Step {
	return Step{
		Name: name,
		Invoke: func(ctx context.Context, exec *Execution) (Token, error) {
			r.calls = append(r.calls, "invoke:"+name)
			if fail != nil {
				return nil, fail
			}
			exec.Put(name, "ok")
			return Token{"id": name + "-1"}, nil
		},
		Compensate: func(ctx context.Context, tok Token) error {
			r.calls = append(r.calls, "compensate:"+name+":"+tok["id"])
			return compFail
		},
	}
}

type countingObserver struct {
	finished    []Status
	stepFailed  []string
	compensated map[string]bool
}

func (o *countingObserver) WorkflowFinished(_ string, status Status, _ time.Duration) {
	o.finished = append(o.finished, status)
}
func (o *countingObserver) StepFailed(_ string, step string) { o.stepFailed = append(o.stepFailed, step) }
func (o *countingObserver) Compensated(_ string, step string, ok bool) {
	if o.compensated == nil {
		o.compensated = map[string]bool{}
	}
	o.compensated[step] = ok
}

func newEngine(t *testing.T, wf *Workflow) (*Engine, *MemoryStore, *countingObserver) {
	t.Helper()
	store := NewMemoryStore()
	obs := &countingObserver{}
	e := NewEngine(store, nil, obs)
	e.Register(wf)
	return e, store, obs
}

func TestRunCompletesAllSteps(t *testing.T) {
	rec := &recorder{}
	wf := &Workflow{Name: "wf", Steps: []Step{rec.step("a", nil, nil), rec.step("b", nil, nil)}}
	e, store, obs := newEngine(t, wf)

	exec, err := e.Run(context.Background(), "wf", "", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, exec.Status)
	assert.Equal(t, []string{"invoke:a", "invoke:b"}, rec.calls)
	assert.Equal(t, "ok", exec.Value("b"))
	assert.Equal(t, Token{"id": "a-1"}, exec.Token("a"))

	stored, err := store.Get(context.Background(), exec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, stored.Status)
	assert.JSONEq(t, `{"k":"v"}`, string(stored.Input))
	assert.Equal(t, []Status{StatusDone}, obs.finished)
}

func TestRunCompensatesInReverseUpToFailure(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	wf := &Workflow{Name: "wf", Steps: []Step{
		rec.step("a", nil, nil),
		rec.step("b", nil, nil),
		rec.step("c", boom, nil),
		rec.step("d", nil, nil),
	}}
	e, _, obs := newEngine(t, wf)

	exec, err := e.Run(context.Background(), "wf", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "c", stepErr.Step)

	assert.Equal(t, []string{
		"invoke:a", "invoke:b", "invoke:c",
		"compensate:b:b-1", "compensate:a:a-1",
	}, rec.calls)
	assert.Equal(t, StatusCompensated, exec.Status)
	assert.Equal(t, StepCompensated, exec.Steps[0].Status)
	assert.Equal(t, StepCompensated, exec.Steps[1].Status)
	assert.Equal(t, StepFailed, exec.Steps[2].Status)
	assert.Equal(t, StepPending, exec.Steps[3].Status)
	assert.Equal(t, []string{"c"}, obs.stepFailed)
}

func TestFirstStepFailureHasNothingToCompensate(t *testing.T) {
	rec := &recorder{}
	wf := &Workflow{Name: "wf", Steps: []Step{rec.step("a", errors.New("nope"), nil), rec.step("b", nil, nil)}}
	e, _, _ := newEngine(t, wf)

	exec, err := e.Run(context.Background(), "wf", "", nil)
	require.Error(t, err)
	assert.Equal(t, []string{"invoke:a"}, rec.calls)
	assert.Equal(t, StatusCompensated, exec.Status)
}

func TestCompensationErrorsAreBestEffort(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	wf := &Workflow{Name: "wf", Steps: []Step{
		rec.step("a", nil, nil),
		rec.step("b", nil, errors.New("cannot undo b")),
		rec.step("c", boom, nil),
	}}
	e, _, obs := newEngine(t, wf)

	exec, err := e.Run(context.Background(), "wf", "", nil)
	assert.ErrorIs(t, err, boom, "the step error is reported, not the compensation error")
	assert.Contains(t, rec.calls, "compensate:a:a-1", "later compensation failures do not stop earlier ones")
	assert.Equal(t, StatusCompensationFailed, exec.Status)
	assert.Equal(t, StepCompensationFailed, exec.Steps[1].Status)
	assert.Equal(t, "cannot undo b", exec.Steps[1].Error)
	assert.False(t, obs.compensated["b"])
	assert.True(t, obs.compensated["a"])
}

func TestCompensationSurvivesCancelledContext(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	wf := &Workflow{Name: "wf", Steps: []Step{
		{
			Name:   "a",
			Invoke: func(ctx context.Context, exec *Execution) (Token, error) { return Token{"id": "a-1"}, nil },
			Compensate: func(ctx context.Context, tok Token) error {
				rec.calls = append(rec.calls, "compensate:a")
				return ctx.Err()
			},
		},
		{
			Name: "b",
			Invoke: func(ctx context.Context, exec *Execution) (Token, error) {
				cancel()
				return nil, ctx.Err()
			},
		},
	}}
	e, _, _ := newEngine(t, wf)

	exec, err := e.Run(ctx, "wf", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"compensate:a"}, rec.calls)
	assert.Equal(t, StatusCompensated, exec.Status)
}

func TestRunWithSameIDIsIdempotent(t *testing.T) {
	rec := &recorder{}
	wf := &Workflow{Name: "wf", Steps: []Step{rec.step("a", nil, nil)}}
	e, _, _ := newEngine(t, wf)

	_, err := e.Run(context.Background(), "wf", "key-1", nil)
	require.NoError(t, err)

	prev, err := e.Run(context.Background(), "wf", "key-1", nil)
	assert.ErrorIs(t, err, ErrDuplicateExecution)
	require.NotNil(t, prev)
	assert.Equal(t, "key-1", prev.ID)
	assert.Len(t, rec.calls, 1, "second run must not invoke steps again")
}

func TestRunUnknownWorkflow(t *testing.T) {
	e := NewEngine(NewMemoryStore(), nil, nil)
	_, err := e.Run(context.Background(), "missing", "", nil)
	assert.ErrorIs(t, err, ErrUnknownWorkflow)
}

type secretInput struct {
	User     string
	Password string
}

func (s secretInput) Redacted() any { return map[string]string{"user": s.User} }

func TestRedactedInputIsPersisted(t *testing.T) {
	rec := &recorder{}
	wf := &Workflow{Name: "wf", Steps: []Step{rec.step("a", nil, nil)}}
	e, store, _ := newEngine(t, wf)

	exec, err := e.Run(context.Background(), "wf", "", secretInput{User: "u", Password: "hunter2"})
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), exec.ID)
	require.NoError(t, err)
	assert.NotContains(t, string(stored.Input), "hunter2")
	assert.Equal(t, secretInput{User: "u", Password: "hunter2"}, exec.InputValue())
}

func TestRunRestartsRolledBackExecution(t *testing.T) {
	fail := errors.New("upstream 502")
	var calls int
	wf := &Workflow{Name: "wf", Steps: []Step{{
		Name: "a",
		Invoke: func(context.Context, *Execution) (Token, error) {
			calls++
			if calls == 1 {
				return nil, fail
			}
			return Token{"id": "a-1"}, nil
		},
	}}}
	e, store, _ := newEngine(t, wf)

	_, err := e.Run(context.Background(), "wf", "retry-1", nil)
	require.ErrorIs(t, err, fail)
	first, err := store.Get(context.Background(), "retry-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompensated, first.Status)

	exec, err := e.Run(context.Background(), "wf", "retry-1", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, exec.Status)
	assert.Equal(t, 2, calls)

	stored, err := store.Get(context.Background(), "retry-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, stored.Status)
	assert.Empty(t, stored.Error)
}

func TestRunRejectsRunningExecution(t *testing.T) {
	wf := &Workflow{Name: "wf", Steps: []Step{(&recorder{}).step("a", nil, nil)}}
	e, store, _ := newEngine(t, wf)
	require.NoError(t, store.Create(context.Background(), &Execution{ID: "busy", Workflow: "wf", Status: StatusRunning}))

	_, err := e.Run(context.Background(), "wf", "busy", nil)
	assert.ErrorIs(t, err, ErrExecutionInProgress)
}

func TestMemoryStoreRestartOnlyRolledBack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &Execution{ID: "x", Status: StatusDone}))

	assert.ErrorIs(t, store.Restart(ctx, &Execution{ID: "x", Status: StatusRunning}), ErrExecutionExists)
	assert.ErrorIs(t, store.Restart(ctx, &Execution{ID: "y", Status: StatusRunning}), ErrExecutionNotFound)
}
