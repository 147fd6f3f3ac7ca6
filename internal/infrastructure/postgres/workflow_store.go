package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fittinglab/storefront/internal/workflow"
)

// WorkflowStore persists workflow executions with their step records as JSONB.
type WorkflowStore struct {
	pool *pgxpool.Pool
}

func NewWorkflowStore(pool *pgxpool.Pool) *WorkflowStore {
	return &WorkflowStore{pool: pool}
}

func (s *WorkflowStore) Create(ctx context.Context, exec *workflow.Execution) error {
	steps, err := json.Marshal(exec.Steps)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO workflow_executions (id, workflow, status, input, steps, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, exec.ID, exec.Workflow, string(exec.Status), []byte(exec.Input), steps, exec.Error, exec.CreatedAt, exec.UpdatedAt)
	if isUniqueViolation(err) {
		return workflow.ErrExecutionExists
	}
	return err
}

func (s *WorkflowStore) Save(ctx context.Context, exec *workflow.Execution) error {
	steps, err := json.Marshal(exec.Steps)
	if err != nil {
		return err
	}
	res, err := s.pool.Exec(ctx, `
		UPDATE workflow_executions
		SET status = $1, steps = $2, error = $3, updated_at = $4
		WHERE id = $5
	`, string(exec.Status), steps, exec.Error, exec.UpdatedAt, exec.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return workflow.ErrExecutionNotFound
	}
	return nil
}

// Restart replaces a rolled back execution in place. Of several concurrent
// retries of one id only the first passes the status guard.
func (s *WorkflowStore) Restart(ctx context.Context, exec *workflow.Execution) error {
	steps, err := json.Marshal(exec.Steps)
	if err != nil {
		return err
	}
	res, err := s.pool.Exec(ctx, `
		UPDATE workflow_executions
		SET workflow = $1, status = $2, input = $3, steps = $4, error = $5, created_at = $6, updated_at = $7
		WHERE id = $8 AND status IN ($9, $10)
	`, exec.Workflow, string(exec.Status), []byte(exec.Input), steps, exec.Error, exec.CreatedAt, exec.UpdatedAt, exec.ID,
		string(workflow.StatusCompensated), string(workflow.StatusCompensationFailed))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return workflow.ErrExecutionExists
	}
	return nil
}

func (s *WorkflowStore) Get(ctx context.Context, id string) (*workflow.Execution, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, workflow, status, input, steps, error, created_at, updated_at
		FROM workflow_executions
		WHERE id = $1
	`, id)
	exec, err := scanExecution(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, workflow.ErrExecutionNotFound
	}
	return exec, err
}

func (s *WorkflowStore) ListStale(ctx context.Context, before time.Time, limit int) ([]*workflow.Execution, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, workflow, status, input, steps, error, created_at, updated_at
		FROM workflow_executions
		WHERE status IN ($1, $2) AND updated_at < $3
		ORDER BY updated_at
		LIMIT $4
	`, string(workflow.StatusRunning), string(workflow.StatusCompensating), before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*workflow.Execution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exec)
	}
	return out, rows.Err()
}

func scanExecution(row pgx.Row) (*workflow.Execution, error) {
	var (
		exec   workflow.Execution
		status string
		input  []byte
		steps  []byte
	)
	if err := row.Scan(&exec.ID, &exec.Workflow, &status, &input, &steps, &exec.Error, &exec.CreatedAt, &exec.UpdatedAt); err != nil {
		return nil, err
	}
	exec.Status = workflow.Status(status)
	exec.Input = input
	if err := json.Unmarshal(steps, &exec.Steps); err != nil {
		return nil, err
	}
	return &exec, nil
}

var _ workflow.Store = (*WorkflowStore)(nil)
