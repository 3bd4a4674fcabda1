package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"feed_digest/internal/domain"
)

type TaskRunStore struct {
	db *sqlx.DB
}

func NewTaskRunStore(db *sqlx.DB) *TaskRunStore {
	return &TaskRunStore{db: db}
}

func (s *TaskRunStore) Get(ctx context.Context, userID, taskID string) (*domain.TaskRun, error) {
	var run domain.TaskRun
	query := `
		SELECT id, user_id, task_id, last_run_at, last_status, last_error,
			last_digest_id, last_push_status, total_runs
		FROM digest_task_runs
		WHERE user_id = $1 AND task_id = $2`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &run, query, userID, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		// Tasks that never ran start from zero.
		return &domain.TaskRun{UserID: userID, TaskID: taskID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns the recorded runs of the given tasks. Tasks that never ran
// are absent from the result.
func (s *TaskRunStore) List(ctx context.Context, userID string, taskIDs []string) ([]domain.TaskRun, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, user_id, task_id, last_run_at, last_status, last_error,
			last_digest_id, last_push_status, total_runs
		FROM digest_task_runs
		WHERE user_id = $1 AND task_id = ANY($2)
		ORDER BY task_id`

	var runs []domain.TaskRun
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &runs, query, userID, pq.Array(taskIDs))
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *TaskRunStore) Update(ctx context.Context, run *domain.TaskRun) error {
	query := `
		INSERT INTO digest_task_runs (
			user_id, task_id, last_run_at, last_status, last_error,
			last_digest_id, last_push_status, total_runs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, task_id) DO UPDATE SET
			last_run_at = EXCLUDED.last_run_at,
			last_status = EXCLUDED.last_status,
			last_error = EXCLUDED.last_error,
			last_digest_id = EXCLUDED.last_digest_id,
			last_push_status = EXCLUDED.last_push_status,
			total_runs = EXCLUDED.total_runs`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		run.UserID,
		run.TaskID,
		run.LastRunAt,
		run.LastStatus,
		run.LastError,
		run.LastDigestID,
		run.LastPushStatus,
		run.TotalRuns,
	)
	return err
}
