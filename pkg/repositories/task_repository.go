package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// TaskRepository provides data access for sampling tasks.
type TaskRepository interface {
	List(ctx context.Context) ([]*models.TaskSummary, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.NewTask) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type taskRepository struct {
	conn database.Conn
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(conn database.Conn) TaskRepository {
	return &taskRepository{conn: conn}
}

var _ TaskRepository = (*taskRepository)(nil)

func (r *taskRepository) List(ctx context.Context) ([]*models.TaskSummary, error) {
	query := `
		SELECT id, done, serial, well_id, depth, sample_set, sampling_time, comment
		FROM task_summary
		ORDER BY id`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()

	tasks := make([]*models.TaskSummary, 0)
	for rows.Next() {
		var (
			t            models.TaskSummary
			sampleSet    []byte
			samplingTime *time.Time
		)
		if err := rows.Scan(&t.ID, &t.Done, &t.Serial, &t.WellID, &t.Depth,
			&sampleSet, &samplingTime, &t.Comment); err != nil {
			return nil, classify("scan task summary", err)
		}
		if err := json.Unmarshal(sampleSet, &t.SampleSet); err != nil {
			return nil, fmt.Errorf("failed to decode sample set for task %d: %w", t.ID, err)
		}
		t.SamplingTime = models.TimestampPtr(samplingTime)
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks", err)
	}

	return tasks, nil
}

func (r *taskRepository) Get(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT id, well_id, depth, done, serial, comment FROM task WHERE id = $1`

	var t models.Task
	err := r.conn.QueryRow(ctx, query, id).Scan(&t.ID, &t.WellID, &t.Depth, &t.Done, &t.Serial, &t.Comment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, classify("get task", err)
	}

	return &t, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.NewTask) (int64, error) {
	query := `INSERT INTO task (well_id, depth) VALUES ($1, $2) RETURNING id`

	var id int64
	if err := r.conn.QueryRow(ctx, query, task.WellID, task.Depth).Scan(&id); err != nil {
		return 0, classify("create task", err)
	}

	return id, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return classify("delete task", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
