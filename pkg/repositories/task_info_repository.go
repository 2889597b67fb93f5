package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// TaskInfoRepository provides data access for task-info revisions and the
// people linked to them.
type TaskInfoRepository interface {
	ListByTask(ctx context.Context, taskID int64) ([]*models.TaskInfo, error)
	Create(ctx context.Context, taskID int64, info *models.NewTaskInfo) (int64, error)
	Delete(ctx context.Context, id int64) error
	// LastSamplingTime returns the sampling time of the newest task-info row
	// that has one, or nil.
	LastSamplingTime(ctx context.Context) (*models.Timestamp, error)

	ListRelation(ctx context.Context, kind models.RelationKind, taskInfoID int64) ([]*models.PersonRelation, error)
	AddRelation(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error
	RemoveRelation(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error
}

type taskInfoRepository struct {
	conn database.Conn
}

// NewTaskInfoRepository creates a new TaskInfoRepository.
func NewTaskInfoRepository(conn database.Conn) TaskInfoRepository {
	return &taskInfoRepository{conn: conn}
}

var _ TaskInfoRepository = (*taskInfoRepository)(nil)

func (r *taskInfoRepository) ListByTask(ctx context.Context, taskID int64) ([]*models.TaskInfo, error) {
	query := `
		SELECT id, task_id, calibration, purging_time, water_level, pump_id,
		       pump_depth, pump_freq, pump_rate, hose_setup, sampling_time,
		       sample_wt_radium, comment
		FROM task_info
		WHERE task_id = $1
		ORDER BY id DESC`

	rows, err := r.conn.Query(ctx, query, taskID)
	if err != nil {
		return nil, classify("list task info", err)
	}
	defer rows.Close()

	infos := make([]*models.TaskInfo, 0)
	for rows.Next() {
		info, err := scanTaskInfo(rows)
		if err != nil {
			return nil, classify("scan task info", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list task info", err)
	}

	return infos, nil
}

func scanTaskInfo(row pgx.Row) (*models.TaskInfo, error) {
	var (
		info         models.TaskInfo
		purgingTime  *time.Time
		samplingTime *time.Time
	)
	err := row.Scan(&info.ID, &info.TaskID, &info.Calibration, &purgingTime, &info.WaterLevel,
		&info.PumpID, &info.PumpDepth, &info.PumpFreq, &info.PumpRate, &info.HoseSetup,
		&samplingTime, &info.SampleWtRadium, &info.Comment)
	if err != nil {
		return nil, err
	}
	info.PurgingTime = models.TimestampPtr(purgingTime)
	info.SamplingTime = models.TimestampPtr(samplingTime)
	return &info, nil
}

func (r *taskInfoRepository) Create(ctx context.Context, taskID int64, info *models.NewTaskInfo) (int64, error) {
	query := `
		INSERT INTO task_info (
			task_id, calibration, purging_time, water_level, pump_id, pump_depth,
			pump_freq, pump_rate, hose_setup, sampling_time, sample_wt_radium, comment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var id int64
	err := r.conn.QueryRow(ctx, query,
		taskID,
		info.Calibration,
		models.TimePtr(info.PurgingTime),
		info.WaterLevel,
		info.PumpID,
		info.PumpDepth,
		info.PumpFreq,
		info.PumpRate,
		info.HoseSetup,
		models.TimePtr(info.SamplingTime),
		info.SampleWtRadium,
		info.Comment,
	).Scan(&id)
	if err != nil {
		return 0, classify("create task info", err)
	}

	return id, nil
}

func (r *taskInfoRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM task_info WHERE id = $1`, id)
	if err != nil {
		return classify("delete task info", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *taskInfoRepository) LastSamplingTime(ctx context.Context) (*models.Timestamp, error) {
	query := `
		SELECT sampling_time
		FROM task_info
		WHERE sampling_time IS NOT NULL
		ORDER BY id DESC
		LIMIT 1`

	var t time.Time
	if err := r.conn.QueryRow(ctx, query).Scan(&t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("last sampling time", err)
	}

	ts := models.NewTimestamp(t)
	return &ts, nil
}

// ============================================================================
// People relations
// ============================================================================

func relationTable(kind models.RelationKind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown relation %q", kind)
	}
	return pgx.Identifier{kind.Table()}.Sanitize(), nil
}

func (r *taskInfoRepository) ListRelation(ctx context.Context, kind models.RelationKind, taskInfoID int64) ([]*models.PersonRelation, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT task_info_id, people_id
		FROM %s
		WHERE task_info_id = $1
		ORDER BY people_id DESC`, table)

	rows, err := r.conn.Query(ctx, query, taskInfoID)
	if err != nil {
		return nil, classify("list "+string(kind), err)
	}
	defer rows.Close()

	relations := make([]*models.PersonRelation, 0)
	for rows.Next() {
		var rel models.PersonRelation
		if err := rows.Scan(&rel.TaskInfoID, &rel.PeopleID); err != nil {
			return nil, classify("scan "+string(kind), err)
		}
		relations = append(relations, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list "+string(kind), err)
	}

	return relations, nil
}

func (r *taskInfoRepository) AddRelation(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (task_info_id, people_id) VALUES ($1, $2)`, table)
	if _, err := r.conn.Exec(ctx, query, taskInfoID, peopleID); err != nil {
		return classify("add "+string(kind), err)
	}

	return nil
}

// RemoveRelation is idempotent: removing a link that does not exist succeeds.
func (r *taskInfoRepository) RemoveRelation(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE task_info_id = $1 AND people_id = $2`, table)
	if _, err := r.conn.Exec(ctx, query, taskInfoID, peopleID); err != nil {
		return classify("remove "+string(kind), err)
	}

	return nil
}
