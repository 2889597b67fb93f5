package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// SensorDataRepository provides data access for sensor time series.
type SensorDataRepository interface {
	// InsertBatch persists records for taskID in one transaction. Every
	// record is checked against taskID as it is streamed; the first
	// mismatch aborts and rolls back the whole batch.
	InsertBatch(ctx context.Context, taskID int64, records []*models.SensorRecord) (int64, error)
	// List returns all records for the task in ascending time order.
	List(ctx context.Context, taskID int64) ([]*models.SensorRecord, error)
	// Latest returns the newest timestamp for the task, or nil.
	Latest(ctx context.Context, taskID int64) (*models.Timestamp, error)
	// Clear deletes every record for the task. Zero rows is success.
	Clear(ctx context.Context, taskID int64) (int64, error)
}

type sensorDataRepository struct {
	conn database.Conn
}

// NewSensorDataRepository creates a new SensorDataRepository.
func NewSensorDataRepository(conn database.Conn) SensorDataRepository {
	return &sensorDataRepository{conn: conn}
}

var _ SensorDataRepository = (*sensorDataRepository)(nil)

// sensorRowSource streams records into COPY and checks each one belongs to
// the batch's task before it is handed to the driver.
type sensorRowSource struct {
	taskID  int64
	records []*models.SensorRecord
	idx     int
	err     error
}

var _ pgx.CopyFromSource = (*sensorRowSource)(nil)

func newSensorRowSource(taskID int64, records []*models.SensorRecord) *sensorRowSource {
	return &sensorRowSource{taskID: taskID, records: records, idx: -1}
}

func (s *sensorRowSource) Next() bool {
	if s.err != nil {
		return false
	}
	s.idx++
	return s.idx < len(s.records)
}

func (s *sensorRowSource) Values() ([]any, error) {
	rec := s.records[s.idx]
	if rec == nil {
		s.err = &apperrors.InvalidValueError{Name: fmt.Sprintf("records[%d]", s.idx), Value: "null"}
		return nil, s.err
	}
	if rec.TaskID != s.taskID {
		s.err = &apperrors.TaskMismatchError{Index: s.idx, Expected: s.taskID, Got: rec.TaskID}
		return nil, s.err
	}
	return rec.Values(), nil
}

func (s *sensorRowSource) Err() error {
	return s.err
}

func (r *sensorDataRepository) InsertBatch(ctx context.Context, taskID int64, records []*models.SensorRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return 0, classify("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	src := newSensorRowSource(taskID, records)
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"sensor_data"}, models.SensorColumns(), src)
	if src.Err() != nil {
		return 0, src.Err()
	}
	if err != nil {
		return 0, classify("insert sensor data", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit transaction", err)
	}

	return n, nil
}

func sensorSelect() string {
	return `SELECT ` + strings.Join(models.SensorColumns(), ", ") + ` FROM sensor_data`
}

func (r *sensorDataRepository) List(ctx context.Context, taskID int64) ([]*models.SensorRecord, error) {
	query := sensorSelect() + ` WHERE task_id = $1 ORDER BY datetime ASC`

	rows, err := r.conn.Query(ctx, query, taskID)
	if err != nil {
		return nil, classify("list sensor data", err)
	}
	defer rows.Close()

	records := make([]*models.SensorRecord, 0)
	for rows.Next() {
		var rec models.SensorRecord
		if err := rows.Scan(rec.ScanTargets()...); err != nil {
			return nil, classify("scan sensor data", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list sensor data", err)
	}

	return records, nil
}

func (r *sensorDataRepository) Latest(ctx context.Context, taskID int64) (*models.Timestamp, error) {
	query := `SELECT datetime FROM sensor_data WHERE task_id = $1 ORDER BY datetime DESC LIMIT 1`

	var t time.Time
	if err := r.conn.QueryRow(ctx, query, taskID).Scan(&t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("latest sensor timestamp", err)
	}

	ts := models.NewTimestamp(t)
	return &ts, nil
}

func (r *sensorDataRepository) Clear(ctx context.Context, taskID int64) (int64, error) {
	result, err := r.conn.Exec(ctx, `DELETE FROM sensor_data WHERE task_id = $1`, taskID)
	if err != nil {
		return 0, classify(fmt.Sprintf("clear sensor data for task %d", taskID), err)
	}

	return result.RowsAffected(), nil
}
