package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/metrics"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// SensorSeriesService manages the sensor time series of a task.
type SensorSeriesService interface {
	// InsertBatch stores records for taskID in one transaction. A record
	// tagged with another task aborts the whole batch.
	InsertBatch(ctx context.Context, taskID int64, records []*models.SensorRecord) (int64, error)

	// List returns the task's records in ascending time order.
	List(ctx context.Context, taskID int64) ([]*models.SensorRecord, error)

	// LatestTimestamp returns the newest record time, or nil when the task has
	// no records.
	LatestTimestamp(ctx context.Context, taskID int64) (*models.Timestamp, error)

	// Clear deletes every record of the task. Clearing an empty series succeeds.
	Clear(ctx context.Context, taskID int64) (int64, error)

	// RecordsFromLog converts parsed readings into records for taskID.
	RecordsFromLog(taskID int64, log *insitu.Log) ([]*models.SensorRecord, error)

	// Import converts log and inserts it for taskID.
	Import(ctx context.Context, taskID int64, log *insitu.Log) (int64, error)

	// Stability runs the purge stabilization assessment over the series.
	Stability(ctx context.Context, taskID int64, window time.Duration) (*StabilityReport, error)
}

type sensorSeriesService struct {
	sensorRepo repositories.SensorDataRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewSensorSeriesService creates a new SensorSeriesService. m may be nil.
func NewSensorSeriesService(sensorRepo repositories.SensorDataRepository, m *metrics.Metrics, logger *zap.Logger) SensorSeriesService {
	return &sensorSeriesService{
		sensorRepo: sensorRepo,
		metrics:    m,
		logger:     logger.Named("sensor-series"),
	}
}

var _ SensorSeriesService = (*sensorSeriesService)(nil)

func (s *sensorSeriesService) InsertBatch(ctx context.Context, taskID int64, records []*models.SensorRecord) (int64, error) {
	var n int64
	err := validateRecords(records)
	if err == nil {
		n, err = s.sensorRepo.InsertBatch(ctx, taskID, records)
	}
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrConflict) {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.ObserveInsert(outcome, 0)
		s.logger.Info("Sensor batch rejected",
			zap.Int64("task_id", taskID),
			zap.Int("records", len(records)),
			zap.Error(err))
		return 0, fmt.Errorf("insert sensor data for task %d: %w", taskID, err)
	}

	s.metrics.ObserveInsert(metrics.OutcomeOK, n)
	s.logger.Debug("Sensor batch inserted",
		zap.Int64("task_id", taskID),
		zap.Int64("records", n))
	return n, nil
}

// validateRecords rejects null entries and records without a timestamp or
// a required channel before any row is written.
func validateRecords(records []*models.SensorRecord) error {
	for i, rec := range records {
		if rec == nil {
			return &apperrors.InvalidValueError{Name: fmt.Sprintf("records[%d]", i), Value: "null"}
		}
		if name, ok := rec.MissingField(); ok {
			return &apperrors.MissingChannelError{Index: i, Channel: name}
		}
	}
	return nil
}

func (s *sensorSeriesService) List(ctx context.Context, taskID int64) ([]*models.SensorRecord, error) {
	records, err := s.sensorRepo.List(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list sensor data for task %d: %w", taskID, err)
	}
	return records, nil
}

func (s *sensorSeriesService) LatestTimestamp(ctx context.Context, taskID int64) (*models.Timestamp, error) {
	ts, err := s.sensorRepo.Latest(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("latest sensor timestamp for task %d: %w", taskID, err)
	}
	return ts, nil
}

func (s *sensorSeriesService) Clear(ctx context.Context, taskID int64) (int64, error) {
	n, err := s.sensorRepo.Clear(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("clear sensor data for task %d: %w", taskID, err)
	}
	s.logger.Debug("Sensor data cleared",
		zap.Int64("task_id", taskID),
		zap.Int64("records", n))
	return n, nil
}

func (s *sensorSeriesService) RecordsFromLog(taskID int64, log *insitu.Log) ([]*models.SensorRecord, error) {
	records := make([]*models.SensorRecord, 0, len(log.Readings))
	for i, reading := range log.Readings {
		rec := &models.SensorRecord{
			TaskID:   taskID,
			DateTime: models.NewTimestamp(reading.Time),
		}
		for _, ch := range models.SensorChannels {
			v, ok := reading.Values[ch.Name]
			if !ok {
				if ch.Required {
					return nil, &apperrors.MissingChannelError{Index: i, Channel: ch.Name}
				}
				continue
			}
			ch.Set(rec, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *sensorSeriesService) Import(ctx context.Context, taskID int64, log *insitu.Log) (int64, error) {
	records, err := s.RecordsFromLog(taskID, log)
	if err != nil {
		return 0, err
	}
	return s.InsertBatch(ctx, taskID, records)
}

func (s *sensorSeriesService) Stability(ctx context.Context, taskID int64, window time.Duration) (*StabilityReport, error) {
	if window <= 0 {
		return nil, &apperrors.InvalidValueError{Name: "window", Value: window.String()}
	}

	records, err := s.List(ctx, taskID)
	if err != nil {
		return nil, err
	}

	return &StabilityReport{
		TaskID:        taskID,
		WindowSeconds: window.Seconds(),
		Windows:       AssessStability(records, window),
	}, nil
}
