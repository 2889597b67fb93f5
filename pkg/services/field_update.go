package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/jsonutil"
	"github.com/ongchi/insitu-logger/pkg/logging"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// FieldUpdateService applies partial updates from untyped name/value input.
// Each entity has a fixed table of updatable fields; anything outside it is
// rejected and nothing is written.
type FieldUpdateService interface {
	// UpdateTask applies fields to the task row in the order given.
	UpdateTask(ctx context.Context, taskID int64, fields []jsonutil.Field) error

	// UpdateTaskInfo applies fields to the task_info row in the order given.
	UpdateTaskInfo(ctx context.Context, taskInfoID int64, fields []jsonutil.Field) error
}

// fieldDecoder converts a raw JSON value to the column's Go type.
type fieldDecoder func(raw json.RawMessage) (any, error)

type updatableField struct {
	column string
	decode fieldDecoder
}

var taskFields = map[string]updatableField{
	"done":    {"done", decodeWith(jsonutil.Bool)},
	"serial":  {"serial", decodeWith(jsonutil.OptionalString)},
	"well_id": {"well_id", decodeWith(jsonutil.Int64)},
	"depth":   {"depth", decodeWith(jsonutil.String)},
}

var taskInfoFields = map[string]updatableField{
	"calibration":      {"calibration", decodeWith(jsonutil.OptionalString)},
	"purging_time":     {"purging_time", decodeTimestamp},
	"water_level":      {"water_level", decodeWith(jsonutil.OptionalFloat)},
	"pump_id":          {"pump_id", decodeWith(jsonutil.OptionalInt64)},
	"pump_depth":       {"pump_depth", decodeWith(jsonutil.OptionalFloat)},
	"pump_freq":        {"pump_freq", decodeWith(jsonutil.OptionalFloat)},
	"pump_rate":        {"pump_rate", decodeWith(jsonutil.OptionalFloat)},
	"hose_setup":       {"hose_setup", decodeWith(jsonutil.OptionalString)},
	"sampling_time":    {"sampling_time", decodeTimestamp},
	"sample_wt_radium": {"sample_wt_radium", decodeWith(jsonutil.OptionalFloat)},
	"comment":          {"comment", decodeWith(jsonutil.OptionalString)},
}

func decodeWith[T any](fn func(json.RawMessage) (T, error)) fieldDecoder {
	return func(raw json.RawMessage) (any, error) {
		return fn(raw)
	}
}

// decodeTimestamp accepts null or a string in models.TimestampLayout.
func decodeTimestamp(raw json.RawMessage) (any, error) {
	s, err := jsonutil.OptionalString(raw)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return (*time.Time)(nil), nil
	}
	ts, err := models.ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &ts.Time, nil
}

type fieldUpdateService struct {
	updateRepo repositories.UpdateRepository
	logger     *zap.Logger
}

// NewFieldUpdateService creates a new FieldUpdateService.
func NewFieldUpdateService(updateRepo repositories.UpdateRepository, logger *zap.Logger) FieldUpdateService {
	return &fieldUpdateService{
		updateRepo: updateRepo,
		logger:     logger.Named("field-update"),
	}
}

var _ FieldUpdateService = (*fieldUpdateService)(nil)

func (s *fieldUpdateService) UpdateTask(ctx context.Context, taskID int64, fields []jsonutil.Field) error {
	return s.apply(ctx, models.EntityTask, taskID, taskFields, fields)
}

func (s *fieldUpdateService) UpdateTaskInfo(ctx context.Context, taskInfoID int64, fields []jsonutil.Field) error {
	return s.apply(ctx, models.EntityTaskInfo, taskInfoID, taskInfoFields, fields)
}

func (s *fieldUpdateService) apply(
	ctx context.Context,
	entity models.EntityKind,
	id int64,
	whitelist map[string]updatableField,
	fields []jsonutil.Field,
) error {
	updates, err := buildUpdates(entity, whitelist, fields)
	if err != nil {
		s.logger.Debug("Rejected update",
			zap.String("entity", string(entity)),
			zap.Int64("id", id),
			zap.Error(err))
		return err
	}

	if err := s.updateRepo.ApplyUpdates(ctx, entity, id, updates); err != nil {
		return fmt.Errorf("update %s %d: %w", entity, id, err)
	}

	s.logger.Debug("Applied update",
		zap.String("entity", string(entity)),
		zap.Int64("id", id),
		zap.Int("fields", len(updates)))
	return nil
}

// buildUpdates validates every field before anything is written. The first
// bad field aborts the batch.
func buildUpdates(entity models.EntityKind, whitelist map[string]updatableField, fields []jsonutil.Field) ([]models.ColumnUpdate, error) {
	updates := make([]models.ColumnUpdate, 0, len(fields))
	for _, f := range fields {
		target, ok := whitelist[f.Name]
		if !ok {
			return nil, &apperrors.UnknownFieldError{Entity: string(entity), Name: f.Name}
		}
		value, err := target.decode(f.Value)
		if err != nil {
			return nil, &apperrors.InvalidValueError{
				Name:  f.Name,
				Value: logging.TruncateString(string(f.Value), logging.MaxValueLogLength),
				Err:   err,
			}
		}
		updates = append(updates, models.ColumnUpdate{Column: target.column, Value: value})
	}
	return updates, nil
}
