package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// SampleSetService reads and reconciles the per-task sample quantities.
type SampleSetService interface {
	// Get returns the task's sample set ordered by sample type id.
	Get(ctx context.Context, taskID int64) ([]models.SampleSetEntry, error)

	// Reconcile applies deltas atomically: qty 0 removes the entry, a
	// positive qty inserts or overwrites it, a negative qty rejects the batch.
	Reconcile(ctx context.Context, taskID int64, deltas []models.SampleSetEntry) error
}

type sampleSetService struct {
	sampleSetRepo repositories.SampleSetRepository
	logger        *zap.Logger
}

// NewSampleSetService creates a new SampleSetService.
func NewSampleSetService(sampleSetRepo repositories.SampleSetRepository, logger *zap.Logger) SampleSetService {
	return &sampleSetService{
		sampleSetRepo: sampleSetRepo,
		logger:        logger.Named("sample-set"),
	}
}

var _ SampleSetService = (*sampleSetService)(nil)

func (s *sampleSetService) Get(ctx context.Context, taskID int64) ([]models.SampleSetEntry, error) {
	entries, err := s.sampleSetRepo.GetByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get sample set for task %d: %w", taskID, err)
	}
	return entries, nil
}

func (s *sampleSetService) Reconcile(ctx context.Context, taskID int64, deltas []models.SampleSetEntry) error {
	for _, d := range deltas {
		if d.Qty < 0 {
			return &apperrors.NegativeQuantityError{SampleTypeID: d.SampleTypeID, Qty: d.Qty}
		}
	}
	if len(deltas) == 0 {
		return nil
	}

	if err := s.sampleSetRepo.Reconcile(ctx, taskID, deltas); err != nil {
		return fmt.Errorf("reconcile sample set for task %d: %w", taskID, err)
	}

	s.logger.Debug("Sample set reconciled",
		zap.Int64("task_id", taskID),
		zap.Int("deltas", len(deltas)))
	return nil
}
