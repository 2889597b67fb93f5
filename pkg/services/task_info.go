package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// TaskInfoService manages task-info revisions and their people links.
type TaskInfoService interface {
	// List returns the task's task-info rows, newest first.
	List(ctx context.Context, taskID int64) ([]*models.TaskInfo, error)

	// Create inserts a task-info row for taskID and returns its id.
	Create(ctx context.Context, taskID int64, info *models.NewTaskInfo) (int64, error)

	// Delete removes a task-info row and its people links.
	Delete(ctx context.Context, id int64) error

	// LastSamplingTime returns the sampling time of the newest task-info row
	// that has one, or nil.
	LastSamplingTime(ctx context.Context) (*models.Timestamp, error)

	// ListPeople returns the links of one relation, highest people id first.
	ListPeople(ctx context.Context, kind models.RelationKind, taskInfoID int64) ([]*models.PersonRelation, error)

	// AddPerson links a person. Linking the same person twice is a conflict.
	AddPerson(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error

	// RemovePerson unlinks a person. Removing a missing link succeeds.
	RemovePerson(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error
}

type taskInfoService struct {
	taskInfoRepo repositories.TaskInfoRepository
	logger       *zap.Logger
}

// NewTaskInfoService creates a new TaskInfoService.
func NewTaskInfoService(taskInfoRepo repositories.TaskInfoRepository, logger *zap.Logger) TaskInfoService {
	return &taskInfoService{
		taskInfoRepo: taskInfoRepo,
		logger:       logger.Named("task-info"),
	}
}

var _ TaskInfoService = (*taskInfoService)(nil)

func (s *taskInfoService) List(ctx context.Context, taskID int64) ([]*models.TaskInfo, error) {
	infos, err := s.taskInfoRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list task info for task %d: %w", taskID, err)
	}
	return infos, nil
}

func (s *taskInfoService) Create(ctx context.Context, taskID int64, info *models.NewTaskInfo) (int64, error) {
	id, err := s.taskInfoRepo.Create(ctx, taskID, info)
	if err != nil {
		return 0, fmt.Errorf("create task info for task %d: %w", taskID, err)
	}
	s.logger.Debug("Task info created",
		zap.Int64("task_id", taskID),
		zap.Int64("task_info_id", id))
	return id, nil
}

func (s *taskInfoService) Delete(ctx context.Context, id int64) error {
	if err := s.taskInfoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task info %d: %w", id, err)
	}
	return nil
}

func (s *taskInfoService) LastSamplingTime(ctx context.Context) (*models.Timestamp, error) {
	ts, err := s.taskInfoRepo.LastSamplingTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("last sampling time: %w", err)
	}
	return ts, nil
}

func checkRelation(kind models.RelationKind) error {
	if !kind.Valid() {
		return &apperrors.InvalidValueError{Name: "relation", Value: string(kind)}
	}
	return nil
}

func (s *taskInfoService) ListPeople(ctx context.Context, kind models.RelationKind, taskInfoID int64) ([]*models.PersonRelation, error) {
	if err := checkRelation(kind); err != nil {
		return nil, err
	}
	links, err := s.taskInfoRepo.ListRelation(ctx, kind, taskInfoID)
	if err != nil {
		return nil, fmt.Errorf("list %s for task info %d: %w", kind, taskInfoID, err)
	}
	return links, nil
}

func (s *taskInfoService) AddPerson(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error {
	if err := checkRelation(kind); err != nil {
		return err
	}
	if err := s.taskInfoRepo.AddRelation(ctx, kind, taskInfoID, peopleID); err != nil {
		return fmt.Errorf("add %s person %d to task info %d: %w", kind, peopleID, taskInfoID, err)
	}
	return nil
}

func (s *taskInfoService) RemovePerson(ctx context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error {
	if err := checkRelation(kind); err != nil {
		return err
	}
	if err := s.taskInfoRepo.RemoveRelation(ctx, kind, taskInfoID, peopleID); err != nil {
		return fmt.Errorf("remove %s person %d from task info %d: %w", kind, peopleID, taskInfoID, err)
	}
	return nil
}
