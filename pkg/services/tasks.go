package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/repositories"
)

// TaskService manages the task lifecycle.
type TaskService interface {
	// List returns the summary of every task.
	List(ctx context.Context) ([]*models.TaskSummary, error)

	// Get returns one task or apperrors.ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Task, error)

	// Create inserts a task and returns its id.
	Create(ctx context.Context, task *models.NewTask) (int64, error)

	// Delete removes a task together with everything it owns.
	Delete(ctx context.Context, id int64) error
}

type taskService struct {
	taskRepo repositories.TaskRepository
	logger   *zap.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repositories.TaskRepository, logger *zap.Logger) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		logger:   logger.Named("task-service"),
	}
}

var _ TaskService = (*taskService)(nil)

func (s *taskService) List(ctx context.Context) ([]*models.TaskSummary, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.taskRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, task *models.NewTask) (int64, error) {
	if task.WellID <= 0 {
		return 0, &apperrors.InvalidValueError{Name: "well_id", Value: strconv.FormatInt(task.WellID, 10)}
	}
	task.Depth = strings.TrimSpace(task.Depth)
	if task.Depth == "" {
		return 0, &apperrors.InvalidValueError{Name: "depth", Value: `""`}
	}

	id, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("Task created",
		zap.Int64("task_id", id),
		zap.Int64("well_id", task.WellID),
		zap.String("depth", task.Depth))
	return id, nil
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Info("Task deleted", zap.Int64("task_id", id))
	return nil
}
