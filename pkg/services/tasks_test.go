package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/models"
)

func TestTaskService_Create(t *testing.T) {
	repo := &mockTaskRepo{}
	svc := NewTaskService(repo, zap.NewNop())

	id, err := svc.Create(context.Background(), &models.NewTask{WellID: 1, Depth: " 10-12 m "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "10-12 m", repo.created[0].Depth)
}

func TestTaskService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		task  models.NewTask
		field string
	}{
		{"missing well", models.NewTask{Depth: "10 m"}, "well_id"},
		{"blank depth", models.NewTask{WellID: 1, Depth: "  "}, "depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockTaskRepo{}
			svc := NewTaskService(repo, zap.NewNop())

			_, err := svc.Create(context.Background(), &tt.task)

			var invalid *apperrors.InvalidValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Name)
			assert.Empty(t, repo.created)
		})
	}
}

func TestTaskService_ErrorsAreWrapped(t *testing.T) {
	repo := &mockTaskRepo{err: apperrors.ErrNotFound}
	svc := NewTaskService(repo, zap.NewNop())

	_, err := svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "task 3")

	err = svc.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
