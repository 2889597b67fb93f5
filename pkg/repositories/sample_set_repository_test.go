//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/testhelpers"
)

func setupSampleSetTest(t *testing.T) (SampleSetRepository, testhelpers.Fixtures, int64) {
	testDB := testhelpers.GetTestDB(t)
	f := testDB.Seed(t)

	taskID, err := NewTaskRepository(testDB.DB).Create(context.Background(), &models.NewTask{WellID: f.WellID, Depth: "10m"})
	require.NoError(t, err)

	return NewSampleSetRepository(testDB.DB), f, taskID
}

func TestSampleSetRepository_UpsertAndDelete(t *testing.T) {
	repo, f, taskID := setupSampleSetTest(t)
	ctx := context.Background()
	a, b := f.SampleTypeIDs[0], f.SampleTypeIDs[1]

	require.NoError(t, repo.Reconcile(ctx, taskID, []models.SampleSetEntry{
		{SampleTypeID: a, Qty: 2},
		{SampleTypeID: b, Qty: 1},
	}))

	require.NoError(t, repo.Reconcile(ctx, taskID, []models.SampleSetEntry{
		{SampleTypeID: a, Qty: 5},
		{SampleTypeID: b, Qty: 0},
	}))

	entries, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, []models.SampleSetEntry{{SampleTypeID: a, Qty: 5}}, entries)
}

func TestSampleSetRepository_ZeroOnAbsentRowIsNoop(t *testing.T) {
	repo, f, taskID := setupSampleSetTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Reconcile(ctx, taskID, []models.SampleSetEntry{{SampleTypeID: f.SampleTypeIDs[0], Qty: 1}}))
	require.NoError(t, repo.Reconcile(ctx, taskID, []models.SampleSetEntry{{SampleTypeID: f.SampleTypeIDs[2], Qty: 0}}))

	entries, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, []models.SampleSetEntry{{SampleTypeID: f.SampleTypeIDs[0], Qty: 1}}, entries)
}

func TestSampleSetRepository_Idempotent(t *testing.T) {
	repo, f, taskID := setupSampleSetTest(t)
	ctx := context.Background()

	batch := []models.SampleSetEntry{
		{SampleTypeID: f.SampleTypeIDs[0], Qty: 3},
		{SampleTypeID: f.SampleTypeIDs[1], Qty: 0},
		{SampleTypeID: f.SampleTypeIDs[2], Qty: 1},
	}
	require.NoError(t, repo.Reconcile(ctx, taskID, batch))
	once, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)

	require.NoError(t, repo.Reconcile(ctx, taskID, batch))
	twice, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestSampleSetRepository_NegativeRejectsBatch(t *testing.T) {
	repo, f, taskID := setupSampleSetTest(t)
	ctx := context.Background()

	err := repo.Reconcile(ctx, taskID, []models.SampleSetEntry{
		{SampleTypeID: f.SampleTypeIDs[0], Qty: 4},
		{SampleTypeID: f.SampleTypeIDs[1], Qty: -1},
	})
	var negErr *apperrors.NegativeQuantityError
	require.ErrorAs(t, err, &negErr)

	entries, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSampleSetRepository_UnknownSampleTypeRollsBack(t *testing.T) {
	repo, f, taskID := setupSampleSetTest(t)
	ctx := context.Background()

	err := repo.Reconcile(ctx, taskID, []models.SampleSetEntry{
		{SampleTypeID: f.SampleTypeIDs[0], Qty: 4},
		{SampleTypeID: 9999, Qty: 1},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	entries, err := repo.GetByTask(ctx, taskID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
