//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ongchi/insitu-logger/pkg/testhelpers"
)

func TestCatalogRepository_Lists(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	f := testDB.Seed(t)
	repo := NewCatalogRepository(testDB.DB)
	ctx := context.Background()

	wells, err := repo.ListWells(ctx)
	require.NoError(t, err)
	require.Len(t, wells, 1)
	assert.Equal(t, f.WellID, wells[0].ID)
	require.NotNil(t, wells[0].Type)
	assert.Equal(t, "monitoring", *wells[0].Type)

	pumps, err := repo.ListPumps(ctx)
	require.NoError(t, err)
	assert.Len(t, pumps, 1)

	types, err := repo.ListSampleTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 3)
	assert.Equal(t, "Anions", types[0].Name)
	assert.Nil(t, types[0].Variant)

	people, err := repo.ListPeople(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 3)
}
