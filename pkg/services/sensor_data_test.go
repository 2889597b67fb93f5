package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/metrics"
	"github.com/ongchi/insitu-logger/pkg/models"
)

func fullReading(minute int) insitu.Reading {
	return insitu.Reading{
		Time: time.Date(2024, 3, 5, 2, minute, 0, 0, time.UTC),
		Values: map[string]float64{
			"temp": 18.2, "cndct": 512, "spcndct": 530, "ph": 7.01,
			"orp": 120, "do_con": 8.1, "do_sat": 92.4,
		},
	}
}

func fullRecord(taskID int64, minute int) *models.SensorRecord {
	return &models.SensorRecord{
		TaskID:   taskID,
		DateTime: models.NewTimestamp(time.Date(2024, 3, 5, 2, minute, 0, 0, time.UTC)),
		Temp:     18.2,
		Cndct:    512,
		Spcndct:  530,
		Ph:       7.01,
		Orp:      120,
		DoCon:    8.1,
		DoSat:    92.4,
	}
}

func TestRecordsFromLog(t *testing.T) {
	svc := NewSensorSeriesService(&mockSensorRepo{}, nil, zap.NewNop())

	r := fullReading(0)
	r.Values["depth"] = 3.048
	log := &insitu.Log{Readings: []insitu.Reading{r, fullReading(1)}}

	records, err := svc.RecordsFromLog(5, log)
	require.NoError(t, err)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, int64(5), rec.TaskID)
	assert.True(t, rec.DateTime.Equal(r.Time))
	assert.Equal(t, 7.01, rec.Ph)
	require.NotNil(t, rec.Depth)
	assert.Equal(t, 3.048, *rec.Depth)
	assert.Nil(t, rec.Turbidity)
	assert.Nil(t, records[1].Depth)
}

func TestRecordsFromLog_MissingRequiredChannel(t *testing.T) {
	svc := NewSensorSeriesService(&mockSensorRepo{}, nil, zap.NewNop())

	r := fullReading(1)
	delete(r.Values, "do_sat")
	log := &insitu.Log{Readings: []insitu.Reading{fullReading(0), r}}

	_, err := svc.RecordsFromLog(5, log)

	var missing *apperrors.MissingChannelError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)
	assert.Equal(t, "do_sat", missing.Channel)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestImport_InsertsConvertedRecords(t *testing.T) {
	repo := &mockSensorRepo{}
	m := metrics.New()
	svc := NewSensorSeriesService(repo, m, zap.NewNop())

	n, err := svc.Import(context.Background(), 9, &insitu.Log{Readings: []insitu.Reading{fullReading(0), fullReading(1)}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, int64(9), repo.inserted[0][1].TaskID)
}

func TestImport_ConversionFailureInsertsNothing(t *testing.T) {
	repo := &mockSensorRepo{}
	svc := NewSensorSeriesService(repo, nil, zap.NewNop())

	bad := fullReading(0)
	delete(bad.Values, "temp")

	_, err := svc.Import(context.Background(), 9, &insitu.Log{Readings: []insitu.Reading{bad}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, repo.inserted)
}

func TestInsertBatch_TaskMismatchPropagates(t *testing.T) {
	mismatch := &apperrors.TaskMismatchError{Index: 1, Expected: 1, Got: 2}
	repo := &mockSensorRepo{insertErr: mismatch}
	m := metrics.New()
	svc := NewSensorSeriesService(repo, m, zap.NewNop())

	_, err := svc.InsertBatch(context.Background(), 1, []*models.SensorRecord{fullRecord(1, 0), fullRecord(2, 1)})

	var got *apperrors.TaskMismatchError
	require.ErrorAs(t, err, &got)
	assert.Same(t, mismatch, got)

	series, gerr := testutil.GatherAndCount(m.Registry(), "insitu_sensor_insert_batches_total")
	require.NoError(t, gerr)
	assert.Equal(t, 1, series)
}

func TestInsertBatch_RejectsNullRecord(t *testing.T) {
	repo := &mockSensorRepo{}
	svc := NewSensorSeriesService(repo, metrics.New(), zap.NewNop())

	var records []*models.SensorRecord
	require.NoError(t, json.Unmarshal([]byte(`[null]`), &records))

	_, err := svc.InsertBatch(context.Background(), 1, records)

	var invalid *apperrors.InvalidValueError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "records[0]", invalid.Name)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, repo.inserted)
}

func TestInsertBatch_RejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"no datetime", `{"task_id":1,"temp":18.2,"cndct":512,"spcndct":530,"ph":7.01,"orp":120,"do_con":8.1,"do_sat":92.4}`, "datetime"},
		{"no do_sat", `{"task_id":1,"datetime":"2024-03-05T02:01:00.000+0000","temp":18.2,"cndct":512,"spcndct":530,"ph":7.01,"orp":120,"do_con":8.1}`, "do_sat"},
		{"task only", `{"task_id":1}`, "datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockSensorRepo{}
			svc := NewSensorSeriesService(repo, nil, zap.NewNop())

			var rec models.SensorRecord
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &rec))

			_, err := svc.InsertBatch(context.Background(), 1, []*models.SensorRecord{fullRecord(1, 0), &rec})

			var missing *apperrors.MissingChannelError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, 1, missing.Index)
			assert.Equal(t, tt.field, missing.Channel)
			assert.Empty(t, repo.inserted)
		})
	}
}

func TestInsertBatch_CompleteRecords(t *testing.T) {
	repo := &mockSensorRepo{}
	svc := NewSensorSeriesService(repo, nil, zap.NewNop())

	n, err := svc.InsertBatch(context.Background(), 4, []*models.SensorRecord{fullRecord(4, 0), fullRecord(4, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.Len(t, repo.inserted, 1)
}

func TestStability_RejectsNonPositiveWindow(t *testing.T) {
	svc := NewSensorSeriesService(&mockSensorRepo{}, nil, zap.NewNop())

	_, err := svc.Stability(context.Background(), 1, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestStability_UsesStoredSeries(t *testing.T) {
	base := time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC)
	var records []*models.SensorRecord
	for i := 0; i < 5; i++ {
		records = append(records, stableRecord(base.Add(time.Duration(i)*time.Minute)))
	}
	svc := NewSensorSeriesService(&mockSensorRepo{records: records}, nil, zap.NewNop())

	report, err := svc.Stability(context.Background(), 3, 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.TaskID)
	assert.Equal(t, 120.0, report.WindowSeconds)
	assert.Len(t, report.Windows, 3)
}
