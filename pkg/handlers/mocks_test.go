package handlers

import (
	"context"
	"time"

	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/jsonutil"
	"github.com/ongchi/insitu-logger/pkg/models"
	"github.com/ongchi/insitu-logger/pkg/services"
)

// mockTaskService implements services.TaskService for handler tests.
type mockTaskService struct {
	tasks   []*models.TaskSummary
	task    *models.Task
	created *models.NewTask
	deleted int64
	err     error
}

func (m *mockTaskService) List(_ context.Context) ([]*models.TaskSummary, error) {
	return m.tasks, m.err
}

func (m *mockTaskService) Get(_ context.Context, _ int64) (*models.Task, error) {
	return m.task, m.err
}

func (m *mockTaskService) Create(_ context.Context, task *models.NewTask) (int64, error) {
	m.created = task
	return 11, m.err
}

func (m *mockTaskService) Delete(_ context.Context, id int64) error {
	m.deleted = id
	return m.err
}

// mockFieldUpdateService implements services.FieldUpdateService for handler tests.
type mockFieldUpdateService struct {
	entity models.EntityKind
	id     int64
	fields []jsonutil.Field
	err    error
}

func (m *mockFieldUpdateService) UpdateTask(_ context.Context, taskID int64, fields []jsonutil.Field) error {
	m.entity, m.id, m.fields = models.EntityTask, taskID, fields
	return m.err
}

func (m *mockFieldUpdateService) UpdateTaskInfo(_ context.Context, taskInfoID int64, fields []jsonutil.Field) error {
	m.entity, m.id, m.fields = models.EntityTaskInfo, taskInfoID, fields
	return m.err
}

// mockSampleSetService implements services.SampleSetService for handler tests.
type mockSampleSetService struct {
	entries []models.SampleSetEntry
	deltas  []models.SampleSetEntry
	err     error
}

func (m *mockSampleSetService) Get(_ context.Context, _ int64) ([]models.SampleSetEntry, error) {
	return m.entries, m.err
}

func (m *mockSampleSetService) Reconcile(_ context.Context, _ int64, deltas []models.SampleSetEntry) error {
	m.deltas = deltas
	return m.err
}

// mockTaskInfoService implements services.TaskInfoService for handler tests.
type mockTaskInfoService struct {
	infos   []*models.TaskInfo
	last    *models.Timestamp
	links   []*models.PersonRelation
	kind    models.RelationKind
	added   int64
	removed int64
	err     error
}

func (m *mockTaskInfoService) List(_ context.Context, _ int64) ([]*models.TaskInfo, error) {
	return m.infos, m.err
}

func (m *mockTaskInfoService) Create(_ context.Context, _ int64, _ *models.NewTaskInfo) (int64, error) {
	return 21, m.err
}

func (m *mockTaskInfoService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockTaskInfoService) LastSamplingTime(_ context.Context) (*models.Timestamp, error) {
	return m.last, m.err
}

func (m *mockTaskInfoService) ListPeople(_ context.Context, kind models.RelationKind, _ int64) ([]*models.PersonRelation, error) {
	m.kind = kind
	return m.links, m.err
}

func (m *mockTaskInfoService) AddPerson(_ context.Context, kind models.RelationKind, _ int64, peopleID int64) error {
	m.kind, m.added = kind, peopleID
	return m.err
}

func (m *mockTaskInfoService) RemovePerson(_ context.Context, kind models.RelationKind, _ int64, peopleID int64) error {
	m.kind, m.removed = kind, peopleID
	return m.err
}

// mockCatalogService implements services.CatalogService for handler tests.
type mockCatalogService struct {
	wells []*models.Well
	err   error
}

func (m *mockCatalogService) Options(_ context.Context) (*models.Options, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Options{Wells: m.wells}, nil
}

func (m *mockCatalogService) ListWells(_ context.Context) ([]*models.Well, error) {
	return m.wells, m.err
}

func (m *mockCatalogService) ListPumps(_ context.Context) ([]*models.Pump, error) {
	return nil, m.err
}

func (m *mockCatalogService) ListSampleTypes(_ context.Context) ([]*models.SampleType, error) {
	return nil, m.err
}

func (m *mockCatalogService) ListPeople(_ context.Context) ([]*models.Person, error) {
	return nil, m.err
}

// mockSensorService implements services.SensorSeriesService for handler tests.
type mockSensorService struct {
	records  []*models.SensorRecord
	inserted []*models.SensorRecord
	imported *insitu.Log
	latest   *models.Timestamp
	window   time.Duration
	err      error
}

func (m *mockSensorService) InsertBatch(_ context.Context, _ int64, records []*models.SensorRecord) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.inserted = records
	return int64(len(records)), nil
}

func (m *mockSensorService) List(_ context.Context, _ int64) ([]*models.SensorRecord, error) {
	return m.records, m.err
}

func (m *mockSensorService) LatestTimestamp(_ context.Context, _ int64) (*models.Timestamp, error) {
	return m.latest, m.err
}

func (m *mockSensorService) Clear(_ context.Context, _ int64) (int64, error) {
	return 3, m.err
}

func (m *mockSensorService) RecordsFromLog(_ int64, _ *insitu.Log) ([]*models.SensorRecord, error) {
	return nil, m.err
}

func (m *mockSensorService) Import(_ context.Context, _ int64, log *insitu.Log) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.imported = log
	return int64(len(log.Readings)), nil
}

func (m *mockSensorService) Stability(_ context.Context, taskID int64, window time.Duration) (*services.StabilityReport, error) {
	m.window = window
	if m.err != nil {
		return nil, m.err
	}
	return &services.StabilityReport{TaskID: taskID, WindowSeconds: window.Seconds()}, nil
}

// mockIngestService implements services.IngestService for handler tests.
type mockIngestService struct {
	fileName string
	data     []byte
	log      *insitu.Log
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, fileName string, data []byte) (*insitu.Log, error) {
	m.fileName, m.data = fileName, data
	return m.log, m.err
}
