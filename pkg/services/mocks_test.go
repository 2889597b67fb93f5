package services

import (
	"context"
	"io"

	"github.com/ongchi/insitu-logger/pkg/archive"
	"github.com/ongchi/insitu-logger/pkg/insitu"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// mockUpdateRepo implements repositories.UpdateRepository for testing.
type mockUpdateRepo struct {
	calls []updateCall
	err   error
}

type updateCall struct {
	entity  models.EntityKind
	id      int64
	updates []models.ColumnUpdate
}

func (m *mockUpdateRepo) ApplyUpdates(_ context.Context, entity models.EntityKind, id int64, updates []models.ColumnUpdate) error {
	m.calls = append(m.calls, updateCall{entity: entity, id: id, updates: updates})
	return m.err
}

// mockSampleSetRepo implements repositories.SampleSetRepository for testing.
type mockSampleSetRepo struct {
	entries      []models.SampleSetEntry
	reconciled   [][]models.SampleSetEntry
	getErr       error
	reconcileErr error
}

func (m *mockSampleSetRepo) GetByTask(_ context.Context, _ int64) ([]models.SampleSetEntry, error) {
	return m.entries, m.getErr
}

func (m *mockSampleSetRepo) Reconcile(_ context.Context, _ int64, deltas []models.SampleSetEntry) error {
	m.reconciled = append(m.reconciled, deltas)
	return m.reconcileErr
}

// mockSensorRepo implements repositories.SensorDataRepository for testing.
type mockSensorRepo struct {
	records   []*models.SensorRecord
	inserted  [][]*models.SensorRecord
	latest    *models.Timestamp
	cleared   int64
	insertErr error
	listErr   error
}

func (m *mockSensorRepo) InsertBatch(_ context.Context, _ int64, records []*models.SensorRecord) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, records)
	return int64(len(records)), nil
}

func (m *mockSensorRepo) List(_ context.Context, _ int64) ([]*models.SensorRecord, error) {
	return m.records, m.listErr
}

func (m *mockSensorRepo) Latest(_ context.Context, _ int64) (*models.Timestamp, error) {
	return m.latest, nil
}

func (m *mockSensorRepo) Clear(_ context.Context, _ int64) (int64, error) {
	return m.cleared, nil
}

// mockParser implements LogParser and records which entry point ran.
type mockParser struct {
	called string
	log    *insitu.Log
	err    error
}

func (m *mockParser) ParseCSV(r io.Reader) (*insitu.Log, error) {
	m.called = "csv"
	_, _ = io.ReadAll(r)
	return m.log, m.err
}

func (m *mockParser) ParseTXT(r io.Reader) (*insitu.Log, error) {
	m.called = "txt"
	_, _ = io.ReadAll(r)
	return m.log, m.err
}

func (m *mockParser) ParseZippedHTML(_ io.ReaderAt, _ int64) (*insitu.Log, error) {
	m.called = "zip"
	return m.log, m.err
}

// mockArchive implements archive.Store for testing.
type mockArchive struct {
	objects []archive.Object
	err     error
}

func (m *mockArchive) Put(_ context.Context, obj archive.Object) error {
	if m.err != nil {
		return m.err
	}
	m.objects = append(m.objects, obj)
	return nil
}

func (m *mockArchive) Driver() archive.Driver { return "mock" }

// mockTaskRepo implements repositories.TaskRepository for testing.
type mockTaskRepo struct {
	tasks   map[int64]*models.Task
	nextID  int64
	created []*models.NewTask
	err     error
}

func (m *mockTaskRepo) List(_ context.Context) ([]*models.TaskSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.TaskSummary
	for _, t := range m.tasks {
		out = append(out, &models.TaskSummary{ID: t.ID, WellID: t.WellID, Depth: t.Depth})
	}
	return out, nil
}

func (m *mockTaskRepo) Get(_ context.Context, id int64) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks[id], nil
}

func (m *mockTaskRepo) Create(_ context.Context, task *models.NewTask) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.nextID++
	m.created = append(m.created, task)
	return m.nextID, nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	delete(m.tasks, id)
	return nil
}

// mockTaskInfoRepo implements repositories.TaskInfoRepository for testing.
type mockTaskInfoRepo struct {
	links map[models.RelationKind][]*models.PersonRelation
	last  *models.Timestamp
	err   error
}

func (m *mockTaskInfoRepo) ListByTask(_ context.Context, taskID int64) ([]*models.TaskInfo, error) {
	return []*models.TaskInfo{{ID: 2, TaskID: taskID}, {ID: 1, TaskID: taskID}}, m.err
}

func (m *mockTaskInfoRepo) Create(_ context.Context, _ int64, _ *models.NewTaskInfo) (int64, error) {
	return 7, m.err
}

func (m *mockTaskInfoRepo) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockTaskInfoRepo) LastSamplingTime(_ context.Context) (*models.Timestamp, error) {
	return m.last, m.err
}

func (m *mockTaskInfoRepo) ListRelation(_ context.Context, kind models.RelationKind, _ int64) ([]*models.PersonRelation, error) {
	return m.links[kind], m.err
}

func (m *mockTaskInfoRepo) AddRelation(_ context.Context, kind models.RelationKind, taskInfoID, peopleID int64) error {
	if m.err != nil {
		return m.err
	}
	if m.links == nil {
		m.links = make(map[models.RelationKind][]*models.PersonRelation)
	}
	m.links[kind] = append(m.links[kind], &models.PersonRelation{TaskInfoID: taskInfoID, PeopleID: peopleID})
	return nil
}

func (m *mockTaskInfoRepo) RemoveRelation(_ context.Context, kind models.RelationKind, _ int64, peopleID int64) error {
	if m.err != nil {
		return m.err
	}
	kept := m.links[kind][:0]
	for _, l := range m.links[kind] {
		if l.PeopleID != peopleID {
			kept = append(kept, l)
		}
	}
	m.links[kind] = kept
	return nil
}

// mockCatalogRepo implements repositories.CatalogRepository for testing.
type mockCatalogRepo struct {
	wells    []*models.Well
	pumps    []*models.Pump
	types    []*models.SampleType
	people   []*models.Person
	pumpsErr error
}

func (m *mockCatalogRepo) ListWells(_ context.Context) ([]*models.Well, error) {
	return m.wells, nil
}

func (m *mockCatalogRepo) ListPumps(_ context.Context) ([]*models.Pump, error) {
	return m.pumps, m.pumpsErr
}

func (m *mockCatalogRepo) ListSampleTypes(_ context.Context) ([]*models.SampleType, error) {
	return m.types, nil
}

func (m *mockCatalogRepo) ListPeople(_ context.Context) ([]*models.Person, error) {
	return m.people, nil
}
