package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/migrations"
	"github.com/ongchi/insitu-logger/pkg/database"
)

// PostgresImage is the image used for integration tests.
const PostgresImage = "postgres:16-alpine"

// TestDB holds a shared test database container and connection pool with
// migrations applied.
type TestDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the package.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "insitu_test",
			"POSTGRES_USER":     "insitu",
			"POSTGRES_PASSWORD": "test_password",
		},
		// The entrypoint restarts the server once after init.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://insitu:test_password@%s:%s/insitu_test?sslmode=disable",
		host, port.Port())

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 5,
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := db.Migrate(migrations.FS, zap.NewNop()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// Reset empties every table so each test starts from a clean store.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	_, err := tdb.DB.Exec(context.Background(), `
		TRUNCATE task_sampled_by, task_minuted_by, sensor_data, sample_set,
			task_info, task, people, sample_type, pump, well
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}
}

// Fixtures are the catalog rows created by Seed.
type Fixtures struct {
	WellID        int64
	PumpID        int64
	SampleTypeIDs []int64
	PeopleIDs     []int64
}

// Seed resets the database and inserts one well, one pump, three sample
// types and three people.
func (tdb *TestDB) Seed(t *testing.T) Fixtures {
	t.Helper()
	tdb.Reset(t)

	ctx := context.Background()
	var f Fixtures

	if err := tdb.DB.QueryRow(ctx,
		`INSERT INTO well (name, type) VALUES ('MW-01', 'monitoring') RETURNING id`).Scan(&f.WellID); err != nil {
		t.Fatalf("Failed to seed well: %v", err)
	}
	if err := tdb.DB.QueryRow(ctx,
		`INSERT INTO pump (name) VALUES ('Grundfos MP1') RETURNING id`).Scan(&f.PumpID); err != nil {
		t.Fatalf("Failed to seed pump: %v", err)
	}

	for _, name := range []string{"Anions", "Cations", "Radium"} {
		var id int64
		if err := tdb.DB.QueryRow(ctx,
			`INSERT INTO sample_type (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
			t.Fatalf("Failed to seed sample type: %v", err)
		}
		f.SampleTypeIDs = append(f.SampleTypeIDs, id)
	}

	for _, name := range []string{"Alice", "Bob", "Chen"} {
		var id int64
		if err := tdb.DB.QueryRow(ctx,
			`INSERT INTO people (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
			t.Fatalf("Failed to seed person: %v", err)
		}
		f.PeopleIDs = append(f.PeopleIDs, id)
	}

	return f
}
