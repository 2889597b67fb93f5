package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// CatalogRepository reads the reference tables the front end offers as
// choices: wells, pumps, sample types and people.
type CatalogRepository interface {
	ListWells(ctx context.Context) ([]*models.Well, error)
	ListPumps(ctx context.Context) ([]*models.Pump, error)
	ListSampleTypes(ctx context.Context) ([]*models.SampleType, error)
	ListPeople(ctx context.Context) ([]*models.Person, error)
}

type catalogRepository struct {
	conn database.Conn
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(conn database.Conn) CatalogRepository {
	return &catalogRepository{conn: conn}
}

var _ CatalogRepository = (*catalogRepository)(nil)

// listRows runs query and collects one value per row with scan.
func listRows[T any](ctx context.Context, conn database.Conn, op, query string, scan func(pgx.Rows) (*T, error)) ([]*T, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, classify(op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}

	return items, nil
}

func (r *catalogRepository) ListWells(ctx context.Context) ([]*models.Well, error) {
	return listRows(ctx, r.conn, "list wells",
		`SELECT id, name, type, comment FROM well ORDER BY id`,
		func(rows pgx.Rows) (*models.Well, error) {
			var w models.Well
			return &w, rows.Scan(&w.ID, &w.Name, &w.Type, &w.Comment)
		})
}

func (r *catalogRepository) ListPumps(ctx context.Context) ([]*models.Pump, error) {
	return listRows(ctx, r.conn, "list pumps",
		`SELECT id, name, comment FROM pump ORDER BY id`,
		func(rows pgx.Rows) (*models.Pump, error) {
			var p models.Pump
			return &p, rows.Scan(&p.ID, &p.Name, &p.Comment)
		})
}

func (r *catalogRepository) ListSampleTypes(ctx context.Context) ([]*models.SampleType, error) {
	return listRows(ctx, r.conn, "list sample types",
		`SELECT id, name, variant, comment FROM sample_type ORDER BY id`,
		func(rows pgx.Rows) (*models.SampleType, error) {
			var s models.SampleType
			return &s, rows.Scan(&s.ID, &s.Name, &s.Variant, &s.Comment)
		})
}

func (r *catalogRepository) ListPeople(ctx context.Context) ([]*models.Person, error) {
	return listRows(ctx, r.conn, "list people",
		`SELECT id, name FROM people ORDER BY id`,
		func(rows pgx.Rows) (*models.Person, error) {
			var p models.Person
			return &p, rows.Scan(&p.ID, &p.Name)
		})
}
