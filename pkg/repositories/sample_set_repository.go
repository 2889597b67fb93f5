package repositories

import (
	"context"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// SampleSetRepository provides data access for per-task sample quantities.
type SampleSetRepository interface {
	GetByTask(ctx context.Context, taskID int64) ([]models.SampleSetEntry, error)
	// Reconcile applies deltas in order inside one transaction: qty 0
	// deletes the row, any other quantity upserts it. A negative quantity
	// rejects the whole batch before any statement runs.
	Reconcile(ctx context.Context, taskID int64, deltas []models.SampleSetEntry) error
}

type sampleSetRepository struct {
	conn database.Conn
}

// NewSampleSetRepository creates a new SampleSetRepository.
func NewSampleSetRepository(conn database.Conn) SampleSetRepository {
	return &sampleSetRepository{conn: conn}
}

var _ SampleSetRepository = (*sampleSetRepository)(nil)

func (r *sampleSetRepository) GetByTask(ctx context.Context, taskID int64) ([]models.SampleSetEntry, error) {
	query := `
		SELECT sample_type_id, qty
		FROM sample_set
		WHERE task_id = $1
		ORDER BY sample_type_id`

	rows, err := r.conn.Query(ctx, query, taskID)
	if err != nil {
		return nil, classify("get sample set", err)
	}
	defer rows.Close()

	entries := make([]models.SampleSetEntry, 0)
	for rows.Next() {
		var e models.SampleSetEntry
		if err := rows.Scan(&e.SampleTypeID, &e.Qty); err != nil {
			return nil, classify("scan sample set", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("get sample set", err)
	}

	return entries, nil
}

func (r *sampleSetRepository) Reconcile(ctx context.Context, taskID int64, deltas []models.SampleSetEntry) error {
	for _, d := range deltas {
		if d.Qty < 0 {
			return &apperrors.NegativeQuantityError{SampleTypeID: d.SampleTypeID, Qty: d.Qty}
		}
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	for _, d := range deltas {
		if d.Qty == 0 {
			_, err = tx.Exec(ctx,
				`DELETE FROM sample_set WHERE task_id = $1 AND sample_type_id = $2`,
				taskID, d.SampleTypeID)
		} else {
			_, err = tx.Exec(ctx, `
				INSERT INTO sample_set (task_id, sample_type_id, qty)
				VALUES ($1, $2, $3)
				ON CONFLICT (task_id, sample_type_id) DO UPDATE SET qty = EXCLUDED.qty`,
				taskID, d.SampleTypeID, d.Qty)
		}
		if err != nil {
			return classify("reconcile sample set", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}

	return nil
}
