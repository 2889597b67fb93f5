package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
	"github.com/ongchi/insitu-logger/pkg/database"
	"github.com/ongchi/insitu-logger/pkg/models"
)

// UpdateRepository applies whitelisted column updates to task and task-info rows.
type UpdateRepository interface {
	// ApplyUpdates runs one UPDATE per column, in order, against a single
	// row inside one transaction. Column names must come from a static
	// whitelist. A missing row is ErrNotFound and nothing is committed; with
	// no updates the call only checks that the row exists.
	ApplyUpdates(ctx context.Context, entity models.EntityKind, id int64, updates []models.ColumnUpdate) error
}

type updateRepository struct {
	conn database.Conn
}

// NewUpdateRepository creates a new UpdateRepository.
func NewUpdateRepository(conn database.Conn) UpdateRepository {
	return &updateRepository{conn: conn}
}

var _ UpdateRepository = (*updateRepository)(nil)

func (r *updateRepository) ApplyUpdates(ctx context.Context, entity models.EntityKind, id int64, updates []models.ColumnUpdate) error {
	table := pgx.Identifier{entity.Table()}.Sanitize()
	if len(updates) == 0 {
		return r.exists(ctx, table, entity, id)
	}

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	for _, u := range updates {
		query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE id = $2`, table, pgx.Identifier{u.Column}.Sanitize())

		result, err := tx.Exec(ctx, query, u.Value, id)
		if err != nil {
			return classify(fmt.Sprintf("update %s.%s", entity, u.Column), err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}

	return nil
}

func (r *updateRepository) exists(ctx context.Context, table string, entity models.EntityKind, id int64) error {
	var found bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := r.conn.QueryRow(ctx, query, id).Scan(&found); err != nil {
		return classify(fmt.Sprintf("look up %s", entity), err)
	}
	if !found {
		return apperrors.ErrNotFound
	}
	return nil
}
