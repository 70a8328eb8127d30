// crud_helpers.go — small batch-delete helper for tables keyed by a text
// column; nothing in this module calls it.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeleteBatchByKeys deletes rows matching any of keys by keyCol.
func DeleteBatchByKeys(ctx context.Context, pool *pgxpool.Pool, table, keyCol string, keys []string) (int64, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1::text[])",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{keyCol}.Sanitize())
	tag, err := pool.Exec(ctx, sql, keys)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
