// helpers.go — shared store-layer plumbing: connection-pool embedding and
// generic row scanning, used by every table-backed store in this package.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vensus137/coreness-go/pkg/logger"
)

// emptyJSON is the fallback payload when a value can't be marshaled.
var emptyJSON = []byte("{}")

// mustMarshalJSON marshals v, logging and falling back to "{}" on failure
// instead of silently swallowing the error or panicking.
func mustMarshalJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("mustMarshalJSON: marshal failed, using fallback",
			"value_type", fmt.Sprintf("%T", v),
			logger.FieldError, err)
		return emptyJSON
	}
	return data
}

// BaseStore is the embedding base for every table-backed store.
//
//	type FooStore struct{ BaseStore }
//	func NewFooStore(pool *pgxpool.Pool) *FooStore { return &FooStore{NewBaseStore(pool)} }
type BaseStore struct{ pool *pgxpool.Pool }

// NewBaseStore wraps a pool.
func NewBaseStore(pool *pgxpool.Pool) BaseStore { return BaseStore{pool: pool} }

// ========================================
// collectRows — generic row scanning
// ========================================

// collectRows scans rows into a struct slice via pgx.RowToStructByNameLax.
func collectRows[T any](rows pgx.Rows) ([]T, error) {
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// collectOne scans a single row, returning nil (not an error) when empty.
func collectOne[T any](rows pgx.Rows) (*T, error) {
	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// CollectOneExported is collectOne, exported for packages outside store.
func CollectOneExported[T any](rows pgx.Rows) (*T, error) {
	return collectOne[T](rows)
}

// CollectRowsExported is collectRows, exported for packages outside store.
func CollectRowsExported[T any](rows pgx.Rows) ([]T, error) {
	return collectRows[T](rows)
}

// DeleteByKey deletes a single row by primary key.
func DeleteByKey(ctx context.Context, pool *pgxpool.Pool, table, keyCol, keyVal string) error {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{keyCol}.Sanitize())
	_, err := pool.Exec(ctx, sql, keyVal)
	return err
}
