// Package store provides PostgreSQL access methods for all blockpress
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Queries that must stay consistent across rows (block order
// splicing, cascade deletes, default-section switches) run inside a
// single transaction.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for a unique index conflict.
const uniqueViolation = "23505"

// violatesUnique reports whether err is a unique violation on the named
// constraint. Used to translate duplicate-key failures into the domain's
// taken/conflict errors instead of relying on check-then-write alone.
func violatesUnique(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

// marshalJSONB encodes v for a JSONB column.
func marshalJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return b, nil
}

// unmarshalJSONB decodes a JSONB column into v. A NULL column is left as
// the zero value.
func unmarshalJSONB(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode jsonb: %w", err)
	}
	return nil
}
