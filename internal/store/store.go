// Package store holds the append-only tabular backends a flushed report row
// is written to.
package store

import "context"

// RowStore appends one row of string cells, in the fixed report column order,
// to an external tabular backend. The backend is append-only with no
// uniqueness constraint.
type RowStore interface {
	AppendRow(ctx context.Context, cells []string) error
}
